// Package boundary implements the boundary extractor (C4): it enumerates
// oriented boundary faces between interior and exterior leaves under a
// chosen segmentation scheme, and links faces that share an edge into a
// face-to-face adjacency graph consumed by the region package.
package boundary

import (
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/topology"
)

// FaceID is a stable arena index into a Boundary's face list.
type FaceID int32

// NilFace is the sentinel "no face" handle.
const NilFace FaceID = -1

// Scheme selects which leaves count as interior for extraction purposes.
type Scheme int

const (
	// All treats leaves purely by their probabilistic interior label.
	All Scheme = iota
	// Objects treats any leaf outside a known room as exterior, so that
	// carved-out fixtures inside a room read as part of the exterior void.
	Objects
	// Room treats object leaves (exterior leaves inside a room) as
	// interior, isolating only fixture-scale voids from the room volume.
	Room
)

// IsInterior applies the scheme's predicate to a leaf's payload. A nil
// payload (never observed) defaults to probability 0.5, which is not
// interior under any scheme.
func (s Scheme) IsInterior(p *octree.Payload) bool {
	if p == nil {
		return false
	}
	switch s {
	case Objects:
		return p.Interior() && p.FPRoom >= 0
	case Room:
		return p.Interior() || p.Object()
	default:
		return p.Interior()
	}
}

// Face is an oriented boundary face: interior is always an interior leaf
// under the active scheme; exterior is either a non-interior leaf or
// octree.NilNode for the unbounded-exterior sentinel.
type Face struct {
	Interior  octree.NodeID
	Exterior  octree.NodeID
	Direction topology.Face
}

// Boundary is the result of one Extract call: the face list, an index from
// node to the faces it participates in, and the face-to-face adjacency
// graph.
type Boundary struct {
	tree  *octree.Tree
	faces []Face

	nodeFaces map[octree.NodeID][]FaceID
	adjacent  map[FaceID][]FaceID
}

// Faces returns all boundary faces, indexable by FaceID.
func (b *Boundary) Faces() []Face { return b.faces }

// Face returns the face named by id.
func (b *Boundary) Face(id FaceID) Face { return b.faces[id] }

// FacesOf returns every boundary face node participates in, as either
// interior or exterior.
func (b *Boundary) FacesOf(node octree.NodeID) []FaceID { return b.nodeFaces[node] }

// Adjacent returns the faces linked to id by a shared edge.
func (b *Boundary) Adjacent(id FaceID) []FaceID { return b.adjacent[id] }

// Center returns the geometric center of face id's rectangle, biased toward
// the smaller of its two leaves (spec §3: "position is the face center
// biased toward the smaller node").
func (b *Boundary) Center(id FaceID) r3.Vector {
	f := b.faces[id]
	ic := b.tree.Center(f.Interior)
	ihw := b.tree.Halfwidth(f.Interior)
	center := ic.Add(f.Direction.Normal().Mul(ihw))
	if f.Exterior == octree.NilNode {
		return center
	}
	ehw := b.tree.Halfwidth(f.Exterior)
	if ehw < ihw {
		ec := b.tree.Center(f.Exterior)
		return ec.Add(f.Direction.Opposite().Normal().Mul(ehw))
	}
	return center
}

// FaceCorners returns the four corner positions of face id's rectangle, in
// the leaf's own corner ordering (sized to the interior leaf's halfwidth).
// The corner package keys its corner map off these positions.
func (b *Boundary) FaceCorners(id FaceID) [4]r3.Vector {
	return faceCorners(b.tree, b.faces[id])
}

// Area returns face id's area: 4*min(hw_interior, hw_exterior)^2, where an
// absent exterior is treated as the interior leaf's own halfwidth (the face
// lies entirely on the interior leaf's own boundary).
func (b *Boundary) Area(id FaceID) float64 {
	f := b.faces[id]
	hw := b.tree.Halfwidth(f.Interior)
	if f.Exterior != octree.NilNode {
		if ehw := b.tree.Halfwidth(f.Exterior); ehw < hw {
			hw = ehw
		}
	}
	return 4 * hw * hw
}

// Extract builds the boundary face set for tree under topo, using scheme to
// decide which leaves are interior. A boundary face is emitted for every
// (interior leaf, face, neighbor) pair where the neighbor is non-interior or
// absent (spec §4.4).
func Extract(tree *octree.Tree, topo *topology.Topology, scheme Scheme) *Boundary {
	b := &Boundary{
		tree:      tree,
		nodeFaces: make(map[octree.NodeID][]FaceID),
		adjacent:  make(map[FaceID][]FaceID),
	}

	tree.Leaves(func(id octree.NodeID) {
		if !scheme.IsInterior(tree.Payload(id)) {
			return
		}
		for _, dir := range topology.Faces() {
			neighbors := topo.Neighbors(id, dir)
			if len(neighbors) == 0 {
				b.addFace(id, octree.NilNode, dir)
				continue
			}
			for _, n := range neighbors {
				if !scheme.IsInterior(tree.Payload(n)) {
					b.addFace(id, n, dir)
				}
			}
		}
	})

	linkAdjacency(b)
	return b
}

func (b *Boundary) addFace(interior, exterior octree.NodeID, dir topology.Face) {
	id := FaceID(len(b.faces))
	b.faces = append(b.faces, Face{Interior: interior, Exterior: exterior, Direction: dir})
	b.nodeFaces[interior] = append(b.nodeFaces[interior], id)
	if exterior != octree.NilNode {
		b.nodeFaces[exterior] = append(b.nodeFaces[exterior], id)
	}
}
