// Package corner implements the corner map (C5): it maps node corners
// (shared vertices of boundary faces) to the set of incident boundary
// faces, and the dual-graph edges linking corners that share a face-edge.
package corner

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/octree"
)

// quantScale rounds a corner position to roughly micron precision before
// keying it, so that corners computed from two different leaves (which, at
// matching halfwidths, land on bit-identical floats; at mismatched ones can
// differ by float error) collapse to the same logical corner.
const quantScale = 1e6

type key struct{ x, y, z int64 }

func quantize(v r3.Vector) key {
	return key{
		x: int64(math.Round(v.X * quantScale)),
		y: int64(math.Round(v.Y * quantScale)),
		z: int64(math.Round(v.Z * quantScale)),
	}
}

// Corner is a single logical cube vertex: a position and the set of
// boundary faces touching it.
type Corner struct {
	Position r3.Vector
	Faces    []boundary.FaceID
}

// Map is the corner map for one Boundary extraction. Corners are keyed by
// quantized position rather than by the spec's canonical
// (finest-node, finest-corner-index) pair: the two are geometrically
// equivalent for axis-aligned cube corners, and this form avoids
// introducing a second handle type alongside octree.NodeID and
// boundary.FaceID. See DESIGN.md.
type Map struct {
	corners map[key]*Corner
	order   []key // insertion order, for deterministic iteration

	edges map[key]map[key]bool
}

// quadEdges pairs corner indices (as returned by Boundary.FaceCorners, in
// the fixed (s1,s2) in {+1,-1}x{+1,-1} order: 0=(+,+) 1=(+,-) 2=(-,+)
// 3=(-,-)) that bound the face rectangle, skipping the two diagonals.
var quadEdges = [4][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}}

// Add builds a corner Map from every corner of every face in b.
func Add(tree *octree.Tree, b *boundary.Boundary) *Map {
	m := &Map{
		corners: make(map[key]*Corner),
		edges:   make(map[key]map[key]bool),
	}
	for _, id := range faceIDs(b) {
		corners := b.FaceCorners(id)
		for _, c := range corners {
			m.touch(c, id)
		}
	}
	return m
}

func faceIDs(b *boundary.Boundary) []boundary.FaceID {
	faces := b.Faces()
	ids := make([]boundary.FaceID, len(faces))
	for i := range faces {
		ids[i] = boundary.FaceID(i)
	}
	return ids
}

func (m *Map) touch(pos r3.Vector, id boundary.FaceID) *Corner {
	k := quantize(pos)
	c, ok := m.corners[k]
	if !ok {
		c = &Corner{Position: pos}
		m.corners[k] = c
		m.order = append(m.order, k)
	}
	for _, existing := range c.Faces {
		if existing == id {
			return c
		}
	}
	c.Faces = append(c.Faces, id)
	return c
}

// PopulateEdges derives the dual-graph edges: pairs of corners that share a
// boundary face-edge, read off each face's own quad boundary. tree is
// accepted to match spec §4.5's signature; the edge set is fully determined
// by the corner positions already recorded by Add, so it is unused beyond
// that.
func (m *Map) PopulateEdges(tree *octree.Tree, b *boundary.Boundary) {
	_ = tree
	for _, id := range faceIDs(b) {
		corners := b.FaceCorners(id)
		for _, e := range quadEdges {
			a, c := quantize(corners[e[0]]), quantize(corners[e[1]])
			m.linkEdge(a, c)
		}
	}
}

func (m *Map) linkEdge(a, c key) {
	if a == c {
		return
	}
	if m.edges[a] == nil {
		m.edges[a] = make(map[key]bool)
	}
	if m.edges[c] == nil {
		m.edges[c] = make(map[key]bool)
	}
	m.edges[a][c] = true
	m.edges[c][a] = true
}

// FacesFor returns the set of boundary faces incident on the logical corner
// at pos (after quantization).
func (m *Map) FacesFor(pos r3.Vector) []boundary.FaceID {
	c, ok := m.corners[quantize(pos)]
	if !ok {
		return nil
	}
	return c.Faces
}

// Lookup returns the Corner at pos, if one has been recorded.
func (m *Map) Lookup(pos r3.Vector) (*Corner, bool) {
	c, ok := m.corners[quantize(pos)]
	return c, ok
}

// EdgesOf returns the positions of every corner linked to the corner at pos
// by a shared face-edge.
func (m *Map) EdgesOf(pos r3.Vector) []r3.Vector {
	k := quantize(pos)
	neighbors := m.edges[k]
	out := make([]r3.Vector, 0, len(neighbors))
	for nk := range neighbors {
		if c, ok := m.corners[nk]; ok {
			out = append(out, c.Position)
		}
	}
	return out
}

// All returns every recorded corner, in the order they were first touched.
func (m *Map) All() []*Corner {
	out := make([]*Corner, len(m.order))
	for i, k := range m.order {
		out[i] = m.corners[k]
	}
	return out
}
