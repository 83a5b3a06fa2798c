package topology

import (
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/volcarveerr"
)

// Topology is the face-adjacency layer derived from a tree (C3): for every
// leaf, the set of neighbor leaves across each of its six faces. A
// face-keyed set holds more than one handle when the neighboring side has
// been subdivided more finely than this leaf.
type Topology struct {
	tree      *octree.Tree
	neighbors map[octree.NodeID][6][]octree.NodeID
}

// Build walks every leaf of tree and derives its six-face neighbor sets.
// Per-leaf neighbors are found with a Samet-style recursive same-level
// query (walk up until an ancestor's octant sign differs from the query
// direction on the relevant axis, then mirror back down), which is
// functionally equivalent to deriving neighbors top-down from sibling and
// parent-neighbor tables but needs no auxiliary per-node table of its own.
func Build(tree *octree.Tree) *Topology {
	t := &Topology{
		tree:      tree,
		neighbors: make(map[octree.NodeID][6][]octree.NodeID),
	}
	tree.Leaves(func(id octree.NodeID) {
		var set [6][]octree.NodeID
		for i, f := range faces {
			set[i] = neighborsAcross(tree, id, f)
		}
		t.neighbors[id] = set
	})
	return t
}

// Neighbors returns the neighbor leaves of node across face, as computed by
// the most recent Build.
func (t *Topology) Neighbors(node octree.NodeID, face Face) []octree.NodeID {
	return t.neighbors[node][faceIndex(face)]
}

// AreNeighbors reports whether a and b are adjacent across any face.
func (t *Topology) AreNeighbors(a, b octree.NodeID) bool {
	set, ok := t.neighbors[a]
	if !ok {
		return false
	}
	for _, ns := range set {
		for _, n := range ns {
			if n == b {
				return true
			}
		}
	}
	return false
}

func faceIndex(f Face) int {
	for i, ff := range faces {
		if ff == f {
			return i
		}
	}
	panic("topology: invalid face")
}

// neighborsAcross returns every leaf adjacent to id across face.
func neighborsAcross(tree *octree.Tree, id octree.NodeID, face Face) []octree.NodeID {
	same := sameSizeNeighbor(tree, id, face)
	if same == octree.NilNode {
		return nil
	}
	var out []octree.NodeID
	collectFaceLeaves(tree, same, face.Opposite(), &out)
	return out
}

// sameSizeNeighbor returns the node adjacent to id across face at id's own
// depth, if the tree has been subdivided that far on the neighboring side;
// otherwise it returns the coarsest existing ancestor on that side (a leaf),
// or NilNode if id is on the domain boundary in that direction.
func sameSizeNeighbor(tree *octree.Tree, id octree.NodeID, face Face) octree.NodeID {
	parent := tree.Parent(id)
	if parent == octree.NilNode {
		return octree.NilNode
	}

	idx := tree.ChildIndex(id)
	axis := face.Axis()
	childSign := axisComponent(octree.ChildSign(idx), axis)

	if childSign != face.Sign() {
		// The sibling across this face lives in the same parent.
		mirrored := mirrorIndex(idx, axis)
		return tree.Children(parent)[mirrored]
	}

	pn := sameSizeNeighbor(tree, parent, face)
	if pn == octree.NilNode {
		return octree.NilNode
	}
	if tree.IsLeaf(pn) {
		return pn
	}
	mirrored := mirrorIndex(idx, axis)
	return tree.Children(pn)[mirrored]
}

// collectFaceLeaves appends every leaf descendant of node that lies along
// node's boundary face in direction face.
func collectFaceLeaves(tree *octree.Tree, node octree.NodeID, face Face, out *[]octree.NodeID) {
	if tree.IsLeaf(node) {
		*out = append(*out, node)
		return
	}
	axis := face.Axis()
	want := face.Sign()
	children := tree.Children(node)
	for i, c := range children {
		if axisComponent(octree.ChildSign(i), axis) == want {
			collectFaceLeaves(tree, c, face, out)
		}
	}
}

// mirrorIndex flips childIdx's sign on axis, keeping the other two axes the
// same, and returns the resulting octant index.
func mirrorIndex(childIdx, axis int) int {
	s := octree.ChildSign(childIdx)
	sx, sy, sz := s.X, s.Y, s.Z
	switch axis {
	case 0:
		sx = -sx
	case 1:
		sy = -sy
	default:
		sz = -sz
	}
	return octree.ChildIndexFromSigns(sx, sy, sz)
}

func axisComponent(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return octree.Sign(v.X)
	case 1:
		return octree.Sign(v.Y)
	default:
		return octree.Sign(v.Z)
	}
}

// Verify checks the two structural invariants of §4.3 and §8: neighbor
// symmetry on opposing faces, and that the axis distance between a node and
// each of its neighbors equals the sum of their halfwidths.
func (t *Topology) Verify() error {
	for id, set := range t.neighbors {
		for i, f := range faces {
			for _, n := range set[i] {
				if !t.tree.IsLeaf(n) {
					return volcarveerr.Errorf(volcarveerr.InconsistentTopology, "neighbor %d of %d across %s is not a leaf", n, id, f)
				}
				opp := t.Neighbors(n, f.Opposite())
				if !containsNode(opp, id) {
					return volcarveerr.Errorf(volcarveerr.InconsistentTopology, "neighbor asymmetry: %d -%s-> %d but not back", id, f, n)
				}
				axis := f.Axis()
				ca := axisValue(t.tree.Center(id), axis)
				cn := axisValue(t.tree.Center(n), axis)
				dist := ca - cn
				if dist < 0 {
					dist = -dist
				}
				want := t.tree.Halfwidth(id) + t.tree.Halfwidth(n)
				if diff := dist - want; diff > 1e-9 || diff < -1e-9 {
					return volcarveerr.Errorf(volcarveerr.InconsistentTopology, "axis distance mismatch between %d and %d across %s: got %v want %v", id, n, f, dist, want)
				}
			}
		}
	}
	return nil
}

func containsNode(set []octree.NodeID, id octree.NodeID) bool {
	for _, n := range set {
		if n == id {
			return true
		}
	}
	return false
}

func axisValue(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
