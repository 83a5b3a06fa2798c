package octree

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/eglrp/volcarve/volcarveerr"
)

// maxGrowthIterations bounds how many times the domain may double before a
// growth request is rejected as DomainTooLarge. 64 doublings multiply the
// starting halfwidth by 2^64 (about 1.8e19), so this is a guard against
// runaway growth from malformed input rather than an operational limit.
const maxGrowthIterations = 64

// node is the arena-resident representation of one octree node. Internal
// nodes have all eight entries of children populated; leaves have none, and
// carry payload instead (New, subdivide and domain growth give every new
// leaf an empty payload; a leaf parsed without one has a nil payload).
type node struct {
	center    r3.Vector
	halfwidth float64
	depth     int
	parent    NodeID
	childIdx  int8 // index of this node within parent.children; -1 for the root
	children  [8]NodeID
	payload   *Payload
}

func (n *node) isLeaf() bool { return n.children[0] == NilNode }

// Tree is an adaptive octree store: C1 of the reconstruction core. It owns a
// root, a target leaf resolution, and a derived max depth such that
// root_halfwidth / 2^max_depth <= resolution.
type Tree struct {
	logger     golog.Logger
	nodes      []node
	root       NodeID
	resolution float64
	maxDepth   int
}

// New creates a tree whose root is a single leaf centered at center with the
// given halfwidth, targeting leaf resolution r.
func New(center r3.Vector, halfwidth, resolution float64, logger golog.Logger) (*Tree, error) {
	if halfwidth <= 0 {
		return nil, volcarveerr.Errorf(volcarveerr.InvalidInput, "invalid halfwidth (%.6f) for octree root", halfwidth)
	}
	if r := resolution; r <= 0 {
		return nil, volcarveerr.Errorf(volcarveerr.InvalidInput, "invalid resolution (%.6f)", r)
	}
	t := &Tree{
		logger:     logger,
		resolution: resolution,
	}
	t.root = t.alloc(node{
		center:    center,
		halfwidth: halfwidth,
		depth:     0,
		parent:    NilNode,
		childIdx:  -1,
		children:  nilChildren,
		payload:   NewPayload(),
	})
	t.maxDepth = computeMaxDepth(halfwidth, resolution)
	return t, nil
}

func computeMaxDepth(halfwidth, resolution float64) int {
	if halfwidth <= resolution {
		return 0
	}
	d := int(math.Ceil(math.Log2(halfwidth / resolution)))
	if d < 0 {
		d = 0
	}
	return d
}

func (t *Tree) alloc(n node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// SetResolution updates the target leaf resolution and recomputes max depth
// from the current root halfwidth. Existing nodes are unaffected; only
// future subdivisions see the new depth limit.
func (t *Tree) SetResolution(r float64) error {
	if r <= 0 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "invalid resolution (%.6f)", r)
	}
	t.resolution = r
	t.maxDepth = computeMaxDepth(t.nodes[t.root].halfwidth, r)
	return nil
}

// Resolution returns the target leaf resolution.
func (t *Tree) Resolution() float64 { return t.resolution }

// MaxDepth returns the current derived max subdivision depth.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Root returns the handle of the tree's current root.
func (t *Tree) Root() NodeID { return t.root }

// NumNodes returns the number of nodes (leaves and internal) in the arena.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// IsLeaf reports whether id is a leaf (carries payload, has no children).
func (t *Tree) IsLeaf(id NodeID) bool { return t.nodes[id].isLeaf() }

// Parent returns id's parent, or NilNode if id is the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// ChildIndex returns id's octant index within its parent, or -1 for the root.
func (t *Tree) ChildIndex(id NodeID) int { return int(t.nodes[id].childIdx) }

// Children returns id's eight children; all NilNode if id is a leaf.
func (t *Tree) Children(id NodeID) [8]NodeID { return t.nodes[id].children }

// Center returns id's box center.
func (t *Tree) Center(id NodeID) r3.Vector { return t.nodes[id].center }

// Halfwidth returns id's box halfwidth.
func (t *Tree) Halfwidth(id NodeID) float64 { return t.nodes[id].halfwidth }

// Depth returns id's depth from the root (root is depth 0).
func (t *Tree) Depth(id NodeID) int { return t.nodes[id].depth }

// Payload returns id's payload, or nil if id is internal or a leaf without
// one. Leaves created by New, subdivide or domain growth carry an empty
// payload even before any AddSample.
func (t *Tree) Payload(id NodeID) *Payload { return t.nodes[id].payload }

// EnsurePayload returns id's payload, allocating an empty one in place if id
// is a leaf that has never been observed.
func (t *Tree) EnsurePayload(id NodeID) *Payload {
	n := &t.nodes[id]
	if n.payload == nil {
		n.payload = NewPayload()
	}
	return n.payload
}

// Leaves calls fn once for every leaf in the tree, in arena order.
func (t *Tree) Leaves(fn func(id NodeID)) {
	for i, n := range t.nodes {
		if n.isLeaf() {
			fn(NodeID(i))
		}
	}
}

// containsPoint reports whether p lies within id's box (inclusive, with a
// small epsilon to absorb float error at boundaries).
func (t *Tree) containsPoint(id NodeID, p r3.Vector) bool {
	n := &t.nodes[id]
	const eps = 1e-9
	return math.Abs(p.X-n.center.X) <= n.halfwidth+eps &&
		math.Abs(p.Y-n.center.Y) <= n.halfwidth+eps &&
		math.Abs(p.Z-n.center.Z) <= n.halfwidth+eps
}

// GrowToContain grows the domain, reparenting the root as many times as
// needed, until p lies within the root's box. Growth preserves all existing
// data: the old root becomes a child of each new, larger root.
func (t *Tree) GrowToContain(p r3.Vector) error {
	for i := 0; !t.containsPoint(t.root, p); i++ {
		if i >= maxGrowthIterations {
			return volcarveerr.Errorf(volcarveerr.DomainTooLarge, "domain growth exceeded %d doublings reaching for %v", maxGrowthIterations, p)
		}
		t.growOnce(p)
	}
	return nil
}

// growOnce doubles the root's halfwidth and reparents the current root as
// one of the new root's eight children, chosen by the sign vector of
// (old_center - new_center), with the other seven children materialized as
// fresh, unobserved leaves.
func (t *Tree) growOnce(p r3.Vector) {
	oldRoot := t.root
	old := t.nodes[oldRoot]

	growDir := r3.Vector{X: sign(p.X - old.center.X), Y: sign(p.Y - old.center.Y), Z: sign(p.Z - old.center.Z)}
	newHW := old.halfwidth * 2
	newCenter := old.center.Add(growDir.Mul(old.halfwidth))

	// The old root sits at the octant whose sign vector points back toward
	// the old center from the new one, i.e. the negation of growDir.
	oldRootIdx := childIndexFromSigns(-growDir.X, -growDir.Y, -growDir.Z)

	newRoot := t.alloc(node{
		center:    newCenter,
		halfwidth: newHW,
		depth:     0,
		parent:    NilNode,
		childIdx:  -1,
		children:  nilChildren,
	})

	for i := 0; i < 8; i++ {
		if i == oldRootIdx {
			t.nodes[newRoot].children[i] = oldRoot
			t.nodes[oldRoot].parent = newRoot
			t.nodes[oldRoot].childIdx = int8(i)
			t.bumpDepth(oldRoot, 1)
			continue
		}
		childCenter := newCenter.Add(childOffsets[i].Mul(newHW / 2))
		child := t.alloc(node{
			center:    childCenter,
			halfwidth: newHW / 2,
			depth:     1,
			parent:    newRoot,
			childIdx:  int8(i),
			children:  nilChildren,
			payload:   NewPayload(),
		})
		t.nodes[newRoot].children[i] = child
	}

	t.root = newRoot
	t.maxDepth = computeMaxDepth(newHW, t.resolution)
}

// bumpDepth adds delta to id's depth and every descendant's depth.
func (t *Tree) bumpDepth(id NodeID, delta int) {
	t.nodes[id].depth += delta
	if t.nodes[id].isLeaf() {
		return
	}
	for _, c := range t.nodes[id].children {
		t.bumpDepth(c, delta)
	}
}

// InsertPoint grows the domain to contain p (if needed) and returns the
// handle of the leaf containing it.
func (t *Tree) InsertPoint(p r3.Vector) (NodeID, error) {
	if err := t.GrowToContain(p); err != nil {
		return NilNode, err
	}
	return t.LeafAt(p)
}

// LeafAt returns the leaf containing p, descending from the root. It fails
// if p lies outside the current domain.
func (t *Tree) LeafAt(p r3.Vector) (NodeID, error) {
	if !t.containsPoint(t.root, p) {
		return NilNode, volcarveerr.Errorf(volcarveerr.InvalidInput, "point %v is outside the tree domain", p)
	}
	id := t.root
	for !t.nodes[id].isLeaf() {
		id = t.childContaining(id, p)
	}
	return id, nil
}

// childContaining returns the child of internal node id whose octant
// contains p.
func (t *Tree) childContaining(id NodeID, p r3.Vector) NodeID {
	c := t.nodes[id].center
	sx, sy, sz := sign(p.X-c.X), sign(p.Y-c.Y), sign(p.Z-c.Z)
	return t.nodes[id].children[childIndexFromSigns(sx, sy, sz)]
}

// Clone returns a deep, independent copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		logger:     t.logger,
		nodes:      make([]node, len(t.nodes)),
		root:       t.root,
		resolution: t.resolution,
		maxDepth:   t.maxDepth,
	}
	for i, n := range t.nodes {
		cn := n
		if n.payload != nil {
			cn.payload = n.payload.Clone()
		}
		c.nodes[i] = cn
	}
	return c
}

// Subdivide is the exported form of subdivide, for callers (tests, and
// derived structures that need to force a specific tree shape) outside the
// insertion walk.
func (t *Tree) Subdivide(id NodeID) error { return t.subdivide(id) }

// subdivide splits leaf id into eight children of half its halfwidth. If id
// carried a payload, it is divided 8 ways (Payload.Subdivide) and copied to
// each child before the parent's own payload is cleared.
func (t *Tree) subdivide(id NodeID) error {
	n := t.nodes[id]
	if !n.isLeaf() {
		return errors.Errorf("octree: attempted to subdivide non-leaf node %d", id)
	}

	var splits []*Payload
	if n.payload != nil {
		splits = n.payload.Subdivide(8)
	}

	var children [8]NodeID
	for i := 0; i < 8; i++ {
		childCenter := n.center.Add(childOffsets[i].Mul(n.halfwidth / 2))
		var p *Payload
		if splits != nil {
			p = splits[i]
		} else {
			p = NewPayload()
		}
		children[i] = t.alloc(node{
			center:    childCenter,
			halfwidth: n.halfwidth / 2,
			depth:     n.depth + 1,
			parent:    id,
			childIdx:  int8(i),
			children:  nilChildren,
			payload:   p,
		})
	}

	t.nodes[id].children = children
	t.nodes[id].payload = nil
	return nil
}
