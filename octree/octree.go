// Package octree implements an adaptive, probabilistic 8-way spatial index
// used to accumulate carving evidence from range-sensor scans. Each node owns
// eight optional children; only leaves carry a payload of weighted occupancy
// and geometric-prior statistics. The tree grows to enclose points outside
// its current domain, and exposes a shape-insertion walk that subdivides
// adaptively wherever a shape's classification is ambiguous.
package octree

import (
	"github.com/golang/geo/r3"
)

// NodeID is a stable arena index for a node. Derived structures (topology,
// boundary, corner, region) hold these instead of pointers, so that they stay
// well-defined even if the arena backing slice is reallocated.
type NodeID int32

// NilNode is the sentinel "no node" handle, used both for absent parents and
// for the unbounded-exterior neighbor of a boundary face.
const NilNode NodeID = -1

// Classification is the result of testing a shape against a node's box.
type Classification int

const (
	// Disjoint means the shape does not intersect the node's box at all.
	Disjoint Classification = iota
	// Inside means the node's box lies entirely within the shape's volume.
	Inside
	// Straddles means the shape's boundary passes through the node's box.
	Straddles
)

// Shape is the capability set the insertion walk needs from anything it
// carves into the tree: a conservative bound, a per-node classification
// test, and a leaf-merge step. The set of concrete shapes is closed (see the
// carve package) — this interface exists so the walk itself stays agnostic
// to which kind of geometry is being inserted.
type Shape interface {
	// AABB returns a conservative axis-aligned bound for the shape.
	AABB() (min, max r3.Vector)
	// Test classifies a node's box (given by center and halfwidth) against
	// the shape.
	Test(center r3.Vector, halfwidth float64) Classification
	// Apply merges the shape's contribution into a leaf's payload. center
	// and halfwidth describe the box being applied to.
	Apply(p *Payload, center r3.Vector, halfwidth float64)
}

// childOffsets gives the ±1 sign vector of each of the 8 octants, indexed by
// child number, following the fixed ordering used throughout this package:
// 0 = (+x+y+z), 1 = (-x+y+z), 2 = (-x-y+z), 3 = (+x-y+z), and 4..7 repeat the
// same quadrants with -z.
var childOffsets = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: -1},
	{X: 1, Y: -1, Z: -1},
}

// childIndexFromSigns maps a ±1 sign vector back to its octant index, the
// inverse of childOffsets.
func childIndexFromSigns(sx, sy, sz float64) int {
	for i, o := range childOffsets {
		if sign(o.X) == sign(sx) && sign(o.Y) == sign(sy) && sign(o.Z) == sign(sz) {
			return i
		}
	}
	panic("octree: invalid sign vector")
}

// ChildSign returns the ±1 sign vector of octant index i within its parent,
// following the fixed ordering documented on childOffsets. Exported for
// packages (topology) that need to reason about octant adjacency without
// reaching into the tree's internal node representation.
func ChildSign(i int) r3.Vector { return childOffsets[i] }

// ChildIndexFromSigns is the exported form of childIndexFromSigns.
func ChildIndexFromSigns(sx, sy, sz float64) int { return childIndexFromSigns(sx, sy, sz) }

// Sign is the exported form of sign: -1 for negative inputs, +1 otherwise.
func Sign(v float64) float64 { return sign(v) }

// nilChildren is the children array of a freshly allocated leaf: the zero
// value of [8]NodeID is all zeros, which collides with a real node index, so
// every node literal that isn't populating children immediately must use
// this instead of leaving the field unset.
var nilChildren = [8]NodeID{NilNode, NilNode, NilNode, NilNode, NilNode, NilNode, NilNode, NilNode}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
