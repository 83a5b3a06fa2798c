package octree

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/volcarveerr"
)

// InsertShape grows the domain to cover shape's AABB, then walks the tree
// applying shape wherever it classifies as anything but Disjoint, adaptively
// subdividing leaves classified Straddles below max depth. It returns every
// leaf the shape touched, deduplicated, in the order first visited.
//
// Ordering: carving is associative up to the payload merge law (Payload
// itself is commutative in every additive field); callers may insert shapes
// in any order and reach the same tree, up to float rounding.
func (t *Tree) InsertShape(ctx context.Context, shape Shape) ([]NodeID, error) {
	if err := ctx.Err(); err != nil {
		return nil, volcarveerr.Wrap(volcarveerr.Cancelled, err, "insert shape")
	}

	// A shape's AABB is legitimately flat along one or two axes (a line
	// segment has zero extent in two, a planar polygon in one); only reject
	// it when every axis collapses to a point, or bounds are inverted.
	min, max := shape.AABB()
	if !(min.X <= max.X && min.Y <= max.Y && min.Z <= max.Z) {
		return nil, volcarveerr.Errorf(volcarveerr.InvalidInput, "shape has inverted AABB %v..%v", min, max)
	}
	if min == max {
		return nil, volcarveerr.Errorf(volcarveerr.InvalidInput, "shape has degenerate (point) AABB %v", min)
	}

	corners := aabbCorners(min, max)
	for _, c := range corners {
		if err := t.GrowToContain(c); err != nil {
			return nil, err
		}
	}

	var affected []NodeID
	seen := make(map[NodeID]bool)
	if err := t.insertWalk(ctx, t.root, shape, &affected, seen); err != nil {
		return nil, err
	}
	return affected, nil
}

func aabbCorners(min, max r3.Vector) [8]r3.Vector {
	return [8]r3.Vector{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
	}
}

func (t *Tree) insertWalk(ctx context.Context, id NodeID, shape Shape, affected *[]NodeID, seen map[NodeID]bool) error {
	if err := ctx.Err(); err != nil {
		return volcarveerr.Wrap(volcarveerr.Cancelled, err, "insert shape")
	}

	n := &t.nodes[id]
	cls := shape.Test(n.center, n.halfwidth)
	if cls == Disjoint {
		return nil
	}

	if n.isLeaf() {
		depth := n.depth
		if cls == Inside || depth >= t.maxDepth {
			t.applyAndRecord(id, shape, affected, seen)
			return nil
		}
		// Straddles below max depth: subdivide, then recurse into the
		// freshly created children.
		if err := t.subdivide(id); err != nil {
			return err
		}
	}

	// n.children was populated either just now or by an earlier insertion.
	// Re-read after a possible subdivide, since the slice backing the arena
	// may have moved.
	children := t.nodes[id].children
	for _, c := range children {
		if err := t.insertWalk(ctx, c, shape, affected, seen); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) applyAndRecord(id NodeID, shape Shape, affected *[]NodeID, seen map[NodeID]bool) {
	p := t.EnsurePayload(id)
	n := &t.nodes[id]
	shape.Apply(p, n.center, n.halfwidth)
	if !seen[id] {
		seen[id] = true
		*affected = append(*affected, id)
	}
}
