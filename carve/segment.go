// Package carve implements the shape-carving engine (C2): it converts an
// external stream of weighted line segments and extruded floorplan polygons
// into octree.Shape values and drives them into an octree.Tree.
package carve

import (
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/octree"
)

// occBandWidth is the fraction of a ray's arc length, measured back from the
// end point, over which occupancy rises from 0 to 1. The transition is a
// smoothstep, not a step function, so neighboring leaves get a continuous
// gradient rather than a hard edge.
const occBandWidth = 0.2

// LineSegmentShape carves a single weighted ray into the tree: occupancy
// rises smoothly from 0 (empty) to 1 (solid) over the last occBandWidth
// fraction of the segment, and the three geometric priors are weighted by
// proximity to that same transition band.
type LineSegmentShape struct {
	Start, End r3.Vector
	Weight     float64

	SurfacePrior float64
	PlanarPrior  float64
	CornerPrior  float64

	dir    r3.Vector
	invDir r3.Vector
	lenSq  float64
	sx, sy, sz bool // true if invDir component is negative
}

// NewLineSegmentShape precomputes the direction and inverse-direction terms
// the slab test and the arc-length projection both need.
func NewLineSegmentShape(start, end r3.Vector, weight, surfacePrior, planarPrior, cornerPrior float64) *LineSegmentShape {
	dir := end.Sub(start)
	inv := r3.Vector{X: 1 / dir.X, Y: 1 / dir.Y, Z: 1 / dir.Z}
	return &LineSegmentShape{
		Start:        start,
		End:          end,
		Weight:       weight,
		SurfacePrior: surfacePrior,
		PlanarPrior:  planarPrior,
		CornerPrior:  cornerPrior,
		dir:          dir,
		invDir:       inv,
		lenSq:        dir.Dot(dir),
		sx:           inv.X < 0,
		sy:           inv.Y < 0,
		sz:           inv.Z < 0,
	}
}

// AABB returns the segment's conservative bound. It is legitimately flat on
// up to two axes (an axis-aligned ray has zero extent on the other two).
func (s *LineSegmentShape) AABB() (min, max r3.Vector) {
	min = r3.Vector{X: minF(s.Start.X, s.End.X), Y: minF(s.Start.Y, s.End.Y), Z: minF(s.Start.Z, s.End.Z)}
	max = r3.Vector{X: maxF(s.Start.X, s.End.X), Y: maxF(s.Start.Y, s.End.Y), Z: maxF(s.Start.Z, s.End.Z)}
	return min, max
}

// Test runs the Williams et al. 2004 slab-method ray/AABB intersection
// against the node's box, clipped to the segment's parameter range [0, 1].
// A line has no volume, so it can never classify a box as Inside — only
// Disjoint or Straddles.
func (s *LineSegmentShape) Test(center r3.Vector, halfwidth float64) octree.Classification {
	boundsMin := r3.Vector{X: center.X - halfwidth, Y: center.Y - halfwidth, Z: center.Z - halfwidth}
	boundsMax := r3.Vector{X: center.X + halfwidth, Y: center.Y + halfwidth, Z: center.Z + halfwidth}

	tmin := (axisBound(boundsMin, boundsMax, 0, s.sx) - s.Start.X) * s.invDir.X
	tmax := (axisBound(boundsMin, boundsMax, 0, !s.sx) - s.Start.X) * s.invDir.X
	tymin := (axisBound(boundsMin, boundsMax, 1, s.sy) - s.Start.Y) * s.invDir.Y
	tymax := (axisBound(boundsMin, boundsMax, 1, !s.sy) - s.Start.Y) * s.invDir.Y

	if tmin > tymax || tymin > tmax {
		return octree.Disjoint
	}
	if tymin > tmin {
		tmin = tymin
	}
	if tymax < tmax {
		tmax = tymax
	}

	tzmin := (axisBound(boundsMin, boundsMax, 2, s.sz) - s.Start.Z) * s.invDir.Z
	tzmax := (axisBound(boundsMin, boundsMax, 2, !s.sz) - s.Start.Z) * s.invDir.Z
	if tmin > tzmax || tzmin > tmax {
		return octree.Disjoint
	}
	if tzmin > tmin {
		tmin = tzmin
	}
	if tzmax < tmax {
		tmax = tzmax
	}

	if tmin > tmax || tmin > 1 || tmax < 0 {
		return octree.Disjoint
	}
	return octree.Straddles
}

func axisBound(min, max r3.Vector, axis int, upper bool) float64 {
	var lo, hi float64
	switch axis {
	case 0:
		lo, hi = min.X, max.X
	case 1:
		lo, hi = min.Y, max.Y
	default:
		lo, hi = min.Z, max.Z
	}
	if upper {
		return hi
	}
	return lo
}

// Apply projects center onto the ray, computes arc-length parameter t, and
// merges an occupancy sample plus transition-weighted priors into p.
func (s *LineSegmentShape) Apply(p *octree.Payload, center r3.Vector, halfwidth float64) {
	t := 0.0
	if s.lenSq > 0 {
		t = center.Sub(s.Start).Dot(s.dir) / s.lenSq
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	occ := occupancy(t)
	band := transitionWeight(occ)
	p.AddSample(s.Weight, occ, band*s.SurfacePrior, band*s.PlanarPrior, band*s.CornerPrior)
}

// occupancy is a smoothstep rising from 0 to 1 over the last occBandWidth
// fraction of the segment, pinned at the documented endpoints (0 just
// before the start, 1 at the end).
func occupancy(t float64) float64 {
	bandStart := 1 - occBandWidth
	switch {
	case t <= bandStart:
		return 0
	case t >= 1:
		return 1
	default:
		u := (t - bandStart) / occBandWidth
		return u * u * (3 - 2*u)
	}
}

// transitionWeight peaks where occupancy crosses 0.5 (the middle of the
// transition band) and falls to zero at either occupancy extreme, so the
// geometric priors concentrate where the ray actually crosses a surface.
func transitionWeight(occ float64) float64 {
	return 4 * occ * (1 - occ)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
