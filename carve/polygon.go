package carve

import (
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/octree"
)

// ExtrudedPolygonShape carves a floorplan room: a 2D polygon extruded
// between a floor and ceiling elevation, tagging every leaf it touches with
// a room index. Hollow shapes only tag the leaves they touch, without biasing
// occupancy (used to import a room outline without overwriting ray
// evidence); non-hollow shapes additionally fill the interior as solid.
type ExtrudedPolygonShape struct {
	Polygon      []r3.Vector // vertices in the xy plane; Z is ignored
	FloorZ, CeilZ float64
	Room         int32
	Hollow       bool

	minXY, maxXY r3.Vector
}

// NewExtrudedPolygonShape precomputes the polygon's 2D bounding box.
func NewExtrudedPolygonShape(polygon []r3.Vector, floorZ, ceilZ float64, room int32, hollow bool) *ExtrudedPolygonShape {
	s := &ExtrudedPolygonShape{Polygon: polygon, FloorZ: floorZ, CeilZ: ceilZ, Room: room, Hollow: hollow}
	if len(polygon) == 0 {
		return s
	}
	s.minXY = r3.Vector{X: polygon[0].X, Y: polygon[0].Y}
	s.maxXY = s.minXY
	for _, v := range polygon[1:] {
		s.minXY.X = minF(s.minXY.X, v.X)
		s.minXY.Y = minF(s.minXY.Y, v.Y)
		s.maxXY.X = maxF(s.maxXY.X, v.X)
		s.maxXY.Y = maxF(s.maxXY.Y, v.Y)
	}
	return s
}

// AABB returns the polygon's 2D bounding box extruded over [FloorZ, CeilZ].
func (s *ExtrudedPolygonShape) AABB() (min, max r3.Vector) {
	return r3.Vector{X: s.minXY.X, Y: s.minXY.Y, Z: s.FloorZ},
		r3.Vector{X: s.maxXY.X, Y: s.maxXY.Y, Z: s.CeilZ}
}

// Test classifies a node's box by sampling the polygon-containment test at
// its footprint corners and center, combined with the node's z-range
// overlap with [FloorZ, CeilZ]. When no sample is inside, the node still
// straddles if a polygon vertex lies within its footprint; a polygon edge
// that crosses the footprint with no vertex or sample inside it is not
// detected, and such a node reads as Disjoint.
func (s *ExtrudedPolygonShape) Test(center r3.Vector, halfwidth float64) octree.Classification {
	zMin, zMax := center.Z-halfwidth, center.Z+halfwidth
	if zMax < s.FloorZ || zMin > s.CeilZ {
		return octree.Disjoint
	}
	zInside := zMin >= s.FloorZ && zMax <= s.CeilZ

	corners := [5]r3.Vector{
		center,
		{X: center.X - halfwidth, Y: center.Y - halfwidth},
		{X: center.X + halfwidth, Y: center.Y - halfwidth},
		{X: center.X - halfwidth, Y: center.Y + halfwidth},
		{X: center.X + halfwidth, Y: center.Y + halfwidth},
	}
	insideCount := 0
	for _, c := range corners {
		if pointInPolygon(s.Polygon, c.X, c.Y) {
			insideCount++
		}
	}

	if insideCount == 0 {
		for _, v := range s.Polygon {
			if v.X >= center.X-halfwidth && v.X <= center.X+halfwidth &&
				v.Y >= center.Y-halfwidth && v.Y <= center.Y+halfwidth {
				return octree.Straddles
			}
		}
		return octree.Disjoint
	}

	switch {
	case insideCount == len(corners) && zInside:
		return octree.Inside
	default:
		return octree.Straddles
	}
}

// Apply tags the leaf with the room index; non-hollow shapes also bias the
// leaf toward solid occupancy, modeling a floorplan-sourced interior fill.
func (s *ExtrudedPolygonShape) Apply(p *octree.Payload, center r3.Vector, halfwidth float64) {
	p.FPRoom = s.Room
	if !s.Hollow {
		p.AddSample(1, 1, 0, 0, 0)
	}
}

// pointInPolygon is the standard even-odd ray-casting test.
func pointInPolygon(poly []r3.Vector, x, y float64) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > y) != (yj > y) {
			xCross := xi + (y-yi)/(yj-yi)*(xj-xi)
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
