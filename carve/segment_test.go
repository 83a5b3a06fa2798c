package carve

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/eglrp/volcarve/octree"
)

func TestLineSegmentShapeAABBIsFlat(t *testing.T) {
	s := NewLineSegmentShape(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 10, Y: 0, Z: 0}, 1, 0.5, 0.5, 0.5)
	min, max := s.AABB()
	test.That(t, min, test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, max, test.ShouldResemble, r3.Vector{X: 10, Y: 0, Z: 0})
}

func TestLineSegmentShapeTestDisjoint(t *testing.T) {
	s := NewLineSegmentShape(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 10, Y: 0, Z: 0}, 1, 0.5, 0.5, 0.5)
	cls := s.Test(r3.Vector{X: 5, Y: 100, Z: 0}, 1)
	test.That(t, cls, test.ShouldEqual, octree.Disjoint)
}

func TestLineSegmentShapeTestStraddles(t *testing.T) {
	s := NewLineSegmentShape(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 10, Y: 0, Z: 0}, 1, 0.5, 0.5, 0.5)
	cls := s.Test(r3.Vector{X: 5, Y: 0, Z: 0}, 1)
	test.That(t, cls, test.ShouldEqual, octree.Straddles)
}

func TestOccupancyMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 10; i++ {
		tt := float64(i) / 10
		occ := occupancy(tt)
		test.That(t, occ, test.ShouldBeGreaterThanOrEqualTo, prev)
		prev = occ
	}
	test.That(t, occupancy(0), test.ShouldEqual, 0)
	test.That(t, occupancy(1), test.ShouldEqual, 1)
}

// TestSingleRayCarve mirrors spec scenario 1: resolution 1.0, empty tree,
// insert ray (0,0,0)->(10,0,0), weight=1, priors=0.5.
func TestSingleRayCarve(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{X: 5, Y: 0, Z: 0}, 8, 1.0, logger)
	test.That(t, err, test.ShouldBeNil)

	shape := NewLineSegmentShape(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 10, Y: 0, Z: 0}, 1, 0.5, 0.5, 0.5)
	_, err = tr.InsertShape(context.Background(), shape)
	test.That(t, err, test.ShouldBeNil)

	near, err := tr.LeafAt(r3.Vector{X: 9.9, Y: 0, Z: 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Payload(near), test.ShouldNotBeNil)
	test.That(t, tr.Payload(near).Probability(), test.ShouldBeGreaterThan, 0.5)

	far, err := tr.LeafAt(r3.Vector{X: 0.1, Y: 0, Z: 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.Payload(far), test.ShouldNotBeNil)
	test.That(t, tr.Payload(far).Probability(), test.ShouldBeLessThan, 0.5)
}

// TestDomainGrowthScenario mirrors spec scenario 2: growth from carving a
// ray whose endpoint lies far outside the initial root.
func TestDomainGrowthScenario(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 1, 0.5, logger)
	test.That(t, err, test.ShouldBeNil)

	shape := NewLineSegmentShape(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 100, Y: 0, Z: 0}, 1, 0.5, 0.5, 0.5)
	_, err = tr.InsertShape(context.Background(), shape)
	test.That(t, err, test.ShouldBeNil)

	hw := tr.Halfwidth(tr.Root())
	test.That(t, hw, test.ShouldBeGreaterThanOrEqualTo, 100.0)
	// hw must be 1.0 * 2^k for some integer k.
	ratio := hw
	for ratio > 1 {
		ratio /= 2
	}
	test.That(t, ratio, test.ShouldAlmostEqual, 1.0)
}
