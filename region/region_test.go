package region

import (
	"context"
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/topology"
)

func TestPlaneFitRecoversAxisAlignedPlane(t *testing.T) {
	points := []r3.Vector{
		{X: 0, Y: 0, Z: 5}, {X: 1, Y: 0, Z: 5}, {X: 0, Y: 1, Z: 5}, {X: 1, Y: 1, Z: 5},
	}
	origin, normal, ok := PlaneFit(points)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, origin.Z, test.ShouldAlmostEqual, 5)
	test.That(t, math.Abs(normal.Z), test.ShouldBeGreaterThan, 0.999)
}

func TestPlaneFitRejectsTooFewPoints(t *testing.T) {
	_, _, ok := PlaneFit([]r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}})
	test.That(t, ok, test.ShouldBeFalse)
}

// TestFormRegionsSingleLeafCube mirrors spec scenario 5's region count: a
// single solid leaf (no neighbors at all) always forms exactly six
// singleton regions, since each of its six faces has a distinct direction
// and growth never crosses directions.
func TestFormRegionsSingleLeafCube(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 4, logger)
	test.That(t, err, test.ShouldBeNil)
	leaf := tr.Root()
	tr.EnsurePayload(leaf).AddSample(1, 0.9, 0, 1, 0)

	topo := topology.Build(tr)
	b := boundary.Extract(tr, topo, boundary.All)
	g := FormRegions(tr, b, 0.5)

	test.That(t, len(g.Regions()), test.ShouldEqual, 6)
	for _, id := range g.Regions() {
		test.That(t, len(g.Region(id).Faces), test.ShouldEqual, 1)
	}

	merges, err := Coalesce(context.Background(), g, CoalesceOptions{DistThresh: 2.0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, merges, test.ShouldEqual, 0)
	test.That(t, len(g.Regions()), test.ShouldEqual, 6)
}

func TestFormRegionsLowPlanarityIsSingleton(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 4, logger)
	test.That(t, err, test.ShouldBeNil)
	leaf := tr.Root()
	tr.EnsurePayload(leaf).AddSample(1, 0.9, 0, 0, 0) // planar prior 0

	topo := topology.Build(tr)
	b := boundary.Extract(tr, topo, boundary.All)
	g := FormRegions(tr, b, 0.5)

	test.That(t, len(g.Regions()), test.ShouldEqual, 6)
}

func TestFaceVarianceHiddenFace(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 1, logger)
	test.That(t, err, test.ShouldBeNil)
	root := tr.Root()
	test.That(t, tr.Subdivide(root), test.ShouldBeNil)
	children := tr.Children(root)
	a, c := children[0], children[1]
	tr.EnsurePayload(a).AddSample(1, 0.9, 0, 0, 0)
	tr.EnsurePayload(a).FPRoom = 3
	tr.EnsurePayload(c).AddSample(1, 0.8, 0, 0, 0) // same side of 0.5, but FPRoom unset: hidden under Objects
	tr.EnsurePayload(c).FPRoom = -1

	topo := topology.Build(tr)
	b := boundary.Extract(tr, topo, boundary.Objects)

	var faceID boundary.FaceID = -1
	for _, id := range b.FacesOf(a) {
		if b.Face(id).Exterior == c {
			faceID = id
		}
	}
	test.That(t, faceID, test.ShouldNotEqual, boundary.FaceID(-1))

	v := FaceVariance(tr, b, faceID)
	test.That(t, v, test.ShouldBeGreaterThanOrEqualTo, 0.0)
}
