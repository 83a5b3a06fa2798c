package topology

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/eglrp/volcarve/octree"
)

// buildUniformGrid subdivides root twice, producing a uniform 4x4x4 grid of
// depth-2 leaves of halfwidth 1 centered at the odd integers -3,-1,1,3 on
// each axis.
func buildUniformGrid(t *testing.T) *octree.Tree {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 0.5, logger)
	test.That(t, err, test.ShouldBeNil)

	root := tr.Root()
	test.That(t, tr.Subdivide(root), test.ShouldBeNil)
	for _, c := range tr.Children(root) {
		test.That(t, tr.Subdivide(c), test.ShouldBeNil)
	}
	return tr
}

// TestTwoLeafSymmetry mirrors spec scenario 3: two adjacent equal-size leaves
// must be mutual neighbors across the face between them, at a distance equal
// to the sum of their halfwidths.
func TestTwoLeafSymmetry(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 1, logger)
	test.That(t, err, test.ShouldBeNil)

	root := tr.Root()
	test.That(t, tr.Subdivide(root), test.ShouldBeNil)
	children := tr.Children(root)

	// Child 0 is (+x+y+z), child 1 is (-x+y+z): adjacent across the x=0 plane.
	a, b := children[0], children[1]

	topo := Build(tr)
	test.That(t, topo.AreNeighbors(a, b), test.ShouldBeTrue)
	test.That(t, topo.AreNeighbors(b, a), test.ShouldBeTrue)

	aNeighbors := topo.Neighbors(a, NegX)
	test.That(t, len(aNeighbors), test.ShouldEqual, 1)
	test.That(t, aNeighbors[0], test.ShouldEqual, b)

	bNeighbors := topo.Neighbors(b, PosX)
	test.That(t, len(bNeighbors), test.ShouldEqual, 1)
	test.That(t, bNeighbors[0], test.ShouldEqual, a)

	test.That(t, topo.Verify(), test.ShouldBeNil)
}

// TestRemoveOutliersFlipsFullySurroundedLeaf builds a leaf with all six
// same-size face-neighbors present and disagreeing, and checks it flips at a
// permissive threshold.
func TestRemoveOutliersFlipsFullySurroundedLeaf(t *testing.T) {
	tr := buildUniformGrid(t)

	center, err := tr.LeafAt(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, err, test.ShouldBeNil)
	tr.EnsurePayload(center).AddSample(1, 0.9, 0, 0, 0)

	neighborCenters := []r3.Vector{
		{X: -1, Y: 1, Z: 1}, {X: 3, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: 1}, {X: 1, Y: 3, Z: 1},
		{X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 3},
	}
	for _, c := range neighborCenters {
		id, err := tr.LeafAt(c)
		test.That(t, err, test.ShouldBeNil)
		tr.EnsurePayload(id).AddSample(1, 0.1, 0, 0, 0)
	}

	topo := Build(tr)
	test.That(t, topo.Verify(), test.ShouldBeNil)
	test.That(t, len(topo.Neighbors(center, PosX)), test.ShouldEqual, 1)
	test.That(t, len(topo.Neighbors(center, NegX)), test.ShouldEqual, 1)

	flips, err := topo.RemoveOutliers(context.Background(), 0.6)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, flips, test.ShouldEqual, 1)
	test.That(t, tr.Payload(center).Interior(), test.ShouldBeFalse)
}

// TestRemoveOutliersRespectsThreshold checks that a leaf disagreeing with
// only five of its six neighbors (fraction 5/6) flips at a low threshold but
// is left unchanged at a threshold above that fraction. At the low threshold
// the agreeing leaf at (1,1,3) is an outlier too: four of its faces border
// non-interior leaves and the fifth is the domain edge (fraction 16/24), so
// it flips as well, for two flips in all.
func TestRemoveOutliersRespectsThreshold(t *testing.T) {
	tr := buildUniformGrid(t)

	center, err := tr.LeafAt(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, err, test.ShouldBeNil)
	tr.EnsurePayload(center).AddSample(1, 0.9, 0, 0, 0)

	disagreeing := []r3.Vector{
		{X: -1, Y: 1, Z: 1}, {X: 3, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: 1}, {X: 1, Y: 3, Z: 1},
		{X: 1, Y: 1, Z: -1},
	}
	for _, c := range disagreeing {
		id, err := tr.LeafAt(c)
		test.That(t, err, test.ShouldBeNil)
		tr.EnsurePayload(id).AddSample(1, 0.1, 0, 0, 0)
	}
	agreeing, err := tr.LeafAt(r3.Vector{X: 1, Y: 1, Z: 3})
	test.That(t, err, test.ShouldBeNil)
	tr.EnsurePayload(agreeing).AddSample(1, 0.9, 0, 0, 0)

	topoHigh := Build(tr)
	flips, err := topoHigh.RemoveOutliers(context.Background(), 0.9)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, flips, test.ShouldEqual, 0)
	test.That(t, tr.Payload(center).Interior(), test.ShouldBeTrue)

	topoLow := Build(tr)
	flips, err = topoLow.RemoveOutliers(context.Background(), 0.6)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, flips, test.ShouldEqual, 2)
	test.That(t, tr.Payload(center).Interior(), test.ShouldBeFalse)
}

func TestRemoveOutliersRejectsInvalidThreshold(t *testing.T) {
	tr := buildUniformGrid(t)
	topo := Build(tr)
	_, err := topo.RemoveOutliers(context.Background(), 0.5)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = topo.RemoveOutliers(context.Background(), 1.5)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFaceOppositeAndAxis(t *testing.T) {
	test.That(t, PosX.Opposite(), test.ShouldEqual, NegX)
	test.That(t, NegZ.Opposite(), test.ShouldEqual, PosZ)
	test.That(t, PosY.Axis(), test.ShouldEqual, 1)
	test.That(t, PosY.Sign(), test.ShouldEqual, 1.0)
	test.That(t, NegY.Sign(), test.ShouldEqual, -1.0)
}
