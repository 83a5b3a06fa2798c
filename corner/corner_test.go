package corner

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/topology"
)

func TestAddSingleLeafCubeHasEightCorners(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 4, logger)
	test.That(t, err, test.ShouldBeNil)
	leaf := tr.Root()
	tr.EnsurePayload(leaf).AddSample(1, 0.9, 0, 0, 0)

	topo := topology.Build(tr)
	b := boundary.Extract(tr, topo, boundary.All)
	m := Add(tr, b)

	test.That(t, len(m.All()), test.ShouldEqual, 8)
	for _, c := range m.All() {
		test.That(t, len(c.Faces), test.ShouldEqual, 3) // each cube corner touches 3 faces
	}
}

func TestPopulateEdgesLinksAdjacentCorners(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 4, logger)
	test.That(t, err, test.ShouldBeNil)
	leaf := tr.Root()
	tr.EnsurePayload(leaf).AddSample(1, 0.9, 0, 0, 0)

	topo := topology.Build(tr)
	b := boundary.Extract(tr, topo, boundary.All)
	m := Add(tr, b)
	m.PopulateEdges(tr, b)

	for _, c := range m.All() {
		// Each cube corner is the endpoint of exactly three cube edges.
		test.That(t, len(m.EdgesOf(c.Position)), test.ShouldEqual, 3)
	}
}

func TestFacesForUnknownPositionIsEmpty(t *testing.T) {
	m := &Map{corners: map[key]*Corner{}, edges: map[key]map[key]bool{}}
	test.That(t, m.FacesFor(r3.Vector{X: 99, Y: 99, Z: 99}), test.ShouldBeNil)
}
