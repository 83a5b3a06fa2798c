package mesh

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/corner"
	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/region"
	"github.com/eglrp/volcarve/topology"
)

// TestSnapVertexTwoPlanes mirrors spec scenario 6: a vertex incident on
// planes normal (1,0,0) offset 3 and (0,1,0) offset 5, with initial corner
// (2.9, 5.1, 7.3), snaps to x=3, y=5, z preserved at 7.3.
func TestSnapVertexTwoPlanes(t *testing.T) {
	g := region.NewGraph(nil, nil)
	a := g.AddRegion(nil, r3.Vector{X: 3, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 0, Z: 0})
	b := g.AddRegion(nil, r3.Vector{X: 0, Y: 5, Z: 0}, r3.Vector{X: 0, Y: 1, Z: 0})

	c := &corner.Corner{Position: r3.Vector{X: 2.9, Y: 5.1, Z: 7.3}}
	v := &vertexInfo{corner: c, regions: []region.RegionID{a, b}}

	pos := snapVertex(v, g, Options{MinSingularValue: 0.1, MaxColinearity: 0.99})
	test.That(t, pos.X, test.ShouldAlmostEqual, 3.0, 1e-9)
	test.That(t, pos.Y, test.ShouldAlmostEqual, 5.0, 1e-9)
	test.That(t, pos.Z, test.ShouldAlmostEqual, 7.3, 1e-9)
}

// TestSnapVertexSinglePlaneProjects checks the k=1 degenerate case: a
// corner incident on one region's plane snaps onto that plane.
func TestSnapVertexSinglePlaneProjects(t *testing.T) {
	g := region.NewGraph(nil, nil)
	a := g.AddRegion(nil, r3.Vector{X: 0, Y: 0, Z: 5}, r3.Vector{X: 0, Y: 0, Z: 1})

	c := &corner.Corner{Position: r3.Vector{X: 1, Y: 2, Z: 9}}
	v := &vertexInfo{corner: c, regions: []region.RegionID{a}}

	pos := snapVertex(v, g, Options{MinSingularValue: 0.1, MaxColinearity: 0.99})
	test.That(t, pos.Z, test.ShouldAlmostEqual, 5.0, 1e-9)
	test.That(t, pos.X, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, pos.Y, test.ShouldAlmostEqual, 2.0, 1e-9)
}

// TestBuildCubeIsWatertight mirrors spec scenario 5: a single solid leaf
// (six singleton regions, one per direction) produces 8 vertices, 12
// triangles, and an edge-use count of exactly 2 on every edge.
func TestBuildCubeIsWatertight(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tr, err := octree.New(r3.Vector{}, 4, 4, logger)
	test.That(t, err, test.ShouldBeNil)
	leaf := tr.Root()
	tr.EnsurePayload(leaf).AddSample(1, 0.9, 0, 1, 0)

	topo := topology.Build(tr)
	b := boundary.Extract(tr, topo, boundary.All)
	corners := corner.Add(tr, b)
	corners.PopulateEdges(tr, b)
	g := region.FormRegions(tr, b, 0.5)

	m, err := Build(context.Background(), tr, b, corners, g, Options{MinSingularValue: 0.1, MaxColinearity: 0.99})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(m.Vertices), test.ShouldEqual, 8)
	test.That(t, len(m.Triangles), test.ShouldEqual, 12)

	counts := make(map[[2]VertexID]int)
	for _, tri := range m.Triangles {
		edges := [3][2]VertexID{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}}
		for _, e := range edges {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			counts[e]++
		}
	}
	for _, c := range counts {
		test.That(t, c, test.ShouldEqual, 2)
	}
}
