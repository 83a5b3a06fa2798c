package pipeline

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/carve"
	"github.com/eglrp/volcarve/corner"
	"github.com/eglrp/volcarve/mesh"
	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/region"
	"github.com/eglrp/volcarve/topology"
)

// Result summarizes one Run: how much each phase changed the reconstruction,
// for logging and for tests that assert on scenario-level counts.
type Result struct {
	Carve     carve.Summary
	Flips     int
	Regions   int
	Coalesces int
	Mesh      *mesh.Mesh
}

// Run wires C1 through C7 into a single pass: it builds a tree, carves rays
// and floorplan polygons into it, builds topology and removes outliers,
// extracts the boundary under opts.Scheme, populates the corner map, grows
// and coalesces regions, and emits the final mesh. ctx is threaded into
// every long-running phase (shape insertion, outlier loop, coalesce loop,
// mesh emission) per spec §5; a cancellation mid-phase returns whatever that
// phase's own contract guarantees (see each package's doc comment) plus a
// Cancelled error, never a half-applied intermediate state.
func Run(ctx context.Context, opts Options, logger golog.Logger, rays carve.RayIterator, polygons []*carve.ExtrudedPolygonShape) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	center := r3.Vector{X: opts.Center[0], Y: opts.Center[1], Z: opts.Center[2]}
	tree, err := octree.New(center, opts.Halfwidth, opts.Resolution, logger)
	if err != nil {
		return nil, err
	}

	engine := carve.NewEngine(logger)
	result := &Result{}

	if rays != nil {
		summary, err := engine.CarveRays(ctx, tree, rays)
		result.Carve = summary
		if err != nil {
			return result, err
		}
	}
	for _, poly := range polygons {
		if _, err := engine.CarvePolygon(ctx, tree, poly); err != nil {
			return result, err
		}
	}

	topo := topology.Build(tree)
	flips, err := topo.RemoveOutliers(ctx, opts.NodeOutlierThresh)
	result.Flips = flips
	if err != nil {
		return result, err
	}

	b := boundary.Extract(tree, topo, opts.Scheme)

	corners := corner.Add(tree, b)
	corners.PopulateEdges(tree, b)

	g := region.FormRegions(tree, b, opts.CoalescePlaneThresh)
	merges, err := region.Coalesce(ctx, g, opts.coalesceOptions())
	result.Coalesces = merges
	if err != nil {
		return result, err
	}
	result.Regions = len(g.Regions())

	m, err := mesh.Build(ctx, tree, b, corners, g, mesh.Options{
		MinSingularValue: opts.MinSingularValue,
		MaxColinearity:   opts.MaxColinearity,
	})
	if err != nil {
		return result, err
	}
	result.Mesh = m
	return result, nil
}
