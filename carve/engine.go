package carve

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/volcarveerr"
)

// RaySample is one item of the external ray stream (§6): a weighted line
// segment with its attached probabilistic envelope.
type RaySample struct {
	Start, End r3.Vector
	Weight     float64

	SurfacePrior float64
	PlanarPrior  float64
	CornerPrior  float64
}

// RayIterator is a pull-style source of ray samples. The engine calls Next
// at its own pace, so backpressure is implicit (§9, "coroutines"). Next
// returns ok=false with a nil error when the stream is exhausted.
type RayIterator interface {
	Next(ctx context.Context) (sample RaySample, ok bool, err error)
}

// Summary reports how many items an ingestion pass accepted versus skipped,
// per §7's bulk-phase policy: InvalidInput items are skipped and counted,
// never fatal to the pass as a whole.
type Summary struct {
	Inserted int
	Skipped  int
}

// Engine drives C1 from the external ray stream and floorplan polygons.
type Engine struct {
	logger golog.Logger
}

// NewEngine returns an Engine that logs subdivision/insertion activity at
// debug level through logger.
func NewEngine(logger golog.Logger) *Engine {
	return &Engine{logger: logger}
}

// CarveRays drains it, converting each sample into a LineSegmentShape and
// inserting it into tree. Samples with non-positive weight or a degenerate
// segment are skipped and counted rather than aborting the pass. Ctx is
// checked between samples, matching §5's cooperative-cancellation contract.
func (e *Engine) CarveRays(ctx context.Context, tree *octree.Tree, it RayIterator) (Summary, error) {
	var summary Summary
	for {
		if err := ctx.Err(); err != nil {
			return summary, volcarveerr.Wrap(volcarveerr.Cancelled, err, "carve rays")
		}

		sample, ok, err := it.Next(ctx)
		if err != nil {
			return summary, err
		}
		if !ok {
			break
		}

		if sample.Weight <= 0 || sample.Start == sample.End {
			summary.Skipped++
			e.logger.Debugw("skipping invalid ray sample", "weight", sample.Weight)
			continue
		}

		shape := NewLineSegmentShape(sample.Start, sample.End, sample.Weight, sample.SurfacePrior, sample.PlanarPrior, sample.CornerPrior)
		affected, err := tree.InsertShape(ctx, shape)
		if err != nil {
			if volcarveerr.Is(err, volcarveerr.InvalidInput) {
				summary.Skipped++
				continue
			}
			return summary, err
		}
		summary.Inserted++
		e.logger.Debugw("carved ray sample", "affected_leaves", len(affected))
	}
	return summary, nil
}

// CarvePolygon inserts a single extruded floorplan polygon into tree,
// returning the leaves it touched.
func (e *Engine) CarvePolygon(ctx context.Context, tree *octree.Tree, shape *ExtrudedPolygonShape) ([]octree.NodeID, error) {
	affected, err := tree.InsertShape(ctx, shape)
	if err != nil {
		return nil, err
	}
	e.logger.Debugw("carved floorplan polygon", "room", shape.Room, "affected_leaves", len(affected))
	return affected, nil
}

// SliceRayIterator adapts a pre-built slice of samples to RayIterator, for
// tests and small in-memory batches.
type SliceRayIterator struct {
	samples []RaySample
	pos     int
}

// NewSliceRayIterator returns an iterator over samples, in order.
func NewSliceRayIterator(samples []RaySample) *SliceRayIterator {
	return &SliceRayIterator{samples: samples}
}

// Next returns the next sample in the slice, or ok=false once exhausted.
func (it *SliceRayIterator) Next(ctx context.Context) (RaySample, bool, error) {
	if err := ctx.Err(); err != nil {
		return RaySample{}, false, err
	}
	if it.pos >= len(it.samples) {
		return RaySample{}, false, nil
	}
	s := it.samples[it.pos]
	it.pos++
	return s, true, nil
}
