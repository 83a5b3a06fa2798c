// Package pipeline wires C1 through C7 into a single orchestrated run: tree
// construction, ray/polygon carving, topology build and outlier removal,
// boundary extraction, corner population, region growth and coalescence,
// and final mesh emission.
package pipeline

import (
	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/region"
	"github.com/eglrp/volcarve/volcarveerr"
)

// Options configures a Run, per spec §4.7's enumerated fields plus the tree
// construction parameters and the boundary scheme selecting which labels
// count as interior.
type Options struct {
	// Center, Halfwidth, Resolution parameterize octree.New.
	Center     [3]float64
	Halfwidth  float64
	Resolution float64

	// Scheme selects boundary.Extract's interior predicate.
	Scheme boundary.Scheme

	CoalesceDistThresh  float64 // sigma threshold on max_err; default 2.0
	CoalescePlaneThresh float64 // planarity prior in [0,1] gating region growth; default 0.5
	UseIsosurfacePos    bool
	NodeOutlierThresh   float64 // fraction in (0.5, 1]; default 0.85
	MinSingularValue    float64 // SVD threshold fraction; default 0.1
	MaxColinearity      float64 // kernel-collapse guard; default 0.99
}

// DefaultOptions returns Options with every §4.7 default filled in. The tree
// parameters and scheme are placeholders that callers normally override:
// Center at the origin, Halfwidth 1, Resolution 1, Scheme All.
func DefaultOptions() Options {
	return Options{
		Halfwidth:           1,
		Resolution:          1,
		Scheme:              boundary.All,
		CoalesceDistThresh:  2.0,
		CoalescePlaneThresh: 0.5,
		NodeOutlierThresh:   0.85,
		MinSingularValue:    0.1,
		MaxColinearity:      0.99,
	}
}

// Validate rejects an Options whose fields fall outside their documented
// range, per §7's "InvalidInput at the boundary is rejected" policy. This
// runs once at pipeline construction, the same validate-at-construction
// shape octree.New already uses for its own halfwidth/resolution arguments.
func (o Options) Validate() error {
	if o.Halfwidth <= 0 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "halfwidth must be positive, got %v", o.Halfwidth)
	}
	if o.Resolution <= 0 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "resolution must be positive, got %v", o.Resolution)
	}
	if o.CoalescePlaneThresh < 0 || o.CoalescePlaneThresh > 1 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "coalesce_planethresh must be in [0,1], got %v", o.CoalescePlaneThresh)
	}
	if o.CoalesceDistThresh <= 0 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "coalesce_distthresh must be positive, got %v", o.CoalesceDistThresh)
	}
	if o.NodeOutlierThresh <= 0.5 || o.NodeOutlierThresh > 1 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "node_outlierthresh must be in (0.5,1], got %v", o.NodeOutlierThresh)
	}
	if o.MinSingularValue <= 0 || o.MinSingularValue >= 1 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "min_singular_value must be in (0,1), got %v", o.MinSingularValue)
	}
	if o.MaxColinearity <= 0 || o.MaxColinearity >= 1 {
		return volcarveerr.Errorf(volcarveerr.InvalidInput, "max_colinearity must be in (0,1), got %v", o.MaxColinearity)
	}
	return nil
}

func (o Options) coalesceOptions() region.CoalesceOptions {
	return region.CoalesceOptions{
		DistThresh:       o.CoalesceDistThresh,
		UseIsosurfacePos: o.UseIsosurfacePos,
	}
}
