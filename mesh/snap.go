package mesh

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/eglrp/volcarve/region"
)

// snapVertex solves the least-squares plane-intersection system for a
// vertex incident on k regions, per spec §4.7: row i of N is region i's
// plane normal, b_i is n_i . p_i (p_i the region's plane origin). The
// position is the sum, over the three singular-value basis directions, of
// either the least-squares contribution (singular value at or above
// threshold) or the original corner position projected onto that basis
// direction (below threshold, preserving the kernel). This is the same
// SVD-based least-squares pattern as region.PlaneFit and the teacher's own
// rimage/transform/two_view_geom.go performSVD helper, applied to an
// intersection system instead of a covariance fit.
func snapVertex(v *vertexInfo, g *region.Graph, opts Options) r3.Vector {
	planes := independentPlanes(v, g, opts.MaxColinearity)
	k := len(planes)
	n := mat.NewDense(k, 3, nil)
	b := make([]float64, k)
	for i, p := range planes {
		n.SetRow(i, []float64{p.normal.X, p.normal.Y, p.normal.Z})
		b[i] = p.normal.Dot(p.origin)
	}

	var svd mat.SVD
	initial := v.corner.Position
	if !svd.Factorize(n, mat.SVDFull) {
		return initial
	}
	u, vMat := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(vMat)
	values := svd.Values(nil)

	sigma0 := 0.0
	if len(values) > 0 {
		sigma0 = values[0]
	}
	threshold := opts.MinSingularValue * sigma0

	result := r3.Vector{}
	for j := 0; j < 3; j++ {
		vj := r3.Vector{X: vMat.At(0, j), Y: vMat.At(1, j), Z: vMat.At(2, j)}
		var sigma float64
		if j < len(values) {
			sigma = values[j]
		}
		if sigma >= threshold && sigma > 0 {
			bu := 0.0
			for i := 0; i < k; i++ {
				bu += b[i] * u.At(i, j)
			}
			result = result.Add(vj.Mul(bu / sigma))
		} else {
			result = result.Add(vj.Mul(initial.Dot(vj)))
		}
	}
	return result
}

type regionPlane struct {
	normal, origin r3.Vector
}

// independentPlanes drops any incident region whose plane normal is nearly
// colinear (|dot| > maxColinearity) with one already kept: two regions
// meeting at a near-tangent angle contribute almost the same constraint row
// to N, and keeping both would let a single real direction masquerade as
// two nearly-degenerate singular values right at the threshold boundary
// instead of being cleanly treated as one direction plus kernel.
func independentPlanes(v *vertexInfo, g *region.Graph, maxColinearity float64) []regionPlane {
	var kept []regionPlane
	for _, rid := range v.regions {
		r := g.Region(rid)
		candidate := regionPlane{normal: r.PlaneNormal, origin: r.PlaneOrigin}
		redundant := false
		for _, k := range kept {
			if d := k.normal.Dot(candidate.normal); d > maxColinearity || d < -maxColinearity {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, candidate)
		}
	}
	return kept
}
