package region

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// performSVD factorizes m and returns U, V, and the singular values,
// following the same pattern the teacher uses for its own least-squares
// geometry fits (rimage/transform/two_view_geom.go's performSVD).
func performSVD(m *mat.Dense) (u, v *mat.Dense, values []float64, ok bool) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return nil, nil, nil, false
	}
	u, v = &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	return u, v, svd.Values(nil), true
}

// PlaneFit returns the least-squares plane through points: the centroid as
// origin, and the right singular vector associated with the smallest
// singular value of the centered point matrix as the unit normal. Returns
// ok=false only if there are fewer than 3 points or the SVD fails to
// factorize; collinear or coincident points are not detected, and for them
// the returned normal is an arbitrary direction perpendicular to the line.
func PlaneFit(points []r3.Vector) (origin, normal r3.Vector, ok bool) {
	if len(points) < 3 {
		return r3.Vector{}, r3.Vector{}, false
	}
	var centroid r3.Vector
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(points)))

	m := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		c := p.Sub(centroid)
		m.SetRow(i, []float64{c.X, c.Y, c.Z})
	}

	_, v, _, factorized := performSVD(m)
	if !factorized {
		return centroid, r3.Vector{}, false
	}
	n := r3.Vector{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}.Normalize()
	return centroid, n, true
}
