package region

import (
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/octree"
)

// leafStats is the (probability, variance, halfwidth) triple the face
// position/variance contract (spec §4.6) is stated in terms of. An absent
// exterior leaf uses the documented default (0.5, 1.0, 0).
type leafStats struct {
	prob, variance, halfwidth float64
}

func statsOf(tree *octree.Tree, id octree.NodeID) leafStats {
	if id == octree.NilNode {
		return leafStats{prob: 0.5, variance: 1.0, halfwidth: 0}
	}
	p := tree.Payload(id)
	if p == nil {
		return leafStats{prob: 0.5, variance: 1.0, halfwidth: tree.Halfwidth(id)}
	}
	return leafStats{prob: p.Probability(), variance: p.Variance(), halfwidth: tree.Halfwidth(id)}
}

// hidden reports whether the two leaves of a face are on the same side of
// the probability-1/2 threshold, meaning there is no well-defined
// occupancy crossing between them.
func hidden(i, e leafStats) bool {
	return sign(i.prob-0.5) == sign(e.prob-0.5)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// isosurfaceFraction is the s of spec §4.6: the fractional position of the
// probability-1/2 crossing between the interior and exterior leaf centers,
// undefined (and unused) for hidden faces.
func isosurfaceFraction(i, e leafStats) float64 {
	return (i.prob - 0.5) / (i.prob - e.prob)
}

// FaceVariance computes the statistical position variance of a boundary
// face per spec §4.6's contract.
func FaceVariance(tree *octree.Tree, b *boundary.Boundary, id boundary.FaceID) float64 {
	f := b.Face(id)
	i := statsOf(tree, f.Interior)
	e := statsOf(tree, f.Exterior)
	if hidden(i, e) {
		d := e.halfwidth - i.halfwidth
		return (d * d) / 12
	}
	s := isosurfaceFraction(i, e)
	varS := (1-s*s)*i.variance + s*s*e.variance
	span := i.halfwidth + e.halfwidth
	return varS * span * span
}

// FacePosition computes the face's isosurface-adjusted position per spec
// §4.6: the geometric face center for hidden faces, otherwise shifted from
// the interior leaf's center along the outward normal by s*(hw_i+hw_e).
func FacePosition(tree *octree.Tree, b *boundary.Boundary, id boundary.FaceID) r3.Vector {
	f := b.Face(id)
	i := statsOf(tree, f.Interior)
	e := statsOf(tree, f.Exterior)
	if hidden(i, e) {
		return b.Center(id)
	}
	s := isosurfaceFraction(i, e)
	shift := f.Direction.Normal().Mul(s * (i.halfwidth + e.halfwidth))
	return tree.Center(f.Interior).Add(shift)
}

// FaceCenter is the plain geometric position of a face, used instead of
// FacePosition when use_isosurface_pos is false.
func FaceCenter(b *boundary.Boundary, id boundary.FaceID) r3.Vector {
	return b.Center(id)
}
