package octree

import (
	"testing"

	"go.viam.com/test"
)

func TestPayloadDefaults(t *testing.T) {
	p := NewPayload()
	test.That(t, p.Probability(), test.ShouldEqual, 0.5)
	test.That(t, p.Variance(), test.ShouldEqual, 1)
	test.That(t, p.Interior(), test.ShouldBeFalse)
	test.That(t, p.FPRoom, test.ShouldEqual, int32(-1))
}

func TestPayloadProbabilityBounds(t *testing.T) {
	p := NewPayload()
	p.AddSample(1, 0.9, 0, 0, 0)
	p.AddSample(1, 0.8, 0, 0, 0)
	test.That(t, p.Probability(), test.ShouldBeGreaterThanOrEqualTo, 0)
	test.That(t, p.Probability(), test.ShouldBeLessThanOrEqualTo, 1)
	test.That(t, p.Variance(), test.ShouldBeGreaterThanOrEqualTo, 0)
	test.That(t, p.Variance(), test.ShouldBeLessThanOrEqualTo, 1)
	test.That(t, p.Interior(), test.ShouldBeTrue)
}

func TestPayloadMergeCommutative(t *testing.T) {
	a := NewPayload()
	a.AddSample(2, 0.9, 0.1, 0.2, 0.3)
	b := NewPayload()
	b.AddSample(3, 0.4, 0.5, 0.6, 0.7)

	ab := a.Clone()
	ab.Merge(b)
	ba := b.Clone()
	ba.Merge(a)

	test.That(t, ab.Count, test.ShouldEqual, ba.Count)
	test.That(t, ab.TotalWeight, test.ShouldAlmostEqual, ba.TotalWeight)
	test.That(t, ab.ProbSum, test.ShouldAlmostEqual, ba.ProbSum)
	test.That(t, ab.ProbSumSq, test.ShouldAlmostEqual, ba.ProbSumSq)
	test.That(t, ab.SurfaceSum, test.ShouldAlmostEqual, ba.SurfaceSum)
	test.That(t, ab.PlanarSum, test.ShouldAlmostEqual, ba.PlanarSum)
	test.That(t, ab.CornerSum, test.ShouldAlmostEqual, ba.CornerSum)
}

func TestPayloadSubdivideMergeInverse(t *testing.T) {
	p := NewPayload()
	p.Count = 17
	p.TotalWeight = 10
	p.ProbSum = 6
	p.ProbSumSq = 4
	p.SurfaceSum = 1
	p.PlanarSum = 2
	p.CornerSum = 3
	p.FPRoom = 5

	splits := p.Subdivide(8)
	test.That(t, len(splits), test.ShouldEqual, 8)

	merged := splits[0].Clone()
	var totalCount uint64
	for i, s := range splits {
		if i > 0 {
			merged.Merge(s)
		}
		totalCount += s.Count
	}

	test.That(t, totalCount, test.ShouldEqual, p.Count)
	test.That(t, merged.TotalWeight, test.ShouldAlmostEqual, p.TotalWeight)
	test.That(t, merged.ProbSum, test.ShouldAlmostEqual, p.ProbSum)
	test.That(t, merged.ProbSumSq, test.ShouldAlmostEqual, p.ProbSumSq)
	test.That(t, merged.SurfaceSum, test.ShouldAlmostEqual, p.SurfaceSum)
	test.That(t, merged.PlanarSum, test.ShouldAlmostEqual, p.PlanarSum)
	test.That(t, merged.CornerSum, test.ShouldAlmostEqual, p.CornerSum)
	for _, s := range splits {
		test.That(t, s.FPRoom, test.ShouldEqual, p.FPRoom)
	}
}

func TestPayloadFlipInvolution(t *testing.T) {
	p := NewPayload()
	p.AddSample(1, 0.9, 0.1, 0.2, 0.3)
	p.AddSample(2, 0.3, 0.4, 0.5, 0.6)
	before := p.Probability()

	p.Flip()
	test.That(t, p.Probability(), test.ShouldAlmostEqual, 1-before)
	test.That(t, p.Variance(), test.ShouldAlmostEqual, 1)

	p.Flip()
	test.That(t, p.Probability(), test.ShouldAlmostEqual, before)
}

func TestPayloadFlipUnobserved(t *testing.T) {
	p := NewPayload()
	p.Flip()
	test.That(t, p.Probability(), test.ShouldEqual, 0.5)
}
