package octree


// payloadVersion is bumped whenever a field is added to Payload; Parse uses
// it to populate new fields with their documented defaults when reading data
// written by an older version.
const payloadVersion = 1

// Payload holds the mutable statistics a leaf accumulates about the volume
// it occupies. Only leaves carry a non-nil Payload; internal nodes never do.
type Payload struct {
	Count uint64

	TotalWeight float64
	ProbSum     float64
	ProbSumSq   float64

	SurfaceSum float64
	CornerSum  float64
	PlanarSum  float64

	// FPRoom is the signed room index from floorplan association; negative
	// means unassigned.
	FPRoom int32
	// IsCarved is a debug flag, independent of the probabilistic model. It is
	// merged, subdivided and serialized with the payload; the carve package's
	// shapes do not set it.
	IsCarved bool
}

// NewPayload returns an empty, unobserved payload.
func NewPayload() *Payload {
	return &Payload{FPRoom: -1}
}

// Probability returns the weighted-average occupancy probability, defaulting
// to 0.5 (unknown) when the leaf has never been observed.
func (p *Payload) Probability() float64 {
	if p.TotalWeight == 0 {
		return 0.5
	}
	return p.ProbSum / p.TotalWeight
}

// Variance returns the weighted variance of the occupancy probability,
// capped at 1 when it would otherwise be undefined (no samples).
func (p *Payload) Variance() float64 {
	if p.TotalWeight == 0 {
		return 1
	}
	mean := p.Probability()
	v := p.ProbSumSq/p.TotalWeight - mean*mean
	if v > 1 || v < 0 {
		return 1
	}
	return v
}

// Planar returns the weighted-average planarity prior.
func (p *Payload) Planar() float64 {
	if p.TotalWeight == 0 {
		return 0
	}
	return p.PlanarSum / p.TotalWeight
}

// Surface returns the weighted-average surface prior.
func (p *Payload) Surface() float64 {
	if p.TotalWeight == 0 {
		return 0
	}
	return p.SurfaceSum / p.TotalWeight
}

// Corner returns the weighted-average corner prior.
func (p *Payload) Corner() float64 {
	if p.TotalWeight == 0 {
		return 0
	}
	return p.CornerSum / p.TotalWeight
}

// Interior reports whether this leaf's occupancy probability places it on
// the solid side of the ½ threshold.
func (p *Payload) Interior() bool {
	return p.Probability() > 0.5
}

// Object reports whether this leaf is exterior but tagged with a room
// (FPRoom >= 0), i.e. a fixture-scale void inside a floorplan room. This
// requires a floorplan association (FPRoom) to be meaningful.
func (p *Payload) Object() bool {
	return !p.Interior() && p.FPRoom >= 0
}

// AddSample merges a single weighted observation into the payload: an
// occupancy probability sample plus the three geometric priors.
func (p *Payload) AddSample(weight, prob, surface, planar, corner float64) {
	p.Count++
	p.TotalWeight += weight
	p.ProbSum += weight * prob
	p.ProbSumSq += weight * prob * prob
	p.SurfaceSum += weight * surface
	p.PlanarSum += weight * planar
	p.CornerSum += weight * corner
}

// Merge folds other into p in place, following the commutative payload
// merge law: additive fields sum, FPRoom is taken from whichever operand has
// one set (other's wins if both are set, matching "later writes win"), and
// IsCarved is OR-ed.
func (p *Payload) Merge(other *Payload) {
	if other == nil {
		return
	}
	p.Count += other.Count
	p.TotalWeight += other.TotalWeight
	p.ProbSum += other.ProbSum
	p.ProbSumSq += other.ProbSumSq
	p.SurfaceSum += other.SurfaceSum
	p.PlanarSum += other.PlanarSum
	p.CornerSum += other.CornerSum
	if other.FPRoom >= 0 {
		p.FPRoom = other.FPRoom
	}
	p.IsCarved = p.IsCarved || other.IsCarved
}

// Clone returns a deep copy of p.
func (p *Payload) Clone() *Payload {
	c := *p
	return &c
}

// Subdivide returns n copies of p, each holding 1/n of every additive field;
// FPRoom and IsCarved are carried unchanged to every copy. This is used when
// a leaf with a payload is split into children: the statistics it
// accumulated are assumed to apply uniformly across the volume.
func (p *Payload) Subdivide(n int) []*Payload {
	out := make([]*Payload, n)
	frac := 1.0 / float64(n)
	base := p.Count / uint64(n)
	rem := p.Count % uint64(n)
	for i := range out {
		count := base
		if uint64(i) < rem {
			count++ // largest-remainder split keeps sum(count) == p.Count exactly
		}
		out[i] = &Payload{
			Count:       count,
			TotalWeight: p.TotalWeight * frac,
			ProbSum:     p.ProbSum * frac,
			ProbSumSq:   p.ProbSumSq * frac,
			SurfaceSum:  p.SurfaceSum * frac,
			PlanarSum:   p.PlanarSum * frac,
			CornerSum:   p.CornerSum * frac,
			FPRoom:      p.FPRoom,
			IsCarved:    p.IsCarved,
		}
	}
	return out
}

// Flip replaces prob_sum and prob_sum_sq with values consistent with
// probability := 1 - probability, and clamps variance to its maximum (1).
// flip(flip(p)) restores the original probability exactly.
func (p *Payload) Flip() {
	if p.TotalWeight == 0 {
		return
	}
	newProb := 1 - p.Probability()
	p.ProbSum = newProb * p.TotalWeight
	// Choose prob_sum_sq so the derived variance (prob_sum_sq/total_weight -
	// probability²) evaluates to exactly 1, its capped maximum.
	p.ProbSumSq = p.TotalWeight * (1 + newProb*newProb)
}
