package region

import (
	"container/heap"
	"context"
	"math"

	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/volcarveerr"
)

const varianceEpsilon = 1e-12

// pairScore is one candidate merge, keyed by its max_err (lower is better)
// and stamped with the face counts each region had when it was scored, so a
// stale entry (a region modified by an unrelated merge since) can be
// detected cheaply without re-walking the whole graph.
type pairScore struct {
	a, b           RegionID
	maxErr         float64
	countA, countB int
	index          int
}

type pairHeap []*pairScore

func (h pairHeap) Len() int            { return len(h) }
func (h pairHeap) Less(i, j int) bool  { return h[i].maxErr < h[j].maxErr }
func (h pairHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *pairHeap) Push(x interface{}) { p := x.(*pairScore); p.index = len(*h); *h = append(*h, p) }
func (h *pairHeap) Pop() interface{} {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// CoalesceOptions configures Coalesce, per spec §4.7's enumerated fields.
type CoalesceOptions struct {
	DistThresh       float64 // sigma threshold on max_err; default 2.0
	UseIsosurfacePos bool
}

// Coalesce repeatedly merges the best-scoring neighboring region pair until
// the best remaining pair's max_err exceeds DistThresh. Returns the number
// of merges performed, and a non-nil error if ctx is cancelled before the
// loop converges; a cancellation leaves every region that was not mid-merge
// untouched, so the graph remains a valid (if incomplete) partition.
func Coalesce(ctx context.Context, g *Graph, opts CoalesceOptions) (int, error) {
	pending := make(map[[2]RegionID]bool)
	pq := &pairHeap{}
	heap.Init(pq)

	for _, id := range g.Regions() {
		g.pushNeighborPairs(id, opts, pq, pending)
	}

	merges := 0
	for pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return merges, volcarveerr.Wrap(volcarveerr.Cancelled, err, "coalesce regions")
		}
		p := heap.Pop(pq).(*pairScore)
		key := canonicalPair(p.a, p.b)
		delete(pending, key)

		ra, okA := g.regions[p.a]
		rb, okB := g.regions[p.b]
		if !okA || !okB {
			continue
		}
		if len(ra.Faces) != p.countA || len(rb.Faces) != p.countB {
			g.pushPair(p.a, p.b, opts, pq, pending)
			continue
		}
		if p.maxErr > opts.DistThresh {
			break
		}
		g.merge(p.a, p.b, opts)
		merges++
		g.pushNeighborPairs(p.a, opts, pq, pending)
	}
	return merges, nil
}

func canonicalPair(a, b RegionID) [2]RegionID {
	if a < b {
		return [2]RegionID{a, b}
	}
	return [2]RegionID{b, a}
}

func (g *Graph) pushNeighborPairs(id RegionID, opts CoalesceOptions, pq *pairHeap, pending map[[2]RegionID]bool) {
	r, ok := g.regions[id]
	if !ok {
		return
	}
	for n := range r.NeighborSeed {
		g.pushPair(id, n, opts, pq, pending)
	}
}

func (g *Graph) pushPair(a, b RegionID, opts CoalesceOptions, pq *pairHeap, pending map[[2]RegionID]bool) {
	key := canonicalPair(a, b)
	if pending[key] {
		return
	}
	ra, okA := g.regions[a]
	rb, okB := g.regions[b]
	if !okA || !okB {
		return
	}
	score := g.scorePair(a, b, opts)
	score.countA, score.countB = len(ra.Faces), len(rb.Faces)
	pending[key] = true
	heap.Push(pq, score)
}

// scorePair computes the least-squares plane of the union of a and b's face
// positions and the resulting max_err across every face in the union.
func (g *Graph) scorePair(a, b RegionID, opts CoalesceOptions) *pairScore {
	ra, rb := g.regions[a], g.regions[b]
	faces := append(append([]boundary.FaceID{}, ra.Faces...), rb.Faces...)

	points := make([]r3.Vector, len(faces))
	for i, f := range faces {
		points[i] = g.facePos(f, opts)
	}
	origin, normal, ok := PlaneFit(points)
	if !ok {
		return &pairScore{a: a, b: b, maxErr: math.Inf(1)}
	}

	maxErr := 0.0
	for _, f := range faces {
		pos := g.facePos(f, opts)
		dist := math.Abs(pos.Sub(origin).Dot(normal))
		variance := FaceVariance(g.tree, g.boundary, f)
		if variance < varianceEpsilon {
			variance = varianceEpsilon
		}
		err := dist / math.Sqrt(variance)
		if err > maxErr {
			maxErr = err
		}
	}
	return &pairScore{a: a, b: b, maxErr: maxErr}
}

func (g *Graph) facePos(f boundary.FaceID, opts CoalesceOptions) r3.Vector {
	if opts.UseIsosurfacePos {
		return FacePosition(g.tree, g.boundary, f)
	}
	return FaceCenter(g.boundary, f)
}

// merge folds b into a: unions face sets, reassigns the face->region index,
// unions neighbor-seed sets (minus self-references), rewrites every
// neighbor's neighbor-seed set to replace b with a, and stores the pair's
// fitted plane on the survivor.
func (g *Graph) merge(a, b RegionID, opts CoalesceOptions) {
	ra, rb := g.regions[a], g.regions[b]

	for _, f := range rb.Faces {
		g.faceRegion[f] = a
	}
	ra.Faces = append(ra.Faces, rb.Faces...)

	for n := range rb.NeighborSeed {
		if n != a {
			ra.NeighborSeed[n] = true
		}
	}
	delete(ra.NeighborSeed, b)

	for _, id := range g.Regions() {
		if id == a || id == b {
			continue
		}
		if r := g.regions[id]; r.NeighborSeed[b] {
			delete(r.NeighborSeed, b)
			r.NeighborSeed[a] = true
		}
	}

	points := make([]r3.Vector, len(ra.Faces))
	for i, f := range ra.Faces {
		points[i] = g.facePos(f, opts)
	}
	if origin, normal, ok := PlaneFit(points); ok {
		ra.PlaneOrigin, ra.PlaneNormal = origin, normal
	}

	delete(g.regions, b)
}
