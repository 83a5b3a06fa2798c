package topology

import (
	"container/list"
	"context"

	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/volcarveerr"
)

// RemoveOutliers flips the probability of any leaf whose disagreeing-neighbor
// boundary area exceeds threshold, a fraction in (0.5, 1.0]. Flipped leaves'
// neighbors are re-queued since they may become outliers themselves.
// Iteration proceeds as two FIFOs — leaves discovered to disagree while
// currently interior go first, exterior second — drained in rounds until
// both are empty; a leaf is only ever (re-)enqueued after an adjacent flip,
// which bounds the number of rounds. ctx is checked between rounds so a
// caller's cancellation or deadline stops the loop at a point where the
// tree is already in a consistent state (every queued leaf either flipped
// or not, nothing half-applied).
func (t *Topology) RemoveOutliers(ctx context.Context, threshold float64) (int, error) {
	if threshold <= 0.5 || threshold > 1 {
		return 0, volcarveerr.Errorf(volcarveerr.InvalidInput, "node_outlierthresh must be in (0.5, 1], got %v", threshold)
	}

	interiorQueue := list.New()
	exteriorQueue := list.New()
	queued := make(map[octree.NodeID]bool)

	enqueue := func(id octree.NodeID) {
		if queued[id] {
			return
		}
		if t.leafInterior(id) {
			interiorQueue.PushBack(id)
		} else {
			exteriorQueue.PushBack(id)
		}
		queued[id] = true
	}

	for id := range t.neighbors {
		if t.outlierFraction(id) > threshold {
			enqueue(id)
		}
	}

	flips := 0
	for interiorQueue.Len() > 0 || exteriorQueue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return flips, volcarveerr.Wrap(volcarveerr.Cancelled, err, "remove outliers")
		}
		for interiorQueue.Len() > 0 {
			e := interiorQueue.Front()
			interiorQueue.Remove(e)
			id := e.Value.(octree.NodeID)
			delete(queued, id)
			flips += t.maybeFlip(id, threshold, enqueue)
		}
		for exteriorQueue.Len() > 0 {
			e := exteriorQueue.Front()
			exteriorQueue.Remove(e)
			id := e.Value.(octree.NodeID)
			delete(queued, id)
			flips += t.maybeFlip(id, threshold, enqueue)
		}
	}
	return flips, nil
}

func (t *Topology) maybeFlip(id octree.NodeID, threshold float64, enqueue func(octree.NodeID)) int {
	if t.outlierFraction(id) <= threshold {
		return 0
	}
	p := t.tree.EnsurePayload(id)
	p.Flip()
	for _, f := range faces {
		for _, n := range t.Neighbors(id, f) {
			enqueue(n)
		}
	}
	return 1
}

func (t *Topology) leafInterior(id octree.NodeID) bool {
	p := t.tree.Payload(id)
	if p == nil {
		return false
	}
	return p.Interior()
}

// outlierFraction is the fraction of id's total cube surface area
// (6*(2*hw)^2) whose neighbor disagrees on interior/exterior label,
// weighted per disagreeing neighbor by contact area
// 4*min(hw_id, hw_neighbor)^2. The denominator is id's own fixed surface
// area, not the sum of areas of whichever neighbors happen to exist, so a
// leaf missing a neighbor on some face (domain edge, unbuilt topology)
// never has that gap silently counted as agreement.
func (t *Topology) outlierFraction(id octree.NodeID) float64 {
	self := t.leafInterior(id)
	hwSelf := t.tree.Halfwidth(id)
	total := 24 * hwSelf * hwSelf

	var disagree float64
	for _, f := range faces {
		for _, n := range t.Neighbors(id, f) {
			hwN := t.tree.Halfwidth(n)
			m := hwSelf
			if hwN < m {
				m = hwN
			}
			if t.leafInterior(n) != self {
				disagree += 4 * m * m
			}
		}
	}
	if total == 0 {
		return 0
	}
	return disagree / total
}
