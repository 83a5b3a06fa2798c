// Package region implements the planar-region graph (C6): it flood-fills
// boundary faces into regions, fits a plane to each, and coalesces regions
// under a statistical distance threshold.
package region

import (
	"container/list"

	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/octree"
)

// RegionID is a stable arena index for a region.
type RegionID int32

// NilRegion is the sentinel "no region" handle.
const NilRegion RegionID = -1

// Region is a maximal set of coplanar, same-direction boundary faces, its
// fitted plane, and the set of other regions reachable across an adjacency
// link from one of its faces.
type Region struct {
	Faces        []boundary.FaceID
	PlaneOrigin  r3.Vector
	PlaneNormal  r3.Vector
	NeighborSeed map[RegionID]bool
}

// Graph owns the region partition derived from one Boundary.
type Graph struct {
	tree     *octree.Tree
	boundary *boundary.Boundary

	regions    map[RegionID]*Region
	nextID     RegionID
	faceRegion map[boundary.FaceID]RegionID
}

// NewGraph constructs an empty region graph directly, for callers (tests,
// or a pipeline stage seeding regions from a source other than FormRegions)
// that want to build one up by hand via AddRegion.
func NewGraph(tree *octree.Tree, b *boundary.Boundary) *Graph {
	return &Graph{
		tree:       tree,
		boundary:   b,
		regions:    make(map[RegionID]*Region),
		faceRegion: make(map[boundary.FaceID]RegionID),
	}
}

// AddRegion registers a region directly with the given plane, bypassing
// FormRegions's flood fill and fitting.
func (g *Graph) AddRegion(faces []boundary.FaceID, planeOrigin, planeNormal r3.Vector) RegionID {
	id := g.nextID
	g.nextID++
	g.regions[id] = &Region{
		Faces:        faces,
		PlaneOrigin:  planeOrigin,
		PlaneNormal:  planeNormal,
		NeighborSeed: make(map[RegionID]bool),
	}
	for _, f := range faces {
		g.faceRegion[f] = id
	}
	return id
}

// RegionOf returns the region id currently owning face, or NilRegion if no
// region owns it.
func (g *Graph) RegionOf(face boundary.FaceID) RegionID {
	if id, ok := g.faceRegion[face]; ok {
		return id
	}
	return NilRegion
}

// Region returns the region named by id, or nil if it no longer exists
// (swallowed by a coalescence).
func (g *Graph) Region(id RegionID) *Region { return g.regions[id] }

// Regions returns every live region id.
func (g *Graph) Regions() []RegionID {
	out := make([]RegionID, 0, len(g.regions))
	for id := range g.regions {
		out = append(out, id)
	}
	return out
}

// FormRegions seed-and-grows the initial region partition over b: starting
// from any ungrouped face, it accepts neighbors (via b's face-to-face
// adjacency) whose direction matches the seed and whose interior leaf's
// planarity prior is at least planeThresh, growing a region with
// container/list-based BFS (the same queue-based flood fill pattern as
// pointcloud/voxel_segmentation.go's labelComponentBFS). A seed that itself
// fails planeThresh becomes a singleton region.
func FormRegions(tree *octree.Tree, b *boundary.Boundary, planeThresh float64) *Graph {
	g := &Graph{
		tree:       tree,
		boundary:   b,
		regions:    make(map[RegionID]*Region),
		faceRegion: make(map[boundary.FaceID]RegionID),
	}

	assigned := make(map[boundary.FaceID]bool)
	faces := b.Faces()
	for seed := 0; seed < len(faces); seed++ {
		seedID := boundary.FaceID(seed)
		if assigned[seedID] {
			continue
		}
		g.growRegion(seedID, planeThresh, assigned)
	}

	g.linkNeighborSeeds()
	return g
}

func (g *Graph) growRegion(seed boundary.FaceID, planeThresh float64, assigned map[boundary.FaceID]bool) {
	id := g.nextID
	g.nextID++
	r := &Region{NeighborSeed: make(map[RegionID]bool)}
	g.regions[id] = r

	assigned[seed] = true
	r.Faces = append(r.Faces, seed)
	g.faceRegion[seed] = id

	if planarity(g.tree, g.boundary, seed) < planeThresh {
		g.fitPlane(id)
		return
	}

	dir := g.boundary.Face(seed).Direction
	queue := list.New()
	queue.PushBack(seed)
	for queue.Len() > 0 {
		front := queue.Front()
		queue.Remove(front)
		cur := front.Value.(boundary.FaceID)
		for _, cand := range g.boundary.Adjacent(cur) {
			if assigned[cand] {
				continue
			}
			if g.boundary.Face(cand).Direction != dir {
				continue
			}
			if planarity(g.tree, g.boundary, cand) < planeThresh {
				continue
			}
			assigned[cand] = true
			r.Faces = append(r.Faces, cand)
			g.faceRegion[cand] = id
			queue.PushBack(cand)
		}
	}
	g.fitPlane(id)
}

// planarity is the interior leaf's weighted-average planarity prior; the
// exterior leaf (if any) does not participate (spec's open question notes
// only planar_prob is consumed in region growing).
func planarity(tree *octree.Tree, b *boundary.Boundary, id boundary.FaceID) float64 {
	p := tree.Payload(b.Face(id).Interior)
	if p == nil {
		return 0
	}
	return p.Planar()
}

func (g *Graph) fitPlane(id RegionID) {
	r := g.regions[id]
	points := make([]r3.Vector, len(r.Faces))
	for i, f := range r.Faces {
		points[i] = FaceCenter(g.boundary, f)
	}
	if len(points) >= 3 {
		if origin, normal, ok := PlaneFit(points); ok {
			r.PlaneOrigin, r.PlaneNormal = origin, normal
			return
		}
	}
	// Too few points (or a degenerate fit) for least squares: fall back to
	// the seed face's own geometric normal and center, per §9's numerical
	// guidance to prefer the seed normal when a fit can't be trusted.
	seed := r.Faces[0]
	r.PlaneOrigin = FaceCenter(g.boundary, seed)
	r.PlaneNormal = g.boundary.Face(seed).Direction.Normal()
}

// linkNeighborSeeds computes each region's neighbor-seed set: the other
// regions reachable from one of its faces via the boundary's face-to-face
// adjacency graph, regardless of direction (so that later-coalesced
// fragments that ended up adjacent but not grown together are still
// considered as coalescence candidates).
func (g *Graph) linkNeighborSeeds() {
	for faceIdx, region := range g.faceRegion {
		for _, adj := range g.boundary.Adjacent(faceIdx) {
			other := g.faceRegion[adj]
			if other != region {
				g.regions[region].NeighborSeed[other] = true
			}
		}
	}
}
