package mesh

import (
	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/corner"
	"github.com/eglrp/volcarve/region"
)

// vertexInfo is a corner promoted to a mesh vertex: it is incident on one or
// more distinct regions, each contributing a plane for the snap system.
type vertexInfo struct {
	corner  *corner.Corner
	regions []region.RegionID
}

type vertexData struct {
	vertices []*vertexInfo
	byCorner map[*corner.Corner]*vertexInfo
}

// discoverVertices resolves, for every corner, the set of distinct regions
// incident on it by looking up which region currently owns each of its
// boundary faces. Spec §4.7 calls out corners touching ≥2 regions as
// "vertices" proper, since those are the ones that need cross-region
// consistency; every corner gets an entry here regardless, because the SVD
// snap system degrades gracefully to "project onto the one plane" at k=1
// (the same formula, not a special case), and a region's own triangulation
// still needs a position for every corner of its own faces.
func discoverVertices(b *boundary.Boundary, corners *corner.Map, g *region.Graph) *vertexData {
	vd := &vertexData{byCorner: make(map[*corner.Corner]*vertexInfo)}
	for _, c := range corners.All() {
		seen := make(map[region.RegionID]bool)
		var regions []region.RegionID
		for _, f := range c.Faces {
			r := g.RegionOf(f)
			if r == region.NilRegion || seen[r] {
				continue
			}
			seen[r] = true
			regions = append(regions, r)
		}
		if len(regions) == 0 {
			continue
		}
		v := &vertexInfo{corner: c, regions: regions}
		vd.vertices = append(vd.vertices, v)
		vd.byCorner[c] = v
	}
	return vd
}

// SharedVertices returns the subset of vd's vertices incident on two or
// more distinct regions, matching spec §4.7's literal "is a vertex"
// predicate; for callers that care about cross-region topology rather than
// per-region triangulation. Build itself does not call it.
func (vd *vertexData) SharedVertices() []*vertexInfo {
	var out []*vertexInfo
	for _, v := range vd.vertices {
		if len(v.regions) >= 2 {
			out = append(out, v)
		}
	}
	return out
}
