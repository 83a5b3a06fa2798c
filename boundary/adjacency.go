package boundary

import (
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/octree"
)

const adjacencyEpsilon = 1e-6

// linkAdjacency computes, for every pair of distinct boundary faces, whether
// they share an edge, and records the link both ways. Two faces are judged
// adjacent by comparing the actual corner positions of their rectangles
// rather than spec §4.4's symbolic same-direction/perpendicular formulas
// directly: a shared-edge test reduces, for axis-aligned rectangles, to
// "share (at least) two corners within epsilon", which is the geometric
// content both of those formulas are expressing and is unambiguous to
// implement. See DESIGN.md for this Open Question resolution.
func linkAdjacency(b *Boundary) {
	corners := make([][4]r3.Vector, len(b.faces))
	for i := range b.faces {
		corners[i] = faceCorners(b.tree, b.faces[i])
	}
	for i := range b.faces {
		for j := i + 1; j < len(b.faces); j++ {
			if !shareEdge(corners[i], corners[j]) {
				continue
			}
			b.adjacent[FaceID(i)] = append(b.adjacent[FaceID(i)], FaceID(j))
			b.adjacent[FaceID(j)] = append(b.adjacent[FaceID(j)], FaceID(i))
		}
	}
}

// shareEdge reports whether two 4-corner rectangles have at least two
// corners in common (within adjacencyEpsilon), which for axis-aligned faces
// means they abut along a shared edge.
func shareEdge(a, b [4]r3.Vector) bool {
	shared := 0
	for _, ca := range a {
		for _, cb := range b {
			if ca.Sub(cb).Norm() < adjacencyEpsilon {
				shared++
				break
			}
		}
	}
	return shared >= 2
}

// faceCorners returns the four corners of f's rectangle, sized to the
// interior leaf's own halfwidth (the leaf's actual face, matching the
// corner package's per-leaf corner indexing), at the plane position of f's
// direction.
func faceCorners(tree *octree.Tree, f Face) [4]r3.Vector {
	center := tree.Center(f.Interior)
	hw := tree.Halfwidth(f.Interior)
	axis := f.Direction.Axis()
	a1, a2 := otherAxes(axis)

	plane := setAxis(center, axis, getAxis(center, axis)+f.Direction.Sign()*hw)
	var out [4]r3.Vector
	i := 0
	for _, s1 := range [2]float64{1, -1} {
		for _, s2 := range [2]float64{1, -1} {
			c := setAxis(plane, a1, getAxis(plane, a1)+s1*hw)
			c = setAxis(c, a2, getAxis(c, a2)+s2*hw)
			out[i] = c
			i++
		}
	}
	return out
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func getAxis(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setAxis(v r3.Vector, axis int, val float64) r3.Vector {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}
