// Package mesh implements the region mesher (C7): it snaps multi-region
// corners to plane intersections, triangulates each region, and emits a
// watertight vertex/face list.
package mesh

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/boundary"
	"github.com/eglrp/volcarve/corner"
	"github.com/eglrp/volcarve/octree"
	"github.com/eglrp/volcarve/region"
	"github.com/eglrp/volcarve/volcarveerr"
)

// VertexID is an index into a Mesh's Vertices slice.
type VertexID int32

// Mesh is the final output: a vertex list and a triangle list referencing
// it by index, per spec §6's "output mesh" contract.
type Mesh struct {
	Vertices  []r3.Vector
	Triangles [][3]VertexID
}

// Options configures mesh emission, per spec §4.7.
type Options struct {
	MinSingularValue float64 // SVD threshold fraction; default 0.1
	MaxColinearity   float64 // kernel-collapse guard; default 0.99
}

// Build runs vertex discovery, SVD snapping, and per-region triangulation
// over a completed region graph, returning the emitted mesh. ctx is checked
// every 256 vertices during snapping and once more before triangulation; on
// cancellation Build returns a nil mesh and a Cancelled error, so no
// triangle is ever emitted against an unsnapped vertex.
func Build(ctx context.Context, tree *octree.Tree, b *boundary.Boundary, corners *corner.Map, g *region.Graph, opts Options) (*Mesh, error) {
	vd := discoverVertices(b, corners, g)
	m := &Mesh{}
	vertexIndex := make(map[*corner.Corner]VertexID, len(vd.vertices))
	for i, v := range vd.vertices {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, volcarveerr.Wrap(volcarveerr.Cancelled, err, "snap vertices")
			}
		}
		pos := snapVertex(v, g, opts)
		vertexIndex[v.corner] = VertexID(len(m.Vertices))
		m.Vertices = append(m.Vertices, pos)
	}

	if err := ctx.Err(); err != nil {
		return nil, volcarveerr.Wrap(volcarveerr.Cancelled, err, "triangulate regions")
	}
	triangulateRegions(b, corners, g, vertexIndex, m)
	return m, nil
}
