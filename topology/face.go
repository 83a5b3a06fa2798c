// Package topology implements the face-adjacency layer (C3): it derives,
// for every leaf in an octree.Tree, the set of neighboring leaves across
// each of its six faces, possibly at a different subdivision depth, and
// supports flipping leaves whose neighborhood disagrees with them.
package topology

import "github.com/golang/geo/r3"

// Face names one of the six axis-aligned directions a leaf's box can be
// adjacent across.
type Face int

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// faces enumerates all six in a fixed order, used whenever code needs to
// iterate "every face of a node".
var faces = [6]Face{PosX, NegX, PosY, NegY, PosZ, NegZ}

// Opposite returns the face pointing the other way along the same axis.
func (f Face) Opposite() Face {
	switch f {
	case PosX:
		return NegX
	case NegX:
		return PosX
	case PosY:
		return NegY
	case NegY:
		return PosY
	case PosZ:
		return NegZ
	default:
		return PosZ
	}
}

// Axis returns the coordinate axis (0=x, 1=y, 2=z) f is perpendicular to.
func (f Face) Axis() int {
	switch f {
	case PosX, NegX:
		return 0
	case PosY, NegY:
		return 1
	default:
		return 2
	}
}

// Sign returns +1 for the positive-direction faces, -1 for the negative.
func (f Face) Sign() float64 {
	switch f {
	case PosX, PosY, PosZ:
		return 1
	default:
		return -1
	}
}

// Normal returns the unit outward vector f points along.
func (f Face) Normal() r3.Vector {
	s := f.Sign()
	switch f.Axis() {
	case 0:
		return r3.Vector{X: s}
	case 1:
		return r3.Vector{Y: s}
	default:
		return r3.Vector{Z: s}
	}
}

// Faces returns all six faces in the fixed order used by Build.
func Faces() [6]Face { return faces }

func (f Face) String() string {
	switch f {
	case PosX:
		return "+x"
	case NegX:
		return "-x"
	case PosY:
		return "+y"
	case NegY:
		return "-y"
	case PosZ:
		return "+z"
	case NegZ:
		return "-z"
	default:
		return "?"
	}
}
