package octree

import (
	"encoding/binary"
	"io"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/eglrp/volcarve/volcarveerr"
)

// currentSerializeVersion is written to the stream header. Parse dispatches
// on this to decide which payload defaults to backfill for older streams.
const currentSerializeVersion uint32 = payloadVersion

// Serialize writes resolution, root center and halfwidth, and a pre-order
// traversal of (has_children, has_payload, payload fields) to w.
func (t *Tree) Serialize(w io.Writer) error {
	root := t.nodes[t.root]
	fields := []float64{t.resolution, root.center.X, root.center.Y, root.center.Z, root.halfwidth}

	if err := binary.Write(w, binary.LittleEndian, currentSerializeVersion); err != nil {
		return volcarveerr.Wrap(volcarveerr.Io, err, "write version")
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return volcarveerr.Wrap(volcarveerr.Io, err, "write header")
		}
	}
	if err := t.writeNode(w, t.root); err != nil {
		return err
	}
	return nil
}

func (t *Tree) writeNode(w io.Writer, id NodeID) error {
	n := t.nodes[id]
	hasChildren := !n.isLeaf()
	if err := binary.Write(w, binary.LittleEndian, hasChildren); err != nil {
		return volcarveerr.Wrap(volcarveerr.Io, err, "write node flag")
	}
	if hasChildren {
		for _, c := range n.children {
			if err := t.writeNode(w, c); err != nil {
				return err
			}
		}
		return nil
	}

	hasPayload := n.payload != nil
	if err := binary.Write(w, binary.LittleEndian, hasPayload); err != nil {
		return volcarveerr.Wrap(volcarveerr.Io, err, "write payload flag")
	}
	if !hasPayload {
		return nil
	}
	return writePayload(w, n.payload)
}

func writePayload(w io.Writer, p *Payload) error {
	values := []interface{}{
		p.Count, p.TotalWeight, p.ProbSum, p.ProbSumSq,
		p.SurfaceSum, p.CornerSum, p.PlanarSum, p.FPRoom, p.IsCarved,
	}
	for _, v := range values {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return volcarveerr.Wrap(volcarveerr.Io, err, "write payload field")
		}
	}
	return nil
}

// Parse reads a stream written by Serialize (any prior version) and
// reconstructs the tree. Fields added after the stream's version are
// populated with their documented defaults: 0.5 probability (via zero
// prob_sum / zero total_weight), 1.0 variance, -1 fp_room, false is_carved.
func Parse(r io.Reader, logger golog.Logger) (*Tree, error) {
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, volcarveerr.Wrap(volcarveerr.Io, err, "read version")
	}

	var resolution, cx, cy, cz, hw float64
	for _, dst := range []*float64{&resolution, &cx, &cy, &cz, &hw} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, volcarveerr.Wrap(volcarveerr.Io, err, "read header")
		}
	}

	t := &Tree{logger: logger, resolution: resolution}
	root, err := t.readNode(r, version, NilNode, -1, r3.Vector{X: cx, Y: cy, Z: cz}, hw, 0)
	if err != nil {
		return nil, err
	}
	t.root = root
	t.maxDepth = computeMaxDepth(hw, resolution)
	return t, nil
}

func (t *Tree) readNode(r io.Reader, version uint32, parent NodeID, childIdx int8, center r3.Vector, halfwidth float64, depth int) (NodeID, error) {
	var hasChildren bool
	if err := binary.Read(r, binary.LittleEndian, &hasChildren); err != nil {
		return NilNode, volcarveerr.Wrap(volcarveerr.Io, err, "read node flag")
	}

	id := t.alloc(node{
		center:    center,
		halfwidth: halfwidth,
		depth:     depth,
		parent:    parent,
		childIdx:  childIdx,
		children:  nilChildren,
	})

	if hasChildren {
		var children [8]NodeID
		for i := 0; i < 8; i++ {
			childCenter := center.Add(childOffsets[i].Mul(halfwidth / 2))
			c, err := t.readNode(r, version, id, int8(i), childCenter, halfwidth/2, depth+1)
			if err != nil {
				return NilNode, err
			}
			children[i] = c
		}
		t.nodes[id].children = children
		return id, nil
	}

	var hasPayload bool
	if err := binary.Read(r, binary.LittleEndian, &hasPayload); err != nil {
		return NilNode, volcarveerr.Wrap(volcarveerr.Io, err, "read payload flag")
	}
	if !hasPayload {
		return id, nil
	}

	p, err := readPayload(r, version)
	if err != nil {
		return NilNode, err
	}
	t.nodes[id].payload = p
	return id, nil
}

func readPayload(r io.Reader, version uint32) (*Payload, error) {
	p := &Payload{FPRoom: -1}
	if version < 1 {
		// No versions below 1 exist yet; this branch documents the contract
		// for future fields: anything not present in the stream keeps its
		// Payload zero-value default, which Probability/Variance interpret
		// as 0.5 / 1.0 respectively via total_weight == 0.
		return p, nil
	}
	fields := []interface{}{
		&p.Count, &p.TotalWeight, &p.ProbSum, &p.ProbSumSq,
		&p.SurfaceSum, &p.CornerSum, &p.PlanarSum, &p.FPRoom, &p.IsCarved,
	}
	for _, dst := range fields {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, volcarveerr.Wrap(volcarveerr.Io, err, "read payload field")
		}
	}
	return p, nil
}
