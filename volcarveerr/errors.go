// Package volcarveerr defines the error kinds shared across the reconstruction
// core (octree, carve, topology, boundary, corner, region, mesh, pipeline).
package volcarveerr

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Kind enumerates the error categories every core package reports through.
type Kind int

const (
	// InvalidInput marks a malformed shape, a zero-weight sample, or an
	// option value outside its documented range.
	InvalidInput Kind = iota
	// DomainTooLarge marks a tree growth that would exceed implementation limits.
	DomainTooLarge
	// InconsistentTopology marks a neighbor-symmetry or adjacency violation
	// found by a verify pass.
	InconsistentTopology
	// MissingReference marks a dangling handle: a face pointing at a removed
	// node, or a region pointing at a seed that no longer exists.
	MissingReference
	// Cancelled marks cooperative cancellation firing mid-operation.
	Cancelled
	// Io marks a persistence read/write failure at the serialization boundary.
	Io
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case DomainTooLarge:
		return "DomainTooLarge"
	case InconsistentTopology:
		return "InconsistentTopology"
	case MissingReference:
		return "MissingReference"
	case Cancelled:
		return "Cancelled"
	case Io:
		return "Io"
	default:
		return "Unknown"
	}
}

// kindError pairs a Kind with the wrapped cause so callers can recover the
// kind with As while %v/Error() still reads as a normal error chain.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.kind.String() + ": " + e.err.Error() }

func (e *kindError) Unwrap() error { return e.err }

// New builds an error of the given kind from a message.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, err: errors.New(msg)}
}

// Errorf builds an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing error, preserving its message as context.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: errors.Wrap(err, msg)}
}

// KindOf extracts the Kind from err, if err (or something it wraps) is a
// kindError. The second return is false for errors this package didn't mint.
func KindOf(err error) (Kind, bool) {
	var ke *kindError
	if stderrors.As(err, &ke) {
		return ke.kind, true
	}
	return InvalidInput, false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
