package volcarveerr

import (
	"testing"

	"go.viam.com/test"
)

func TestKindOf(t *testing.T) {
	err := Errorf(InvalidInput, "bad weight %f", 0.0)
	k, ok := KindOf(err)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, k, test.ShouldEqual, InvalidInput)
	test.That(t, Is(err, InvalidInput), test.ShouldBeTrue)
	test.That(t, Is(err, Cancelled), test.ShouldBeFalse)
}

func TestWrapPreservesKind(t *testing.T) {
	base := New(MissingReference, "face 4 has no leaf")
	wrapped := Wrap(MissingReference, base, "extract boundary")
	test.That(t, Is(wrapped, MissingReference), test.ShouldBeTrue)
	test.That(t, wrapped.Error(), test.ShouldContainSubstring, "face 4 has no leaf")
}

func TestWrapNil(t *testing.T) {
	test.That(t, Wrap(Io, nil, "noop"), test.ShouldBeNil)
}
