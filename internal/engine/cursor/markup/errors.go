package markup

import (
	"errors"
	"fmt"
)

// Errors returned by Parse.
var (
	// ErrDuplicateMarker is returned when two start markers (or two end
	// markers) share an identifier.
	ErrDuplicateMarker = errors.New("duplicate marker identifier")

	// ErrOrphanEndMarker is returned in strict mode for an end marker
	// whose identifier has no start marker.
	ErrOrphanEndMarker = errors.New("end marker without start marker")

	// ErrInvalidIdentifier is returned when a marker identifier does not
	// fit in 32 bits.
	ErrInvalidIdentifier = errors.New("marker identifier out of range")
)

// MarkerKind distinguishes start markers from end markers.
type MarkerKind uint8

const (
	// StartMarker is a <$N> token.
	StartMarker MarkerKind = iota
	// EndMarker is a </$N> token.
	EndMarker
)

// String returns "start" or "end".
func (k MarkerKind) String() string {
	if k == EndMarker {
		return "end"
	}
	return "start"
}

// MarkerError describes a malformed marker in annotated text.
type MarkerError struct {
	Kind   MarkerKind
	Token  string // the marker as written, e.g. "<$0>"
	Offset int    // byte offset of the token in the annotated text
	Err    error
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s marker %s at offset %d: %v", e.Kind, e.Token, e.Offset, e.Err)
}

func (e *MarkerError) Unwrap() error {
	return e.Err
}
