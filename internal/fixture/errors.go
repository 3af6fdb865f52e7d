package fixture

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension has no decoder.
	ErrUnsupportedFormat = errors.New("unsupported fixture format")

	// ErrMismatch is wrapped by every MismatchError.
	ErrMismatch = errors.New("fixture mismatch")

	// ErrScriptState is returned when a script leaves the state global
	// as something other than a state table.
	ErrScriptState = errors.New("script left an invalid state")
)

// LoadError records the file a load failure happened in.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading fixture %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MismatchError reports a difference between a case's result and its
// expectations.
type MismatchError struct {
	// Field is "content" or "rendering".
	Field string
	Got   string
	Want  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch\n got: %q\nwant: %q", e.Field, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}
