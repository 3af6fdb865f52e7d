package buffer

import "errors"

// Errors returned by edit operations.
var (
	// ErrRangeInvalid is returned when a range is inverted or extends past
	// the end of the text.
	ErrRangeInvalid = errors.New("invalid range")
)
