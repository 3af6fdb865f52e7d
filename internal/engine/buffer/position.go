package buffer

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// ByteOffset represents a byte position in a piece of text.
// This is the fundamental position type, directly indexing into the string.
type ByteOffset = int64

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in grapheme clusters from the start of the line.
type Point struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column (grapheme clusters within line)
}

// String returns a human-readable, 1-based representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// ClampOffset clamps offset to the valid range [0, len(text)].
func ClampOffset(text string, offset ByteOffset) ByteOffset {
	if offset < 0 {
		return 0
	}
	if n := ByteOffset(len(text)); offset > n {
		return n
	}
	return offset
}

// OffsetToPoint converts a byte offset in text to a line/column point.
// Offsets outside the text are clamped. An offset that falls inside a
// multi-byte grapheme cluster is reported at the start of that cluster.
func OffsetToPoint(text string, offset ByteOffset) Point {
	offset = ClampOffset(text, offset)
	prefix := text[:offset]

	line := uint32(strings.Count(prefix, "\n"))
	lineStart := strings.LastIndexByte(prefix, '\n') + 1

	var column uint32
	state := -1
	rest := text[lineStart:]
	consumed := lineStart
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if ByteOffset(consumed+len(cluster)) > offset {
			break
		}
		consumed += len(cluster)
		column++
	}

	return Point{Line: line, Column: column}
}
