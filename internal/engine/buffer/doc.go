// Package buffer provides the position types shared by the cursor and
// markup packages.
//
// Position Types:
//
//   - ByteOffset: Raw byte position into a string
//   - Range: Half-open byte range [Start, End)
//   - Point: Line and column position (0-indexed, column in grapheme
//     clusters), used for human-readable reports
//
// All offsets are byte offsets. Text is never assumed to be ASCII; callers
// that need a display column convert with OffsetToPoint.
package buffer
