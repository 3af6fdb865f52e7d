// Package cursor provides the selection model used by editor states.
//
// The cursor package handles:
//
//   - Single regions with the anchor/head Selection type
//   - Ordered multi-region collections with CursorSet
//
// Selection Model:
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head, the selection is a caret with no selected text.
// The selection can extend forward (head > anchor) or backward
// (head < anchor), preserving the user's selection direction.
//
// Multi-Cursor Support:
//
// CursorSet manages multiple selections that are:
//   - Kept sorted by start position
//   - Merged when overlapping
//
// Basic usage:
//
//	cs := cursor.NewEmptyCursorSet()
//	cs.Add(cursor.NewCursorSelection(3))
//	cs.Add(cursor.NewSelection(5, 9))
//	cs.Add(cursor.NewCursorSelection(7)) // merges into [5, 9)
//
// Thread Safety:
//
// Selection is an immutable value type and safe for concurrent use.
// CursorSet is not thread-safe and should be protected by external
// synchronization if accessed concurrently.
package cursor
