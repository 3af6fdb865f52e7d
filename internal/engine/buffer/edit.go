package buffer

import "fmt"

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
// Ranges are expressed in byte offsets of the text before the edit.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{
		Range:   Range{Start: start, End: end},
		NewText: "",
	}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// Delta returns the change in text length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// Apply applies the edit to text and returns the result.
// Returns ErrRangeInvalid if the edit's range does not fit within text.
func (e Edit) Apply(text string) (string, error) {
	r := e.Range
	if !r.IsValid() || r.Start < 0 || r.End > ByteOffset(len(text)) {
		return "", fmt.Errorf("%w: %s in text of length %d", ErrRangeInvalid, r, len(text))
	}
	return text[:r.Start] + e.NewText + text[r.End:], nil
}
