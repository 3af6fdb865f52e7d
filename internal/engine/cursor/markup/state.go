package markup

import (
	"fmt"
	"strings"

	"github.com/dshills/markstate/internal/engine/buffer"
	"github.com/dshills/markstate/internal/engine/cursor"
)

// State is a snapshot of editor text and its selections.
// The zero value is empty content with no selections.
type State struct {
	Content   string
	Selection *cursor.CursorSet
}

// NewState creates a state from content and a list of selections.
func NewState(content string, selections ...cursor.Selection) State {
	return State{
		Content:   content,
		Selection: cursor.NewCursorSetFromSlice(selections),
	}
}

// selections returns the selection set, never nil.
func (s State) selections() *cursor.CursorSet {
	if s.Selection == nil {
		return cursor.NewEmptyCursorSet()
	}
	return s.Selection
}

// String renders the state as annotated text.
func (s State) String() string {
	return Render(s.Content, s.Selection)
}

// Format implements fmt.Formatter. %s and %v print the annotated text,
// %q prints it quoted and %+v adds a list of regions.
func (s State) Format(f fmt.State, verb rune) {
	switch verb {
	case 'q':
		fmt.Fprintf(f, "%q", s.String())
	case 'v':
		if f.Flag('+') {
			fmt.Fprint(f, s.describe())
			return
		}
		fmt.Fprint(f, s.String())
	default:
		fmt.Fprint(f, s.String())
	}
}

func (s State) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", s.String())
	for _, r := range s.Regions() {
		fmt.Fprintf(&b, "\n  %s", r)
	}
	return b.String()
}

// Equal reports whether the state renders exactly as text.
func (s State) Equal(text string) bool {
	return s.String() == text
}

// Equal reports whether s renders exactly as text. It is the mirror of
// State.Equal for assertions written with the literal first.
func Equal(text string, s State) bool {
	return s.Equal(text)
}

// SameAs reports whether two states have the same content and the same
// regions, including region direction.
func (s State) SameAs(other State) bool {
	return s.Content == other.Content && s.selections().Equals(other.selections())
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{Content: s.Content, Selection: s.selections().Clone()}
}

// Apply applies an edit to the content and carries every marker with it.
// A marker at or after the end of the replaced span shifts by the edit's
// length change, so text inserted at a caret lands before the caret. A
// marker strictly inside the replaced span moves to the end of the
// replacement. Regions that collapse onto each other merge.
func (s State) Apply(edit buffer.Edit) (State, error) {
	content, err := edit.Apply(s.Content)
	if err != nil {
		return State{}, err
	}
	sels := s.selections().All()
	for i, sel := range sels {
		sels[i] = cursor.NewSelection(moveMarker(sel.Anchor, edit), moveMarker(sel.Head, edit))
	}
	return NewState(content, sels...), nil
}

func moveMarker(off buffer.ByteOffset, edit buffer.Edit) buffer.ByteOffset {
	switch r := edit.Range; {
	case off >= r.End:
		return off + edit.Delta()
	case off <= r.Start:
		return off
	default:
		return r.Start + buffer.ByteOffset(len(edit.NewText))
	}
}

// InsertAtCursors replaces every region with text, the way typing does
// with multiple cursors. Each region collapses to a caret after its
// inserted text.
func (s State) InsertAtCursors(text string) State {
	sels := s.selections().All()
	if len(sels) == 0 {
		return s.Clone()
	}

	var content strings.Builder
	content.Grow(len(s.Content) + len(sels)*len(text))

	carets := make([]cursor.Selection, 0, len(sels))
	var last, delta buffer.ByteOffset
	for _, sel := range sels {
		r := buffer.NewRange(
			buffer.ClampOffset(s.Content, sel.Start()),
			buffer.ClampOffset(s.Content, sel.End()),
		)
		content.WriteString(s.Content[last:r.Start])
		content.WriteString(text)
		last = r.End

		caret := r.Start + delta + buffer.ByteOffset(len(text))
		carets = append(carets, cursor.NewCursorSelection(caret))
		delta += buffer.ByteOffset(len(text)) - r.Len()
	}
	content.WriteString(s.Content[last:])

	return NewState(content.String(), carets...)
}

// RegionInfo describes one region of a state for reports.
type RegionInfo struct {
	ID       int // display identifier, the region's index in the selection set
	Anchor   buffer.ByteOffset
	Head     buffer.ByteOffset
	Caret    bool
	Backward bool
	Start    buffer.Point // position of the lower bound
	End      buffer.Point // position of the upper bound
	Text     string       // selected text, empty for carets
}

// String returns a one-line description such as "#0 caret 3 (1:4)".
func (r RegionInfo) String() string {
	if r.Caret {
		return fmt.Sprintf("#%d caret %d (%s)", r.ID, r.Anchor, r.Start)
	}
	return fmt.Sprintf("#%d range %d..%d (%s-%s) %q", r.ID, r.Anchor, r.Head, r.Start, r.End, r.Text)
}

// Regions describes every region in display order.
func (s State) Regions() []RegionInfo {
	sels := s.selections().All()
	infos := make([]RegionInfo, len(sels))
	for i, sel := range sels {
		infos[i] = RegionInfo{
			ID:       i,
			Anchor:   sel.Anchor,
			Head:     sel.Head,
			Caret:    sel.IsEmpty(),
			Backward: sel.IsBackward(),
			Start:    buffer.OffsetToPoint(s.Content, sel.Start()),
			End:      buffer.OffsetToPoint(s.Content, sel.End()),
			Text:     sel.Range().Slice(s.Content),
		}
	}
	return infos
}
