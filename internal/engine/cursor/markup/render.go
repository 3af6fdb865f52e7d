package markup

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/markstate/internal/engine/buffer"
	"github.com/dshills/markstate/internal/engine/cursor"
)

// token is a marker to be inserted into content during rendering.
type token struct {
	offset buffer.ByteOffset
	kind   MarkerKind
	id     int
}

func (t token) String() string {
	if t.kind == EndMarker {
		return "</$" + strconv.Itoa(t.id) + ">"
	}
	return "<$" + strconv.Itoa(t.id) + ">"
}

// Render inserts markers for every selection in cs into content.
//
// Regions are numbered by their index in cs, not by whatever identifier
// was used to parse them. Each region gets a start marker at its anchor
// and, unless it is a caret, an end marker at its head. Selections are
// clamped to content before rendering, so a range lying entirely past the
// end renders as a caret and regions that clamp onto each other merge. A
// nil cs renders content unchanged.
func Render(content string, cs *cursor.CursorSet) string {
	if cs == nil || cs.Count() == 0 {
		return content
	}

	cs = cs.Clone()
	cs.Clamp(buffer.ByteOffset(len(content)))

	tokens := make([]token, 0, cs.Count()*2)
	cs.ForEach(func(i int, sel cursor.Selection) {
		tokens = append(tokens, token{offset: sel.Anchor, kind: StartMarker, id: i})
		if !sel.IsEmpty() {
			tokens = append(tokens, token{offset: sel.Head, kind: EndMarker, id: i})
		}
	})

	// At a shared offset, close regions before opening the next one.
	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if a.offset != b.offset {
			return a.offset < b.offset
		}
		if a.kind != b.kind {
			return a.kind == EndMarker
		}
		return a.id < b.id
	})

	var out strings.Builder
	out.Grow(len(content) + len(tokens)*6)

	var last buffer.ByteOffset
	for _, t := range tokens {
		out.WriteString(content[last:t.offset])
		out.WriteString(t.String())
		last = t.offset
	}
	out.WriteString(content[last:])

	return out.String()
}
