package markup

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/markstate/internal/engine/buffer"
	"github.com/dshills/markstate/internal/engine/cursor"
)

// markerPattern matches both marker kinds. Group 1 is "/" for end markers,
// group 2 is the identifier.
const markerPattern = `<(/?)\$([0-9]+)>`

// Parser converts annotated text into a State.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	marker     *regexp.Regexp
	strictEnds bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrictEnds makes end markers without a matching start marker an
// error instead of silently dropping them.
func WithStrictEnds() ParserOption {
	return func(p *Parser) {
		p.strictEnds = true
	}
}

// NewParser creates a parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		marker: regexp.MustCompile(markerPattern),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses annotated text with a default parser.
func Parse(text string) (State, error) {
	return NewParser().Parse(text)
}

// marker is a marker occurrence with its offset in the stripped content.
type marker struct {
	kind   MarkerKind
	id     uint32
	offset buffer.ByteOffset
	token  string
	source int
}

// Parse strips all markers from text and builds one region per start
// marker identifier. Offsets are computed against the stripped content in
// a single forward pass, so start and end markers may interleave freely.
func (p *Parser) Parse(text string) (State, error) {
	markers, content, err := p.scan(text)
	if err != nil {
		return State{}, err
	}

	starts := make(map[uint32]marker)
	ends := make(map[uint32]marker)
	var startOrder, endOrder []uint32

	for _, m := range markers {
		side, order := starts, &startOrder
		if m.kind == EndMarker {
			side, order = ends, &endOrder
		}
		if _, exists := side[m.id]; exists {
			return State{}, &MarkerError{Kind: m.kind, Token: m.token, Offset: m.source, Err: ErrDuplicateMarker}
		}
		side[m.id] = m
		*order = append(*order, m.id)
	}

	if p.strictEnds {
		for _, id := range endOrder {
			if _, ok := starts[id]; !ok {
				m := ends[id]
				return State{}, &MarkerError{Kind: EndMarker, Token: m.token, Offset: m.source, Err: ErrOrphanEndMarker}
			}
		}
	}

	selection := cursor.NewEmptyCursorSet()
	for _, id := range startOrder {
		anchor := starts[id].offset
		if end, ok := ends[id]; ok {
			selection.Add(cursor.NewSelection(anchor, end.offset))
		} else {
			selection.Add(cursor.NewCursorSelection(anchor))
		}
	}

	return State{Content: content, Selection: selection}, nil
}

// scan finds every marker in text and returns them in order of appearance
// together with the text that remains once they are removed.
func (p *Parser) scan(text string) ([]marker, string, error) {
	matches := p.marker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, text, nil
	}

	var content strings.Builder
	content.Grow(len(text))

	markers := make([]marker, 0, len(matches))
	removed := 0
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		m := marker{
			kind:   StartMarker,
			offset: buffer.ByteOffset(start - removed),
			token:  text[start:end],
			source: start,
		}
		if loc[3] > loc[2] {
			m.kind = EndMarker
		}

		id, err := strconv.ParseUint(text[loc[4]:loc[5]], 10, 32)
		if err != nil {
			return nil, "", &MarkerError{Kind: m.kind, Token: m.token, Offset: start, Err: ErrInvalidIdentifier}
		}
		m.id = uint32(id)

		content.WriteString(text[last:start])
		last = end
		removed += end - start
		markers = append(markers, m)
	}
	content.WriteString(text[last:])

	return markers, content.String(), nil
}
