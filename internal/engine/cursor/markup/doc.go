// Package markup converts between annotated fixture text and editor states.
//
// Annotated text marks selection boundaries inline:
//
//	foo<$0>bar          caret at offset 3
//	foo<$0>bar</$0>     range [3, 6)
//	fo<$0>o<$1>bar</$1> caret at 2, range [3, 6)
//
// A start marker <$N> places a region's anchor, a matching end marker </$N>
// places its head. A start marker without an end is a caret. Identifiers are
// decimal and only pair markers within one piece of text; rendering numbers
// regions by their position in the selection set, so parse followed by
// render may renumber identifiers that were not already in position order.
//
// All offsets are byte offsets into the stripped content. There is no
// escaping: text that looks like a marker is always treated as one, and
// text that does not match the marker grammar is always literal content.
//
// Typical use in tests:
//
//	state := markup.MustParse(t, "foo<$0>bar")
//	state = state.InsertAtCursors("!")
//	markup.AssertState(t, "foo!<$0>bar", state)
package markup
