package markup

import "testing"

// MustParse parses annotated text and stops the test if it is malformed.
func MustParse(tb testing.TB, text string) State {
	tb.Helper()
	state, err := Parse(text)
	if err != nil {
		tb.Fatalf("markup.MustParse(%q): %v", text, err)
	}
	return state
}

// AssertState reports a test error unless got renders exactly as want.
func AssertState(tb testing.TB, want string, got State) bool {
	tb.Helper()
	if got.Equal(want) {
		return true
	}
	tb.Errorf("state mismatch\n got: %s\nwant: %s", got, want)
	return false
}
