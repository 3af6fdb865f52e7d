// Package fixture loads and runs marker-notation fixture files.
//
// A fixture file lists cases. Each case parses its input, optionally runs a
// Lua script against the parsed state, and compares the rendering with the
// expected text:
//
//	cases:
//	  - name: type at caret
//	    input: "foo<$0>bar"
//	    expect: "foo!<$0>bar"
//	    script: |
//	      state = markup.type(state, "!")
//
// YAML (.yaml, .yml) and TOML (.toml, using [[cases]] tables) files are
// supported. Runner executes cases in parallel, each with its own Lua state.
package fixture
