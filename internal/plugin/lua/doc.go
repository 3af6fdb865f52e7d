// Package lua runs fixture transform scripts on gopher-lua.
//
// A State is a sandboxed interpreter: only the base, table, string and math
// libraries are opened, and functions that load code (dofile, loadfile,
// load, require) are removed. Go functionality is exposed through Modules.
//
// # Markup module
//
// MarkupModule registers the global markup table. States are passed as
// plain tables with 0-based byte offsets:
//
//	local s = markup.parse("foo<$0>bar")
//	-- s = { content = "foobar", regions = { { anchor = 3, head = 3 } } }
//	s = markup.type(s, "!")
//	print(markup.render(s)) -- foo!<$0>bar
//
// Editing functions return a new state table and leave their argument
// untouched.
package lua
