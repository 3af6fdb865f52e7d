// Package config loads markstate settings.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, .markstate.toml by default
//  3. MARKSTATE_* environment variables
//
// Example file:
//
//	fixture_dirs = ["testdata/fixtures"]
//	strict = true
//	parallel = 8
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[watch]
//	debounce = "250ms"
//
// Command-line flags are applied on top by the cli package.
package config
