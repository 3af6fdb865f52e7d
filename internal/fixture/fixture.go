package fixture

import "fmt"

// File is the decoded form of a fixture file.
type File struct {
	Cases []Case `yaml:"cases" toml:"cases"`
}

// Case is a single fixture case.
type Case struct {
	// Name identifies the case in reports.
	Name string `yaml:"name" toml:"name"`

	// Input is the annotated text that is parsed.
	Input string `yaml:"input" toml:"input"`

	// Expect is the expected rendering. Nil means the input itself.
	Expect *string `yaml:"expect,omitempty" toml:"expect,omitempty"`

	// Content, when set, is compared with the stripped content.
	Content *string `yaml:"content,omitempty" toml:"content,omitempty"`

	// Script is Lua run with the parsed state in the global "state".
	Script string `yaml:"script,omitempty" toml:"script,omitempty"`

	// Path is the file the case was loaded from.
	Path string `yaml:"-" toml:"-"`
}

// Expected returns the rendering the case must produce.
func (c Case) Expected() string {
	if c.Expect != nil {
		return *c.Expect
	}
	return c.Input
}

// ID returns a name that is unique across loaded files.
func (c Case) ID() string {
	if c.Path == "" {
		return c.Name
	}
	return fmt.Sprintf("%s: %s", c.Path, c.Name)
}
