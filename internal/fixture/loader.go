package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions that hold fixtures.
var Extensions = []string{".yaml", ".yml", ".toml"}

// IsFixtureFile reports whether path has a fixture extension.
func IsFixtureFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads and decodes a single fixture file.
func LoadFile(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	cases, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	for i := range cases {
		cases[i].Path = path
	}
	return cases, nil
}

// Decode decodes fixture data in the format named by ext.
// Unnamed cases are named after their position.
func Decode(ext string, data []byte) ([]Case, error) {
	var file File

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	seen := make(map[string]bool, len(file.Cases))
	for i := range file.Cases {
		if file.Cases[i].Name == "" {
			file.Cases[i].Name = fmt.Sprintf("case %d", i+1)
		}
		name := file.Cases[i].Name
		if seen[name] {
			return nil, fmt.Errorf("duplicate case name %q", name)
		}
		seen[name] = true
	}

	return file.Cases, nil
}

// LoadDir loads every fixture file under dir, in lexical path order.
func LoadDir(dir string) ([]Case, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsFixtureFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	sort.Strings(paths)

	var cases []Case
	for _, path := range paths {
		fileCases, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cases = append(cases, fileCases...)
	}
	return cases, nil
}

// LoadPaths loads fixtures from a mix of files and directories.
func LoadPaths(paths []string) ([]Case, error) {
	var cases []Case
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}

		var loaded []Case
		if info.IsDir() {
			loaded, err = LoadDir(path)
		} else {
			loaded, err = LoadFile(path)
		}
		if err != nil {
			return nil, err
		}
		cases = append(cases, loaded...)
	}
	return cases, nil
}
