// Package properties reads the flat "key = value" files that describe a
// building model and its defaults.
//
// Keys are case-insensitive. When a key appears more than once, whether in
// the same file or in a later file, the first value read is kept. Loading a
// building file ahead of a defaults file therefore lets the building override
// any default.
package properties

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned by the typed getters when a key is absent.
var ErrNotFound = errors.New("property not found")

const trimCutset = " \t\r"

// ParseError reports a malformed line in a properties file.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s in file '%s' on line %d", e.Msg, e.File, e.Line)
}

// Properties is a case-insensitive string map.
type Properties struct {
	values map[string]string
}

// New returns an empty property map.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Load reads each file in order into a new property map.
func Load(files ...string) (*Properties, error) {
	p := New()
	for _, f := range files {
		if err := p.ReadFile(f); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ReadFile merges the contents of path into p.
func (p *Properties) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open properties file: %w", err)
	}
	defer f.Close()

	return p.Read(f, path)
}

// Read merges "key = value" lines from r. name is used in error messages.
func (p *Properties) Read(r io.Reader, name string) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.Trim(scanner.Text(), trimCutset)
		if line == "" || line[0] == '#' {
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return &ParseError{File: name, Line: lineNo, Msg: "Invalid format"}
		}

		key := strings.Trim(line[:eq], trimCutset)
		if key == "" {
			return &ParseError{File: name, Line: lineNo, Msg: "Missing property key"}
		}
		value := strings.Trim(line[eq+1:], trimCutset)
		if value == "" {
			return &ParseError{File: name, Line: lineNo, Msg: "Missing property value"}
		}

		key = strings.ToLower(key)
		if _, exists := p.values[key]; exists {
			continue
		}
		p.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	return nil
}

// Get returns the raw value for key.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[strings.ToLower(key)]
	return v, ok
}

// Put sets key to value, replacing any existing value.
func (p *Properties) Put(key, value string) {
	p.values[strings.ToLower(key)] = value
}

// Contains reports whether key is present.
func (p *Properties) Contains(key string) bool {
	_, ok := p.values[strings.ToLower(key)]
	return ok
}

// Len returns the number of distinct keys.
func (p *Properties) Len() int {
	return len(p.values)
}

// Keys returns the lowercased keys in sorted order.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Properties) lookup(key string) (string, error) {
	v, ok := p.Get(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return v, nil
}

// Float parses the value for key as a float64.
func (p *Properties) Float(key string) (float64, error) {
	v, err := p.lookup(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s cannot be converted to a double: %w", key, err)
	}
	return f, nil
}

// FloatSlice parses a comma separated list of numbers.
func (p *Properties) FloatSlice(key string) ([]float64, error) {
	v, err := p.lookup(key)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(v, ",")
	out := make([]float64, 0, len(parts))
	for i, part := range parts {
		part = strings.Trim(part, trimCutset)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%s element %d cannot be converted to a double: %w", key, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Int parses the value for key as a number and truncates it.
func (p *Properties) Int(key string) (int, error) {
	f, err := p.Float(key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Bool parses true/false, yes/no and 1/0.
func (p *Properties) Bool(key string) (bool, error) {
	v, err := p.lookup(key)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%s cannot be converted to a bool: %q", key, v)
}
