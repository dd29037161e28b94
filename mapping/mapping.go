// Package mapping remaps document URIs, for example to redirect a published
// taxonomy location to a local copy or into a taxonomy package.
package mapping

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Table holds exact file remappings and path-prefix remappings. Longer
// prefixes take precedence. A nil Table maps nothing.
type Table struct {
	files    map[string]string
	prefixes []prefixMapping
}

type prefixMapping struct {
	from string
	to   string
}

// File is the TOML layout read by Load:
//
//	[files]
//	"http://example.com/a.xsd" = "/local/a.xsd"
//
//	[paths]
//	"http://www.xbrl.org/" = "/taxonomies/xbrl.org/"
type File struct {
	Files map[string]string `toml:"files"`
	Paths map[string]string `toml:"paths"`
}

// New builds a table from exact and prefix mappings.
func New(files, paths map[string]string) *Table {
	t := &Table{files: make(map[string]string, len(files))}
	for from, to := range files {
		t.files[from] = to
	}
	for from, to := range paths {
		t.AddPrefix(from, to)
	}
	return t
}

// Load reads a mapping table from a TOML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a mapping table from TOML.
func Parse(data []byte) (*Table, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	return New(f.Files, f.Paths), nil
}

// AddFile maps one URI to another.
func (t *Table) AddFile(from, to string) {
	if t.files == nil {
		t.files = make(map[string]string)
	}
	t.files[from] = to
}

// AddPrefix maps every URI starting with from onto to.
func (t *Table) AddPrefix(from, to string) {
	t.prefixes = append(t.prefixes, prefixMapping{from: from, to: to})
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].from) > len(t.prefixes[j].from)
	})
}

// IsMapped reports whether uri has a mapping.
func (t *Table) IsMapped(uri string) bool {
	if t == nil {
		return false
	}
	if _, ok := t.files[uri]; ok {
		return true
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(uri, p.from) {
			return true
		}
	}
	return false
}

// MappedURI returns the remapped uri, or uri itself when unmapped.
func (t *Table) MappedURI(uri string) string {
	if t == nil {
		return uri
	}
	if to, ok := t.files[uri]; ok {
		return to
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(uri, p.from) {
			return p.to + uri[len(p.from):]
		}
	}
	return uri
}

// Len returns the number of mappings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.files) + len(t.prefixes)
}
