// Package disclosure models a disclosure system: the policy a regulator
// applies to what a filing may reference.
package disclosure

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/RxDataLab/go-xbrl/mapping"
)

// Config is the TOML layout of a disclosure system file.
//
//	name = "efm"
//	entry_nesting = 1
//	block_disallowed_references = true
//	allowed_hosts = ["www.sec.gov", "xbrl.sec.gov", "xbrl.fasb.org"]
//	allowed_prefixes = ["http://www.xbrl.org/"]
//
//	[namespace_locations]
//	"http://fasb.org/us-gaap/2024" = ["https://xbrl.fasb.org/us-gaap/2024/"]
//
//	[mappings.files]
//	[mappings.paths]
type Config struct {
	Name                      string              `toml:"name"`
	EntryNesting              int                 `toml:"entry_nesting"`
	BlockDisallowedReferences bool                `toml:"block_disallowed_references"`
	AllowedHosts              []string            `toml:"allowed_hosts"`
	AllowedPrefixes           []string            `toml:"allowed_prefixes"`
	NamespaceLocations        map[string][]string `toml:"namespace_locations"`
	Mappings                  mapping.File        `toml:"mappings"`
}

// System is a loaded disclosure system.
type System struct {
	Name string

	entryNesting int
	blocks       bool
	hosts        map[string]bool
	prefixes     []string
	nsLocations  map[string][]string
	mappings     *mapping.Table
}

// New builds a System from cfg.
func New(cfg Config) *System {
	s := &System{
		Name:         cfg.Name,
		entryNesting: cfg.EntryNesting,
		blocks:       cfg.BlockDisallowedReferences,
		hosts:        make(map[string]bool, len(cfg.AllowedHosts)),
		prefixes:     cfg.AllowedPrefixes,
		nsLocations:  cfg.NamespaceLocations,
		mappings:     mapping.New(cfg.Mappings.Files, cfg.Mappings.Paths),
	}
	for _, h := range cfg.AllowedHosts {
		s.hosts[strings.ToLower(h)] = true
	}
	return s
}

// Load reads a disclosure system from a TOML file.
func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read disclosure system: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse disclosure system %s: %w", path, err)
	}
	return New(cfg), nil
}

// HrefValid reports whether a filing may reference uri. Local files are
// always valid; remote ones must match an allowed host or prefix.
func (s *System) HrefValid(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return true
	}
	if s.hosts[strings.ToLower(u.Host)] {
		return true
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(uri, p) {
			return true
		}
	}
	return s.mappings.IsMapped(uri)
}

// BlocksDisallowedReferences reports whether invalid hrefs are refused
// rather than warned about.
func (s *System) BlocksDisallowedReferences() bool {
	return s.blocks
}

// DisallowedHrefOfNamespace reports whether href is not an approved location
// for a schema of namespace. Namespaces without registered locations accept
// any href.
func (s *System) DisallowedHrefOfNamespace(href, namespace string) bool {
	locs, ok := s.nsLocations[namespace]
	if !ok {
		return false
	}
	for _, loc := range locs {
		if href == loc || (strings.HasSuffix(loc, "/") && strings.HasPrefix(href, loc)) {
			return false
		}
	}
	return true
}

// EntryNesting is how many directory levels above the entry point remain
// implicitly permitted.
func (s *System) EntryNesting() int {
	return s.entryNesting
}

// IsMapped reports whether the system remaps uri.
func (s *System) IsMapped(uri string) bool {
	return s.mappings.IsMapped(uri)
}

// MappedURI returns the system's remapping of uri.
func (s *System) MappedURI(uri string) string {
	return s.mappings.MappedURI(uri)
}
