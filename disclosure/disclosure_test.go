package disclosure_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RxDataLab/go-xbrl/disclosure"
)

const efm = `
name = "efm"
entry_nesting = 1
block_disallowed_references = true
allowed_hosts = ["www.sec.gov", "xbrl.fasb.org"]
allowed_prefixes = ["http://www.xbrl.org/"]

[namespace_locations]
"http://fasb.org/us-gaap/2024" = ["https://xbrl.fasb.org/us-gaap/2024/"]

[mappings.paths]
"https://xbrl.example.com/" = "/cache/example/"
`

func loadEFM(t *testing.T) *disclosure.System {
	t.Helper()
	p := filepath.Join(t.TempDir(), "efm.toml")
	require.NoError(t, os.WriteFile(p, []byte(efm), 0o644))
	sys, err := disclosure.Load(p)
	require.NoError(t, err)
	return sys
}

func TestSystem_HrefValid(t *testing.T) {
	sys := loadEFM(t)

	tests := []struct {
		uri  string
		want bool
	}{
		{"/filings/0001/abc-20241231.xsd", true},
		{"https://xbrl.fasb.org/us-gaap/2024/elts/us-gaap-2024.xsd", true},
		{"http://www.xbrl.org/2003/xbrl-instance-2003-12-31.xsd", true},
		{"https://xbrl.example.com/t.xsd", true},
		{"https://evil.example.org/t.xsd", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, sys.HrefValid(tt.uri))
		})
	}
}

func TestSystem_Policy(t *testing.T) {
	sys := loadEFM(t)

	assert.Equal(t, "efm", sys.Name)
	assert.Equal(t, 1, sys.EntryNesting())
	assert.True(t, sys.BlocksDisallowedReferences())

	ns := "http://fasb.org/us-gaap/2024"
	assert.False(t, sys.DisallowedHrefOfNamespace("https://xbrl.fasb.org/us-gaap/2024/elts/us-gaap-2024.xsd", ns))
	assert.True(t, sys.DisallowedHrefOfNamespace("us-gaap-2024.xsd", ns))
	assert.False(t, sys.DisallowedHrefOfNamespace("anything.xsd", "urn:unregistered"))

	assert.True(t, sys.IsMapped("https://xbrl.example.com/t.xsd"))
	assert.Equal(t, "/cache/example/t.xsd", sys.MappedURI("https://xbrl.example.com/t.xsd"))
}

func TestLoad_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(p, []byte("name = "), 0o644))
	_, err := disclosure.Load(p)
	assert.Error(t, err)

	_, err = disclosure.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
