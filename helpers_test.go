package xbrl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/RxDataLab/go-xbrl/webcache"
)

// writeFixtures writes files, keyed by slash-separated relative path, into a
// fresh directory and returns it.
func writeFixtures(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// newTestSession returns a session that never goes to the network.
func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Resolver == nil {
		opts.Resolver = webcache.New(webcache.Config{Dir: t.TempDir(), WorkOffline: true})
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	s := NewSession(opts)
	t.Cleanup(s.Close)
	return s
}

func parseRoot(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	require.NotNil(t, doc.Root())
	return doc.Root()
}

const conceptSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
    xmlns:xbrli="http://www.xbrl.org/2003/instance"
    xmlns:ex="urn:ex" targetNamespace="urn:ex" elementFormDefault="qualified">
  <xs:element id="ex_a" name="a" type="xbrli:stringItemType" substitutionGroup="xbrli:item" xbrli:periodType="instant"/>
  <xs:element id="ex_b" name="b" type="xbrli:stringItemType" substitutionGroup="xbrli:item" xbrli:periodType="instant"/>
  <xs:element id="ex_n" name="n" type="xbrli:monetaryItemType" substitutionGroup="xbrli:item" xbrli:periodType="duration" xbrli:balance="credit"/>
  <xs:element id="ex_t" name="t" substitutionGroup="xbrli:tuple"/>
</xs:schema>
`
