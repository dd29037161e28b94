package xbrl

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRegistry(t *testing.T) {
	r := NewDocumentRegistry()
	doc := &Document{URI: "/tax/a.xsd"}

	r.MarkUnloadable("/tax/a.xsd", false)
	assert.True(t, r.IsKnownUnloadable("/tax/a.xsd"))

	r.Put("/tax/a.xsd", doc)
	assert.False(t, r.IsKnownUnloadable("/tax/a.xsd"), "a successful put clears the failure")
	assert.Same(t, doc, r.Get("/tax/a.xsd"))

	r.Alias("/other/a.xsd", doc)
	r.Put("/tax/a.xsd", doc)
	assert.Same(t, doc, r.Get("/other/a.xsd"))
	assert.Equal(t, 1, r.Len())
	assert.ElementsMatch(t, []string{"/tax/a.xsd", "/other/a.xsd"}, r.URIs())

	r.MarkUnloadable("/tax/b.xsd", true)
	r.MarkUnloadable("/tax/b.xsd", false)
	assert.True(t, r.isPermanentlyUnloadable("/tax/b.xsd"))
	r.MarkUnloadable("", true)
	assert.False(t, r.IsKnownUnloadable(""))

	r.clear()
	assert.Nil(t, r.Get("/tax/a.xsd"))
	assert.Zero(t, r.Len())
}

func TestReferringXlinkRole(t *testing.T) {
	el := parseRoot(t, `<link:linkbaseRef xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink" xlink:type="simple" xlink:href="lab.xml"
    xlink:role="http://www.xbrl.org/2003/role/labelLinkbaseRef"/>`)

	ref := &Reference{Kinds: []string{RefHref}, ReferringElement: el}
	assert.Equal(t, "http://www.xbrl.org/2003/role/labelLinkbaseRef", ref.ReferringXlinkRole())

	ref.Kinds = append(ref.Kinds, RefImport)
	assert.Empty(t, ref.ReferringXlinkRole())
	assert.Empty(t, (&Reference{Kinds: []string{RefHref}}).ReferringXlinkRole())
}

func TestDocumentSave(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, Options{})
	doc, err := s.Create(context.Background(), Instance, filepath.Join(dir, "new.xml"), []string{"ex.xsd"}, false, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))
	assert.Contains(t, buf.String(), `xlink:href="ex.xsd"`)
	assert.Contains(t, buf.String(), "<xbrl")

	empty := &Document{URI: "none.xml"}
	assert.ErrorIs(t, empty.Save(&buf), ErrNoRoot)

	text := &Document{URI: "notes.txt", Text: []byte("plain")}
	buf.Reset()
	require.NoError(t, text.Save(&buf))
	assert.Equal(t, "plain", buf.String())
}

func TestDocumentRelativeURI(t *testing.T) {
	doc := &Document{URI: filepath.Join("/filings", "2024", "instance.xml")}
	assert.Equal(t, "ex.xsd", doc.RelativeURI(filepath.Join("/filings", "2024", "ex.xsd")))
	assert.Equal(t, "../shared/ex.xsd", doc.RelativeURI(filepath.Join("/filings", "shared", "ex.xsd")))
	assert.Equal(t, "https://xbrl.fasb.org/us-gaap.xsd", doc.RelativeURI("https://xbrl.fasb.org/us-gaap.xsd"))
}
