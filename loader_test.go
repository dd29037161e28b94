package xbrl

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RxDataLab/go-xbrl/disclosure"
)

const importingSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:t1">
  <xs:import namespace="urn:t2" schemaLocation="t2.xsd"/>
  <xs:element name="a" type="xs:string"/>
</xs:schema>`

const importedSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:t2">
  <xs:import namespace="urn:t1" schemaLocation="t1.xsd"/>
  <xs:element name="b" type="xs:string"/>
</xs:schema>`

func TestLoadSchemaImport(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"t1.xsd": importingSchema,
		"t2.xsd": importedSchema,
	})
	s := newTestSession(t, Options{})

	t1, err := s.Load(context.Background(), filepath.Join(dir, "t1.xsd"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	require.NotNil(t, t1)
	assert.Equal(t, Schema, t1.Type)
	assert.Same(t, t1, s.EntryDocument)

	// The import cycle back to t1 must not load anything twice.
	assert.Equal(t, 2, s.Registry().Len())
	t2 := s.Registry().Get(filepath.Join(dir, "t2.xsd"))
	require.NotNil(t, t2)

	ref := t1.ReferenceTo(t2)
	require.NotNil(t, ref)
	assert.True(t, ref.HasKind(RefImport))
	assert.True(t, t2.ReferencesDocument(t1))
	assert.True(t, t2.InDTS)

	assert.Equal(t, []*Document{t2}, s.NamespaceDocs["urn:t2"])
	assert.Equal(t, []*Document{t1}, s.NamespaceDocs["urn:t1"])
	assert.NotNil(t, s.Concept(QName{Space: "urn:t1", Local: "a"}))
	assert.NotNil(t, s.Concept(QName{Space: "urn:t2", Local: "b"}))
	assert.Empty(t, s.Diagnostics().Errors())
}

func TestLoadReturnsSameDocument(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"t1.xsd": importingSchema,
		"t2.xsd": importedSchema,
	})
	s := newTestSession(t, Options{})
	ctx := context.Background()

	first, err := s.Load(ctx, filepath.Join(dir, "t1.xsd"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	second, err := s.Load(ctx, filepath.Join(dir, "sub", "..", "t1.xsd"), LoadRequest{})
	require.NoError(t, err)
	assert.Same(t, first, second)

	t2, err := s.Load(ctx, "t2.xsd", LoadRequest{Base: filepath.Join(dir, "t1.xsd")})
	require.NoError(t, err)
	assert.Same(t, s.Registry().Get(filepath.Join(dir, "t2.xsd")), t2)
	assert.Equal(t, 2, s.Registry().Len())
}

func TestLoadMissingDocument(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, Options{})
	ctx := context.Background()
	missing := filepath.Join(dir, "missing.xsd")

	doc, err := s.Load(ctx, missing, LoadRequest{IsEntry: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotLoadable))
	assert.Nil(t, doc)
	assert.True(t, s.Diagnostics().Has("FileNotLoadable"))
	assert.True(t, s.Registry().IsKnownUnloadable(missing))

	// A second attempt is answered from the unloadable set.
	before := len(s.Diagnostics())
	doc, err = s.Load(ctx, missing, LoadRequest{})
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Len(t, s.Diagnostics(), before)
}

func TestLoadMalformedXML(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"bad.xml": "<a><b></a>",
	})
	s := newTestSession(t, Options{})

	doc, err := s.Load(context.Background(), filepath.Join(dir, "bad.xml"), LoadRequest{IsEntry: true})
	require.Error(t, err)
	assert.Nil(t, doc)
	diags := s.Diagnostics().WithCode("xmlSyntax")
	require.Len(t, diags, 1)
	assert.Equal(t, KindMalformedXML, diags[0].Kind)
	assert.Equal(t, LevelError, diags[0].Level)
}

func TestLoadNonXMLReference(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"instance.xml": `<xbrl xmlns="http://www.xbrl.org/2003/instance"
    xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:schemaRef xlink:type="simple" xlink:href="notes.txt"/>
</xbrl>`,
		"notes.txt": "plain text, not a schema",
	})
	s := newTestSession(t, Options{})

	doc, err := s.Load(context.Background(), filepath.Join(dir, "instance.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	assert.Equal(t, Instance, doc.Type)

	notes := s.Registry().Get(filepath.Join(dir, "notes.txt"))
	require.NotNil(t, notes)
	assert.Equal(t, UnknownNonXML, notes.Type)
	assert.Equal(t, "plain text, not a schema", string(notes.Text))
	assert.False(t, notes.InDTS)
}

func TestLoadAbortOnMajorError(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"instance.xml": `<xbrl xmlns="http://www.xbrl.org/2003/instance"
    xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:schemaRef xlink:type="simple" xlink:href="missing.xsd"/>
</xbrl>`,
	})

	tests := []struct {
		name  string
		abort bool
	}{
		{name: "abort", abort: true},
		{name: "continue", abort: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, Options{AbortOnMajorError: tt.abort})
			doc, err := s.Load(context.Background(), filepath.Join(dir, "instance.xml"), LoadRequest{IsEntry: true})
			if !tt.abort {
				require.NoError(t, err)
				assert.NotNil(t, doc)
				assert.True(t, s.Diagnostics().Has("FileNotLoadable"))
				return
			}
			var le *LoadingError
			require.True(t, errors.As(err, &le), "expected LoadingError, got %v", err)
			assert.Equal(t, "FileNotLoadable", le.Code)
			assert.True(t, strings.HasSuffix(le.URI, "missing.xsd"))
		})
	}
}

func TestLoadDuplicateSchemaUnderOtherPath(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"entry.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:entry">
  <xs:import namespace="urn:t2" schemaLocation="a/t2.xsd"/>
  <xs:import namespace="urn:t2" schemaLocation="b/t2.xsd"/>
</xs:schema>`,
		"a/t2.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:t2"/>`,
		"b/t2.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:t2"/>`,
	})
	s := newTestSession(t, Options{})

	_, err := s.Load(context.Background(), filepath.Join(dir, "entry.xsd"), LoadRequest{IsEntry: true})
	require.NoError(t, err)

	a := s.Registry().Get(filepath.Join(dir, "a", "t2.xsd"))
	b := s.Registry().Get(filepath.Join(dir, "b", "t2.xsd"))
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, 2, s.Registry().Len())
	assert.True(t, s.Diagnostics().Has("xbrl:duplicateSchema"))
	assert.Len(t, s.NamespaceDocs["urn:t2"], 1)
}

func TestLoadDisclosureSystemProhibitedFile(t *testing.T) {
	const remote = "http://evil.example.com/x.xsd"
	tests := []struct {
		name    string
		blocked bool
		level   Level
	}{
		{name: "blocked", blocked: true, level: LevelError},
		{name: "allowed with warning", blocked: false, level: LevelWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFixtures(t, map[string]string{
				"entry.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:entry">
  <xs:import namespace="urn:evil" schemaLocation="` + remote + `"/>
</xs:schema>`,
			})
			s := newTestSession(t, Options{
				DisclosureSystem: disclosure.New(disclosure.Config{
					AllowedHosts:              []string{"www.xbrl.org"},
					BlockDisallowedReferences: tt.blocked,
				}),
				ValidateDisclosureSystem: true,
			})

			_, err := s.Load(context.Background(), filepath.Join(dir, "entry.xsd"), LoadRequest{IsEntry: true})
			require.NoError(t, err)

			diags := s.Diagnostics().WithCode("disclosureSystem:prohibitedFile")
			require.Len(t, diags, 1)
			assert.Equal(t, tt.level, diags[0].Level)
			assert.Contains(t, diags[0].Message, remote)
			// A blocked file is never fetched; an allowed one fails offline.
			assert.Equal(t, !tt.blocked, s.Diagnostics().Has("FileNotLoadable"))
			assert.True(t, s.Registry().IsKnownUnloadable(remote))
			assert.Nil(t, s.Registry().Get(remote))
		})
	}
}

func TestLoadSchemaMislocatedElements(t *testing.T) {
	const ns = `xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink"`
	tests := []struct {
		name  string
		child string
		code  string
	}{
		{
			name:  "role type",
			child: `<link:roleType roleURI="urn:role:r1" id="r1"><link:usedOn>link:presentationLink</link:usedOn></link:roleType>`,
			code:  "xbrl:roleTypeLocation",
		},
		{
			name:  "arcrole type",
			child: `<link:arcroleType arcroleURI="urn:arcrole:a1" cyclesAllowed="none" id="a1"/>`,
			code:  "xbrl:arcroleTypeLocation",
		},
		{
			name:  "linkbase ref",
			child: `<link:linkbaseRef xlink:type="simple" xlink:href="lab.xml" xlink:arcrole="http://www.w3.org/1999/xlink/properties/linkbase"/>`,
			code:  "xbrl:linkbaseRefLocation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFixtures(t, map[string]string{
				"entry.xsd": `<xs:schema ` + ns + ` targetNamespace="urn:entry">
  ` + tt.child + `
</xs:schema>`,
				"lab.xml": `<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase"/>`,
			})
			s := newTestSession(t, Options{})

			_, err := s.Load(context.Background(), filepath.Join(dir, "entry.xsd"), LoadRequest{IsEntry: true})
			require.NoError(t, err)

			diags := s.Diagnostics().WithCode(tt.code)
			require.Len(t, diags, 1)
			assert.Equal(t, LevelError, diags[0].Level)
		})
	}

	t.Run("inside appinfo", func(t *testing.T) {
		dir := writeFixtures(t, map[string]string{
			"entry.xsd": `<xs:schema ` + ns + ` targetNamespace="urn:entry">
  <xs:annotation><xs:appinfo>
    <link:linkbaseRef xlink:type="simple" xlink:href="lab.xml"/>
    <link:roleType roleURI="urn:role:r1" id="r1"><link:usedOn>link:presentationLink</link:usedOn></link:roleType>
  </xs:appinfo></xs:annotation>
</xs:schema>`,
			"lab.xml": `<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase"/>`,
		})
		s := newTestSession(t, Options{})

		_, err := s.Load(context.Background(), filepath.Join(dir, "entry.xsd"), LoadRequest{IsEntry: true})
		require.NoError(t, err)
		assert.False(t, s.Diagnostics().Has("xbrl:linkbaseRefLocation"))
		assert.False(t, s.Diagnostics().Has("xbrl:roleTypeLocation"))
		assert.NotNil(t, s.Registry().Get(filepath.Join(dir, "lab.xml")))
	})
}

func TestLoadMislocatedLinkbaseRefStillDiscovered(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"entry.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink" targetNamespace="urn:entry">
  <link:linkbaseRef xlink:type="simple" xlink:href="lab.xml"/>
</xs:schema>`,
		"lab.xml": `<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase"/>`,
	})
	s := newTestSession(t, Options{})

	entry, err := s.Load(context.Background(), filepath.Join(dir, "entry.xsd"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	assert.True(t, s.Diagnostics().Has("xbrl:linkbaseRefLocation"))
	lab := s.Registry().Get(filepath.Join(dir, "lab.xml"))
	require.NotNil(t, lab)
	assert.True(t, entry.ReferencesDocument(lab))
}

func TestLoadCustomLinkWithoutSchema(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"links.xml": `<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <my:customLink xmlns:my="urn:my" xlink:type="extended" xlink:role="http://www.xbrl.org/2003/role/link"/>
</link:linkbase>`,
	})
	s := newTestSession(t, Options{})

	doc, err := s.Load(context.Background(), filepath.Join(dir, "links.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)

	diags := s.Diagnostics().WithCode("xbrl:schemaDefinitionMissing")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "urn:my")
	require.Len(t, doc.Links, 1)
	assert.True(t, doc.Links[0].Recognized)
}

func TestSkipDTSCreatesPrototypes(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"instance.xml": `<xbrl xmlns="http://www.xbrl.org/2003/instance"
    xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:schemaRef xlink:type="simple" xlink:href="ex.xsd"/>
  <link:linkbaseRef xlink:type="simple" xlink:href="lab.xml"/>
</xbrl>`,
		"ex.xsd": conceptSchema,
	})
	s := newTestSession(t, Options{SkipDTS: true})

	doc, err := s.Load(context.Background(), filepath.Join(dir, "instance.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Registry().Len())
	require.Len(t, doc.HrefObjects, 2)

	protos := s.DocumentPrototypes()
	require.Len(t, protos, 2)
	assert.Equal(t, Schema, protos[filepath.Join(dir, "ex.xsd")].Type)
	assert.Equal(t, Linkbase, protos[filepath.Join(dir, "lab.xml")].Type)
	assert.Empty(t, s.Concepts)
}

func TestCreateInstance(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"ex.xsd": conceptSchema,
	})
	s := newTestSession(t, Options{})

	doc, err := s.Create(context.Background(), Instance, filepath.Join(dir, "new.xml"), []string{"ex.xsd"}, true, "")
	require.NoError(t, err)
	assert.Equal(t, Instance, doc.Type)
	assert.Same(t, doc, s.EntryDocument)
	assert.Same(t, doc.Root, doc.TargetRoot)

	ex := s.Registry().Get(filepath.Join(dir, "ex.xsd"))
	require.NotNil(t, ex)
	assert.True(t, doc.ReferenceTo(ex).HasKind(RefHref))
	assert.NotNil(t, s.Concept(QName{Space: "urn:ex", Local: "a"}))
}

func TestCreateDocumentSetWithoutXML(t *testing.T) {
	s := newTestSession(t, Options{})

	doc, err := s.Create(context.Background(), DTSEntries, filepath.Join(t.TempDir(), "entries.dts"), nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, DTSEntries, doc.Type)
	assert.Nil(t, doc.XMLDocument)
	assert.Nil(t, doc.Root)
}

func TestCloseEmptiesSession(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"t1.xsd": importingSchema,
		"t2.xsd": importedSchema,
	})
	var closed []string
	s := newTestSession(t, Options{Hooks: Hooks{
		CustomCloser: []func(*Document){func(d *Document) { closed = append(closed, d.BaseName()) }},
	}})

	t1, err := s.Load(context.Background(), filepath.Join(dir, "t1.xsd"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	s.Close()

	assert.ElementsMatch(t, []string{"t1.xsd", "t2.xsd"}, closed)
	assert.Zero(t, s.Registry().Len())
	assert.Nil(t, s.EntryDocument)
	assert.Empty(t, s.Concepts)
	assert.Empty(t, t1.References())
}

func TestHooksPullLoader(t *testing.T) {
	s := newTestSession(t, Options{Hooks: Hooks{
		IsPullLoadable: []func(*Session, string, LoadRequest) bool{
			func(_ *Session, uri string, _ LoadRequest) bool { return strings.HasSuffix(uri, ".pulled") },
		},
		PullLoader: []func(context.Context, *Session, string, LoadRequest) *Document{
			func(_ context.Context, s *Session, uri string, _ LoadRequest) *Document {
				return s.newDocument(UnknownXML, uri, "", nil)
			},
		},
	}})

	uri := filepath.Join(t.TempDir(), "virtual.pulled")
	doc, err := s.Load(context.Background(), uri, LoadRequest{IsEntry: true})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, uri, doc.URI)
	assert.Same(t, doc, s.Registry().Get(uri))
}
