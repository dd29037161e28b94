package xbrl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parentChild = "http://www.xbrl.org/2003/arcrole/parent-child"

const presentationLinkbase = `<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:presentationLink xlink:type="extended" xlink:role="http://www.xbrl.org/2003/role/link">
    <link:loc xlink:type="locator" xlink:href="ex.xsd#ex_a" xlink:label="a"/>
    <link:loc xlink:type="locator" xlink:href="ex.xsd#ex_b" xlink:label="b"/>
    <link:presentationArc xlink:type="arc" xlink:arcrole="http://www.xbrl.org/2003/arcrole/parent-child"
        xlink:from="a" xlink:to="b" order="1"/>
    <link:presentationArc xlink:type="arc" xlink:arcrole="http://www.xbrl.org/2003/arcrole/parent-child"
        xlink:from="a" xlink:to="b" order="1"/>
  </link:presentationLink>
</link:linkbase>`

func loadPresentation(t *testing.T) (*Session, *Document) {
	t.Helper()
	dir := writeFixtures(t, map[string]string{
		"ex.xsd":  conceptSchema,
		"pre.xml": presentationLinkbase,
	})
	s := newTestSession(t, Options{})
	doc, err := s.Load(context.Background(), filepath.Join(dir, "pre.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	require.Equal(t, Linkbase, doc.Type)
	return s, doc
}

func TestBaseSetDuplicateArcs(t *testing.T) {
	s, doc := loadPresentation(t)

	require.Len(t, doc.Links, 1)
	link := doc.Links[0]
	assert.True(t, link.Recognized)
	assert.Equal(t, DefaultLinkRole, link.Role)
	assert.Len(t, link.Arcs, 2)
	assert.Len(t, link.Locators, 2)

	key := BaseSetKey{
		Arcrole:   parentChild,
		LinkRole:  DefaultLinkRole,
		LinkQName: QName{Space: NsLink, Local: "presentationLink"},
		ArcQName:  QName{Space: NsLink, Local: "presentationArc"},
	}
	links := s.BaseSets.Get(key)
	require.Len(t, links, 1)
	assert.Same(t, link, links[0])
	assert.Same(t, link, s.LinkForElement(link.Element))

	// The locators brought the schema into the DTS.
	ex := s.Registry().Get(filepath.Join(filepath.Dir(doc.URI), "ex.xsd"))
	require.NotNil(t, ex)
	assert.True(t, ex.InDTS)
	assert.True(t, doc.ReferenceTo(ex).HasKind(RefHref))
	assert.NotNil(t, s.Concept(QName{Space: "urn:ex", Local: "a"}))
}

func TestBaseSetCoarserKeys(t *testing.T) {
	s, doc := loadPresentation(t)
	link := doc.Links[0]
	pres := QName{Space: NsLink, Local: "presentationLink"}
	arc := QName{Space: NsLink, Local: "presentationArc"}

	keys := []BaseSetKey{
		{Arcrole: parentChild, LinkRole: DefaultLinkRole, LinkQName: pres, ArcQName: arc},
		{Arcrole: parentChild, LinkRole: DefaultLinkRole},
		{Arcrole: parentChild},
		{Arcrole: parentChild, LinkQName: pres, ArcQName: arc},
	}
	for _, key := range keys {
		assert.True(t, s.BaseSets.Has(key), "missing key %s", key)
		assert.Contains(t, s.BaseSets.Get(key), Node(link), "key %s", key)
	}
	assert.Equal(t, 4, s.BaseSets.Len())

	// Every link under a full key is also under each of its coarser keys.
	for _, full := range s.BaseSets.Keys() {
		if full.LinkRole == "" || full.LinkQName.IsZero() {
			continue
		}
		coarse := []BaseSetKey{
			{Arcrole: full.Arcrole, LinkRole: full.LinkRole},
			{Arcrole: full.Arcrole},
			{Arcrole: full.Arcrole, LinkQName: full.LinkQName, ArcQName: full.ArcQName},
		}
		for _, l := range s.BaseSets.Get(full) {
			for _, c := range coarse {
				assert.Contains(t, s.BaseSets.Get(c), l)
			}
		}
	}
}

func TestBaseSetRediscoveryIsIdempotent(t *testing.T) {
	s, doc := loadPresentation(t)
	link := doc.Links[0]
	before := s.BaseSets.Keys()

	again := s.discoverExtendedLink(context.Background(), doc, link.Element, false)
	assert.Same(t, link, again)
	assert.Equal(t, before, s.BaseSets.Keys())
	assert.Len(t, doc.Links, 1)
	for _, key := range before {
		assert.Len(t, s.BaseSets.Get(key), 1)
	}
}

func TestBaseSetIndex(t *testing.T) {
	b := NewBaseSetIndex()
	l1 := &Link{Role: "urn:role:b"}
	l2 := &Link{Role: "urn:role:a"}

	b.Add(BaseSetKey{Arcrole: "urn:arc:2", LinkRole: "urn:role:b"}, l1)
	b.Add(BaseSetKey{Arcrole: "urn:arc:1", LinkRole: "urn:role:b"}, l1)
	b.Add(BaseSetKey{Arcrole: "urn:arc:1", LinkRole: "urn:role:a"}, l2)
	b.Add(BaseSetKey{Arcrole: "urn:arc:1", LinkRole: "urn:role:a"}, l2)
	b.Add(BaseSetKey{Arcrole: "urn:arc:3"}, nil)

	assert.Equal(t, 4, b.Len())
	assert.Len(t, b.Get(BaseSetKey{Arcrole: "urn:arc:1", LinkRole: "urn:role:a"}), 1)
	assert.True(t, b.Has(BaseSetKey{Arcrole: "urn:arc:3"}))
	assert.Empty(t, b.Get(BaseSetKey{Arcrole: "urn:arc:3"}))
	assert.False(t, b.Has(BaseSetKey{Arcrole: "urn:arc:4"}))

	b.Sort()
	want := []BaseSetKey{
		{Arcrole: "urn:arc:3"},
		{Arcrole: "urn:arc:1", LinkRole: "urn:role:a"},
		{Arcrole: "urn:arc:1", LinkRole: "urn:role:b"},
		{Arcrole: "urn:arc:2", LinkRole: "urn:role:b"},
	}
	assert.Equal(t, want, b.Keys())
}

func TestBaseSetDimensionalUmbrella(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"ex.xsd": conceptSchema,
		"def.xml": `<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:definitionLink xlink:type="extended" xlink:role="urn:role:dims">
    <link:loc xlink:type="locator" xlink:href="ex.xsd#ex_a" xlink:label="a"/>
    <link:loc xlink:type="locator" xlink:href="ex.xsd#ex_b" xlink:label="b"/>
    <link:definitionArc xlink:type="arc" xlink:arcrole="http://xbrl.org/int/dim/arcrole/domain-member"
        xlink:from="a" xlink:to="b"/>
  </link:definitionLink>
</link:linkbase>`,
	})
	s := newTestSession(t, Options{})
	doc, err := s.Load(context.Background(), filepath.Join(dir, "def.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	link := doc.Links[0]

	assert.Contains(t, s.BaseSets.Get(BaseSetKey{Arcrole: ArcroleDimensions}), Node(link))
	assert.Contains(t, s.BaseSets.Get(BaseSetKey{Arcrole: ArcroleDimensions, LinkRole: "urn:role:dims"}), Node(link))
}
