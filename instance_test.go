package xbrl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duplicateContextInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
    xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink"
    xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
    xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
    xmlns:ex="urn:ex" xmlns:undeclared="urn:undeclared">
  <link:schemaRef xlink:type="simple" xlink:href="ex.xsd"/>
  <xbrli:context id="c1">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000320193</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2024-09-28</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:context id="c2">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000320193</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2024-09-28</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:context id="d1">
    <xbrli:entity>
      <xbrli:identifier scheme="http://www.sec.gov/CIK">0000320193</xbrli:identifier>
      <xbrli:segment>
        <xbrldi:explicitMember dimension="ex:SegmentAxis">ex:AmericasMember</xbrldi:explicitMember>
        <xbrldi:explicitMember dimension="ex:SegmentAxis">ex:EuropeMember</xbrldi:explicitMember>
      </xbrli:segment>
    </xbrli:entity>
    <xbrli:period><xbrli:startDate>2023-10-01</xbrli:startDate><xbrli:endDate>2024-09-28</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="usd"><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unit>
  <ex:a contextRef="c1">first</ex:a>
  <ex:b contextRef="c2">second</ex:b>
  <ex:n contextRef="d1" unitRef="usd" decimals="-6">391,035,000,000</ex:n>
  <undeclared:x contextRef="c1">orphan</undeclared:x>
</xbrli:xbrl>`

func loadInstance(t *testing.T) (*Session, *Document) {
	t.Helper()
	dir := writeFixtures(t, map[string]string{
		"ex.xsd":       conceptSchema,
		"instance.xml": duplicateContextInstance,
	})
	s := newTestSession(t, Options{})
	doc, err := s.Load(context.Background(), filepath.Join(dir, "instance.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	require.Equal(t, Instance, doc.Type)
	return s, doc
}

func TestInstanceDuplicateContexts(t *testing.T) {
	s, _ := loadInstance(t)

	require.Contains(t, s.Contexts, "c1")
	require.Contains(t, s.Contexts, "c2")
	c1, c2 := s.Contexts["c1"], s.Contexts["c2"]
	assert.NotSame(t, c1, c2)
	assert.Equal(t, c1.Period, c2.Period)
	assert.Equal(t, "0000320193", c1.EntityIdentifier)
	assert.Equal(t, "http://www.sec.gov/CIK", c1.EntityScheme)
	assert.True(t, c1.Period.IsInstant())
	assert.Equal(t, "2024-09-28", c1.Period.Label())
}

func TestInstanceDimensionalContext(t *testing.T) {
	s, _ := loadInstance(t)

	d1 := s.Contexts["d1"]
	require.NotNil(t, d1)
	assert.True(t, d1.Period.IsDuration())
	assert.Equal(t, "2023-10-01 to 2024-09-28", d1.Period.Label())
	end, err := d1.Period.EndTime()
	require.NoError(t, err)
	assert.Equal(t, 2024, end.Year())

	axis := QName{Space: "urn:ex", Local: "SegmentAxis"}
	require.Contains(t, d1.SegDims, axis)
	assert.Equal(t, QName{Space: "urn:ex", Local: "AmericasMember"}, d1.SegDims[axis].Member)
	assert.True(t, d1.SegDims[axis].IsExplicit)
	require.Len(t, d1.ErrorDimValues, 1)
	assert.Equal(t, QName{Space: "urn:ex", Local: "EuropeMember"}, d1.ErrorDimValues[0].Member)
}

func TestInstanceFacts(t *testing.T) {
	s, doc := loadInstance(t)

	require.Len(t, s.Facts, 4)
	assert.Equal(t, s.Facts, s.FactsInInstance)

	a := s.Facts[0]
	assert.Equal(t, "ex:a", a.Name())
	assert.Equal(t, "first", a.Value())
	assert.Same(t, s.Contexts["c1"], a.Context())
	assert.Same(t, doc, a.Document)
	require.NotNil(t, a.Concept)
	assert.True(t, a.Concept.IsItem())

	n := s.Facts[2]
	assert.True(t, n.IsNumeric())
	require.NotNil(t, n.Unit())
	assert.Equal(t, []QName{{Space: "http://www.xbrl.org/2003/iso4217", Local: "USD"}}, n.Unit().Measures)
	v, err := n.Float64()
	require.NoError(t, err)
	assert.Equal(t, 391035000000.0, v)
	assert.Equal(t, "credit", n.Concept.Balance)

	_, err = a.Float64()
	assert.Error(t, err)
}

func TestInstanceUndefinedFacts(t *testing.T) {
	s, _ := loadInstance(t)

	require.Len(t, s.UndefinedFacts, 1)
	assert.Equal(t, "undeclared:x", s.UndefinedFacts[0].Name())
	assert.Nil(t, s.UndefinedFacts[0].Concept)
	diags := s.Diagnostics().WithCode("xbrl:schemaImportMissing")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "undeclared:x")
}

func TestInstanceFootnoteLink(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"ex.xsd": conceptSchema,
		"instance.xml": `<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
    xmlns:link="http://www.xbrl.org/2003/linkbase"
    xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:ex="urn:ex">
  <link:schemaRef xlink:type="simple" xlink:href="ex.xsd"/>
  <xbrli:context id="c1">
    <xbrli:entity><xbrli:identifier scheme="urn:scheme">1</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2024-01-01</xbrli:instant></xbrli:period>
  </xbrli:context>
  <ex:a id="f1" contextRef="c1">value</ex:a>
  <link:footnoteLink xlink:type="extended" xlink:role="http://www.xbrl.org/2003/role/link">
    <link:loc xlink:type="locator" xlink:href="#f1" xlink:label="fact"/>
    <link:footnote xlink:type="resource" xlink:label="note" xlink:role="http://www.xbrl.org/2003/role/footnote" xml:lang="en">A note</link:footnote>
    <link:footnoteArc xlink:type="arc" xlink:arcrole="http://www.xbrl.org/2003/arcrole/fact-footnote" xlink:from="fact" xlink:to="note"/>
  </link:footnoteLink>
</xbrli:xbrl>`,
	})
	s := newTestSession(t, Options{})
	doc, err := s.Load(context.Background(), filepath.Join(dir, "instance.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)

	require.Len(t, doc.Links, 1)
	link := doc.Links[0]
	assert.Len(t, link.LabeledResources["note"], 1)
	assert.Contains(t, s.BaseSets.Get(BaseSetKey{Arcrole: ArcroleFootnotes}), Node(link))
	assert.Contains(t, s.BaseSets.Get(BaseSetKey{Arcrole: FactFootnoteArcrole}), Node(link))

	// A same-document locator records an href to the instance itself.
	require.NotEmpty(t, doc.HrefObjects)
	assert.Same(t, doc, doc.HrefObjects[len(doc.HrefObjects)-1].Document)
	assert.Equal(t, "f1", doc.HrefObjects[len(doc.HrefObjects)-1].Fragment)
	require.Len(t, s.Facts, 1)
}
