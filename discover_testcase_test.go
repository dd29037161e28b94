package xbrl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestcasesIndexRoot(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"index.xml": `<testcases name="suite" root="variants/">
  <testcase uri="tc1.xml"/>
  <testcase uri="tc2.xml"/>
  <testcases uri="more/index.xml"/>
</testcases>`,
		"variants/tc1.xml": `<testcase xmlns="http://xbrl.org/2005/conformance" name="tc1">
  <variation id="v1" name="Valid">
    <description>  The   first
      variation </description>
  </variation>
  <variation id="v2"><description>second</description></variation>
</testcase>`,
		"variants/tc2.xml": `<testcase xmlns="http://xbrl.org/2011/conformance-rendering/transforms">
  <transform name="ixt:date-day-month"><variation id="a"/><variation id="b"/></transform>
  <transform name="ixt:num-dot-decimal"><variation id="c"/></transform>
</testcase>`,
		"more/index.xml": `<testcases><testcase uri="tc3.xml"/></testcases>`,
		"more/tc3.xml": `<testcase xmlns="http://xbrl.org/2005/conformance"
    xmlns:ix="http://www.xbrl.org/2013/inlineXBRL" id="t3" name="inline only"/>`,
	})
	s := newTestSession(t, Options{})

	index, err := s.Load(context.Background(), filepath.Join(dir, "index.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	assert.Equal(t, TestcasesIndex, index.Type)

	tc1 := s.Registry().Get(filepath.Join(dir, "variants", "tc1.xml"))
	require.NotNil(t, tc1, "testcase must resolve against the root directory")
	assert.Equal(t, Testcase, tc1.Type)
	assert.True(t, index.ReferenceTo(tc1).HasKind(RefTestcaseIndex))
	require.Len(t, tc1.Variations, 2)
	assert.Equal(t, "Valid", tc1.Variations[0].Name)
	assert.Equal(t, "The first variation", tc1.Variations[0].Description)
	assert.Equal(t, "v2", tc1.Variations[1].Name)

	tc2 := s.Registry().Get(filepath.Join(dir, "variants", "tc2.xml"))
	require.NotNil(t, tc2)
	names := make([]string, 0, len(tc2.Variations))
	for _, v := range tc2.Variations {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"ixt:date-day-month v-01", "ixt:date-day-month v-02", "ixt:num-dot-decimal v-01"}, names)

	nested := s.Registry().Get(filepath.Join(dir, "more", "index.xml"))
	require.NotNil(t, nested)
	assert.Equal(t, TestcasesIndex, nested.Type)
	assert.True(t, index.ReferencesDocument(nested))

	tc3 := s.Registry().Get(filepath.Join(dir, "more", "tc3.xml"))
	require.NotNil(t, tc3)
	require.Len(t, tc3.Variations, 1)
	assert.True(t, tc3.Variations[0].Inline)
	assert.Equal(t, "inline only", tc3.Variations[0].Name)
}

func TestRegistryConformanceTests(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"registry.xml": `<registry xmlns="http://xbrl.org/2008/registry" xmlns:xlink="http://www.w3.org/1999/xlink">
  <entry><url xlink:type="simple" xlink:href="functions/fn-a.xml"/></entry>
  <entry><url xlink:type="simple" xlink:href="functions/fn-b.xml"/></entry>
</registry>`,
		"functions/fn-a.xml": `<function xmlns="http://xbrl.org/2008/function" xmlns:xlink="http://www.w3.org/1999/xlink">
  <conformanceTest xlink:type="simple" xlink:href="fn-a-test.xml"/>
</function>`,
		"functions/fn-b.xml": `<function xmlns="http://xbrl.org/2008/function"/>`,
		"functions/fn-a-test.xml": `<testcase xmlns="http://xbrl.org/2008/conformance"
    xmlns:cfcn="http://xbrl.org/2008/conformance/function">
  <variation id="v1"/>
</testcase>`,
	})
	s := newTestSession(t, Options{})

	reg, err := s.Load(context.Background(), filepath.Join(dir, "registry.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	assert.Equal(t, Registry, reg.Type)

	test := s.Registry().Get(filepath.Join(dir, "functions", "fn-a-test.xml"))
	require.NotNil(t, test)
	assert.Equal(t, RegistryTestcase, test.Type)
	assert.True(t, reg.ReferenceTo(test).HasKind(RefRegistryIndex))
	assert.Len(t, test.Variations, 1)
	assert.NotNil(t, s.Registry().Get(filepath.Join(dir, "functions", "fn-b.xml")))
	assert.Len(t, reg.References(), 1)
}

func TestVersioningReport(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"report.xml": `<ver:report xmlns:ver="http://xbrl.org/2013/versioning-base"
    xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <ver:fromDTS><link:schemaRef xlink:type="simple" xlink:href="from.xsd"/></ver:fromDTS>
  <ver:toDTS>
    <link:schemaRef xlink:type="simple" xlink:href="to1.xsd"/>
    <link:schemaRef xlink:type="simple" xlink:href="to2.xsd"/>
  </ver:toDTS>
</ver:report>`,
		"from.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:from">
  <xs:element name="old" type="xs:string"/>
</xs:schema>`,
		"to1.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:to1">
  <xs:element name="new" type="xs:string"/>
</xs:schema>`,
		"to2.xsd": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:to2"/>`,
	})
	s := newTestSession(t, Options{})

	report, err := s.Load(context.Background(), filepath.Join(dir, "report.xml"), LoadRequest{IsEntry: true})
	require.NoError(t, err)
	assert.Equal(t, VersioningReport, report.Type)
	assert.Equal(t, 1, s.Registry().Len())

	require.NotNil(t, report.FromDTS)
	from := report.FromDTS.EntryDocument
	require.NotNil(t, from)
	assert.Equal(t, Schema, from.Type)
	assert.NotNil(t, report.FromDTS.Concept(QName{Space: "urn:from", Local: "old"}))
	assert.NotEqual(t, s.ID, report.FromDTS.ID)

	require.NotNil(t, report.ToDTS)
	entries := report.ToDTS.EntryDocument
	require.NotNil(t, entries)
	assert.Equal(t, DTSEntries, entries.Type)
	refs := entries.References()
	require.Len(t, refs, 2)
	for _, ref := range refs {
		assert.True(t, ref.HasKind(RefImport))
		assert.True(t, ref.Document.InDTS)
	}
	assert.NotNil(t, report.ToDTS.Concept(QName{Space: "urn:to1", Local: "new"}))
	assert.Nil(t, s.Concept(QName{Space: "urn:to1", Local: "new"}))
}
