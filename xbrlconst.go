package xbrl

import "strings"

// Namespaces used during discovery.
const (
	NsXsd      = "http://www.w3.org/2001/XMLSchema"
	NsXsi      = "http://www.w3.org/2001/XMLSchema-instance"
	NsXML      = "http://www.w3.org/XML/1998/namespace"
	NsXbrli    = "http://www.xbrl.org/2003/instance"
	NsLink     = "http://www.xbrl.org/2003/linkbase"
	NsXlink    = "http://www.w3.org/1999/xlink"
	NsXl       = "http://www.xbrl.org/2003/XLink"
	NsXhtml    = "http://www.w3.org/1999/xhtml"
	NsIxbrl    = "http://www.xbrl.org/2008/inlineXBRL"
	NsIxbrl11  = "http://www.xbrl.org/2013/inlineXBRL"
	NsXbrldt   = "http://xbrl.org/2005/xbrldt"
	NsXbrldi   = "http://xbrl.org/2006/xbrldi"
	NsGen      = "http://xbrl.org/2008/generic"
	NsVer      = "http://xbrl.org/2013/versioning-base"
	NsVer10    = "http://xbrl.org/2010/versioning-base"
	NsRegistry = "http://xbrl.org/2008/registry"
	NsFunction = "http://xbrl.org/2008/function"
	NsCfcn     = "http://xbrl.org/2008/conformance/function"
	NsUtr      = "http://www.xbrl.org/2009/utr"
	NsEdgar    = "http://www.sec.gov/Archives/edgar"

	NsTransformTestcase = "http://xbrl.org/2011/conformance-rendering/transforms"
	NsXQTSCatalog       = "http://www.w3.org/2005/02/query-test-XQTSCatalog"
)

// Standard roles and arcroles.
const (
	DefaultLinkRole     = "http://www.xbrl.org/2003/role/link"
	FootnoteRole        = "http://www.xbrl.org/2003/role/footnote"
	FactFootnoteArcrole = "http://www.xbrl.org/2003/arcrole/fact-footnote"
	ParentChildArcrole  = "http://www.xbrl.org/2003/arcrole/parent-child"
	ConceptLabelArcrole = "http://www.xbrl.org/2003/arcrole/concept-label"

	dimensionArcrolePrefix = "http://xbrl.org/int/dim/arcrole/"
)

// Umbrella base set arcroles.
const (
	ArcroleDimensions = "XBRL-dimensions"
	ArcroleFormulae   = "XBRL-formulae"
	ArcroleTable      = "Table-rendering"
	ArcroleFootnotes  = "XBRL-footnotes"
)

// Reference kinds recorded on document edges.
const (
	RefImport         = "import"
	RefInclude        = "include"
	RefRedefine       = "redefine"
	RefHref           = "href"
	RefTestcaseIndex  = "testcaseIndex"
	RefTestcase       = "testcase"
	RefRegistryIndex  = "registryIndex"
	RefInlineDocument = "inlineDocument"
	RefSchemaLocation = "schemaLocation"
	RefVersioning     = "versioning"
)

var formulaArcroles = stringSet(
	"http://xbrl.org/arcrole/2008/assertion-set",
	"http://xbrl.org/arcrole/2008/variable-set",
	"http://xbrl.org/arcrole/2008/variable-filter",
	"http://xbrl.org/arcrole/2008/variable-set-filter",
	"http://xbrl.org/arcrole/2008/variable-set-precondition",
	"http://xbrl.org/arcrole/2008/consistency-assertion-formula",
	"http://xbrl.org/arcrole/2008/consistency-assertion-parameter",
	"http://xbrl.org/arcrole/2008/equality-definition",
	"http://xbrl.org/arcrole/2009/instance-variable",
	"http://xbrl.org/arcrole/2010/instance-variable",
	"http://xbrl.org/arcrole/2010/formula-instance",
	"http://xbrl.org/arcrole/2010/assertion-unsatisfied-message",
	"http://xbrl.org/arcrole/2010/assertion-satisfied-message",
	"http://xbrl.org/arcrole/2010/function-implementation",
	"http://xbrl.org/arcrole/2010/variable-set-filter",
)

var tableRenderingArcroles = stringSet(
	"http://xbrl.org/arcrole/2014/table-breakdown",
	"http://xbrl.org/arcrole/2014/breakdown-tree",
	"http://xbrl.org/arcrole/2014/definition-node-subtree",
	"http://xbrl.org/arcrole/2014/table-filter",
	"http://xbrl.org/arcrole/2014/table-parameter",
	"http://xbrl.org/arcrole/2014/aspect-node-filter",
	"http://xbrl.org/arcrole/PWD/2013-05-17/table-breakdown",
	"http://xbrl.org/arcrole/PWD/2013-05-17/breakdown-tree",
	"http://xbrl.org/arcrole/PWD/2013-05-17/definition-node-subtree",
	"http://xbrl.org/arcrole/PWD/2013-05-17/table-filter",
	"http://xbrl.org/arcrole/2011/table-breakdown",
	"http://xbrl.org/arcrole/2011/breakdown-tree",
)

// IsDimensionArcrole reports whether arcrole belongs to XBRL Dimensions.
func IsDimensionArcrole(arcrole string) bool {
	return strings.HasPrefix(arcrole, dimensionArcrolePrefix)
}

// IsFormulaArcrole reports whether arcrole belongs to the formula specifications.
func IsFormulaArcrole(arcrole string) bool {
	return formulaArcroles[arcrole]
}

// IsTableRenderingArcrole reports whether arcrole belongs to table linkbases.
func IsTableRenderingArcrole(arcrole string) bool {
	return tableRenderingArcroles[arcrole]
}

// IsInlineNamespace reports whether ns is an Inline XBRL namespace.
func IsInlineNamespace(ns string) bool {
	return ns == NsIxbrl || ns == NsIxbrl11
}

// standardSchemaLocations maps standard namespaces to their canonical schema
// location, used for the single retry when a referenced copy cannot be fetched.
var standardSchemaLocations = map[string]string{
	NsXbrli:  "http://www.xbrl.org/2003/xbrl-instance-2003-12-31.xsd",
	NsLink:   "http://www.xbrl.org/2003/xbrl-linkbase-2003-12-31.xsd",
	NsXlink:  "http://www.xbrl.org/2003/xlink-2003-12-31.xsd",
	NsXl:     "http://www.xbrl.org/2003/xl-2003-12-31.xsd",
	NsXbrldt: "http://www.xbrl.org/2005/xbrldt-2005.xsd",
	NsXbrldi: "http://www.xbrl.org/2006/xbrldi-2006.xsd",
}

// standardNamespaces are namespaces whose extended links are always recognized.
var standardNamespaces = stringSet(NsXbrli, NsLink, NsXlink, NsXl, NsXbrldt, NsXbrldi, NsGen)

// IsStandardNamespace reports whether ns is defined by the XBRL base specifications.
func IsStandardNamespace(ns string) bool {
	return standardNamespaces[ns]
}

// StandardSchemaLocation returns the canonical location for a standard namespace.
func StandardSchemaLocation(ns string) (string, bool) {
	loc, ok := standardSchemaLocations[ns]
	return loc, ok
}

func isStandardSchemaLocation(uri string) (string, bool) {
	for ns, loc := range standardSchemaLocations {
		if uri == loc {
			return ns, true
		}
		if strings.HasSuffix(uri, "/"+baseName(loc)) {
			return ns, true
		}
	}
	return "", false
}

// baseName returns the last path segment of a URI.
func baseName(uri string) string {
	if i := strings.LastIndexAny(uri, "/\\"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func stringSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
