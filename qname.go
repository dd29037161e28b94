package xbrl

import "github.com/beevik/etree"

// QName is an expanded XML name. The zero value is the null QName.
type QName struct {
	Space string // namespace URI
	Local string
}

// IsZero reports whether q is the null QName.
func (q QName) IsZero() bool {
	return q.Space == "" && q.Local == ""
}

// String renders q in Clark notation: {ns}local.
func (q QName) String() string {
	if q.IsZero() {
		return ""
	}
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// ElementQName returns the expanded name of el.
func ElementQName(el *etree.Element) QName {
	if el == nil {
		return QName{}
	}
	return QName{Space: elementNamespace(el), Local: el.Tag}
}

// ResolveQName resolves a prefixed name such as "us-gaap:Cash" against the
// in-scope namespace declarations of el. Unprefixed names use the default
// namespace. ok is false when the prefix is not bound.
func ResolveQName(el *etree.Element, prefixed string) (QName, bool) {
	prefix, local := splitPrefix(prefixed)
	if local == "" {
		return QName{}, false
	}
	ns, ok := lookupNamespace(el, prefix)
	if !ok && prefix != "" {
		return QName{}, false
	}
	return QName{Space: ns, Local: local}, true
}

func splitPrefix(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

var (
	qnXsdSchema        = QName{NsXsd, "schema"}
	qnXsdImport        = QName{NsXsd, "import"}
	qnXsdInclude       = QName{NsXsd, "include"}
	qnXsdRedefine      = QName{NsXsd, "redefine"}
	qnXsdElement       = QName{NsXsd, "element"}
	qnXsdAnnotation    = QName{NsXsd, "annotation"}
	qnXsdAppinfo       = QName{NsXsd, "appinfo"}
	qnLinkLinkbase     = QName{NsLink, "linkbase"}
	qnLinkXbrl         = QName{NsLink, "xbrl"}
	qnLinkRoleType     = QName{NsLink, "roleType"}
	qnLinkArcroleType  = QName{NsLink, "arcroleType"}
	qnLinkLinkbaseRef  = QName{NsLink, "linkbaseRef"}
	qnLinkSchemaRef    = QName{NsLink, "schemaRef"}
	qnLinkRoleRef      = QName{NsLink, "roleRef"}
	qnLinkArcroleRef   = QName{NsLink, "arcroleRef"}
	qnLinkFootnoteLink = QName{NsLink, "footnoteLink"}
	qnLinkFootnoteArc  = QName{NsLink, "footnoteArc"}
	qnLinkFootnote     = QName{NsLink, "footnote"}
	qnLinkLoc          = QName{NsLink, "loc"}
	qnLinkDefinition   = QName{NsLink, "definition"}
	qnLinkUsedOn       = QName{NsLink, "usedOn"}
	qnXbrliXbrl        = QName{NsXbrli, "xbrl"}
	qnXbrliContext     = QName{NsXbrli, "context"}
	qnXbrliUnit        = QName{NsXbrli, "unit"}
	qnXbrliEntity      = QName{NsXbrli, "entity"}
	qnXbrliIdentifier  = QName{NsXbrli, "identifier"}
	qnXbrliSegment     = QName{NsXbrli, "segment"}
	qnXbrliScenario    = QName{NsXbrli, "scenario"}
	qnXbrliPeriod      = QName{NsXbrli, "period"}
	qnXbrliMeasure     = QName{NsXbrli, "measure"}
	qnXbrliDivide      = QName{NsXbrli, "divide"}
	qnXbrliItem        = QName{NsXbrli, "item"}
	qnXbrliTuple       = QName{NsXbrli, "tuple"}
	qnXbrldiExplicit   = QName{NsXbrldi, "explicitMember"}
	qnXbrldiTyped      = QName{NsXbrldi, "typedMember"}
	qnXlExtended       = QName{NsXl, "extended"}
	qnGenLink          = QName{NsGen, "link"}
	qnRegistryEntry    = QName{NsRegistry, "entry"}
	qnRegistryRoot     = QName{NsRegistry, "registry"}
	qnXQTSCatalog      = QName{NsXQTSCatalog, "test-suite"}
)
