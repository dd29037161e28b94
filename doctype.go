package xbrl

// Type classifies a loaded document. Types below FirstXBRLType are unknown
// documents that do not participate in the DTS.
type Type int

const (
	UnknownXML Type = iota
	UnknownNonXML
	Schema
	Linkbase
	Instance
	InlineXBRL
	DTSEntries
	InlineXBRLDocumentSet
	VersioningReport
	TestcasesIndex
	Testcase
	Registry
	RegistryTestcase
	XPathTestSuite
	RSSFeed
	ArcsInfoset
	FactDimsInfoset
	HTML
)

const (
	FirstXBRLType = Schema
	LastXBRLType  = InlineXBRLDocumentSet
)

var typeNames = [...]string{
	UnknownXML:            "unknown XML",
	UnknownNonXML:         "unknown non-XML",
	Schema:                "schema",
	Linkbase:              "linkbase",
	Instance:              "instance",
	InlineXBRL:            "inline XBRL instance",
	DTSEntries:            "entry point set",
	InlineXBRLDocumentSet: "inline XBRL document set",
	VersioningReport:      "versioning report",
	TestcasesIndex:        "testcases index",
	Testcase:              "testcase",
	Registry:              "registry",
	RegistryTestcase:      "registry testcase",
	XPathTestSuite:        "xpath test suite",
	RSSFeed:               "RSS feed",
	ArcsInfoset:           "arcs infoset",
	FactDimsInfoset:       "fact dimensions infoset",
	HTML:                  "html non-XBRL",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// IsXBRL reports whether documents of type t carry XBRL content and may host
// linkbase content.
func (t Type) IsXBRL() bool {
	return t >= FirstXBRLType && t <= LastXBRLType
}

// IsUnknown reports whether t is one of the non-participating types.
func (t Type) IsUnknown() bool {
	return t < FirstXBRLType
}

// IsInstanceBearing reports whether documents of type t own facts.
func (t Type) IsInstanceBearing() bool {
	return t == Instance || t == InlineXBRL || t == InlineXBRLDocumentSet
}

// MarshalText implements encoding.TextMarshaler so JSON output prints names.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
