package xbrl

import "github.com/beevik/etree"

// ClassifyContext tells the classifier how the document was reached. Bare
// linkbase and instance roots are only recognized when the document is part
// of the DTS proper rather than a schemaLocation hint.
type ClassifyContext struct {
	IsEntry        bool
	IsDiscovered   bool
	IsSupplemental bool
}

func (c ClassifyContext) inDTS() bool {
	return c.IsEntry || c.IsDiscovered || c.IsSupplemental
}

// Classify assigns a document type to a parsed root element. It returns the
// element discovery should start from, which differs from root when inline
// XBRL is nested inside a wrapper element. identifiers are consulted in order
// for roots the built-in rules do not recognize.
func Classify(root *etree.Element, ctx ClassifyContext, identifiers ...func(*etree.Element) (Type, bool)) (Type, *etree.Element) {
	if root == nil {
		return UnknownXML, nil
	}
	ns := elementNamespace(root)
	ln := root.Tag

	switch {
	case ns == NsXsd && ln == "schema":
		return Schema, root
	case ns == NsLink && ln == "linkbase" && ctx.inDTS():
		return Linkbase, root
	case ns == NsLink && ln == "xbrl" && ctx.inDTS():
		return Instance, root
	case ns == NsXbrli && ln == "xbrl" && ctx.inDTS():
		return Instance, root
	case ns == NsXhtml && (ln == "html" || ln == "xhtml"):
		if containsInline(root) {
			return InlineXBRL, root
		}
		return UnknownXML, root
	case (ns == NsVer || ns == NsVer10) && ln == "report":
		return VersioningReport, root
	case ln == "testcases" || ln == "documentation" || ln == "testSuite" || ln == "registries":
		return TestcasesIndex, root
	case ln == "testcase" || ln == "testSet":
		return Testcase, root
	case ns == NsRegistry && ln == "registry":
		return Registry, root
	case ns == NsXQTSCatalog && ln == "test-suite":
		return XPathTestSuite, root
	case ln == "rss":
		return RSSFeed, root
	case ln == "ptvl":
		return ArcsInfoset, root
	case ln == "facts":
		return FactDimsInfoset, root
	}

	for _, fn := range identifiers {
		if t, ok := fn(root); ok {
			return t, root
		}
	}

	if containsInline(root) {
		if inner := nestedHTML(root); inner != nil {
			return InlineXBRL, inner
		}
		return InlineXBRL, root
	}
	return UnknownXML, root
}

// containsInline reports whether any element at or below el is in an inline
// XBRL namespace.
func containsInline(el *etree.Element) bool {
	found := false
	walk(el, func(e *etree.Element) bool {
		if found {
			return false
		}
		if IsInlineNamespace(elementNamespace(e)) {
			found = true
			return false
		}
		return true
	})
	return found
}

// nestedHTML returns the first xhtml html element below el, falling back to
// an xhtml element.
func nestedHTML(el *etree.Element) *etree.Element {
	var html, xhtml *etree.Element
	for _, e := range descendants(el) {
		if elementNamespace(e) != NsXhtml {
			continue
		}
		if e.Tag == "html" && html == nil {
			html = e
		}
		if e.Tag == "xhtml" && xhtml == nil {
			xhtml = e
		}
	}
	if html != nil {
		return html
	}
	return xhtml
}
