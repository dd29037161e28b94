package xbrl

import (
	"context"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// discoverInline handles one inline XBRL fragment. Everything that spans
// fragments is left to mergeInlineDocumentSet.
func (s *Session) discoverInline(ctx context.Context, doc *Document) {
	root := doc.Root
	if root == nil {
		return
	}
	doc.IxNS = s.inlineNamespace(doc, root)

	// The base comes only from an explicit <base> element so that relative
	// references never depend on where the file was served from.
	for _, el := range descendants(root) {
		if el.Tag == "base" && elementNamespace(el) == NsXhtml {
			if href := strings.TrimSpace(attr(el, "href")); href != "" {
				doc.XMLBase = href
			}
			break
		}
	}

	resources := inlineElements(root, "resources")
	if len(s.hooks.SelectIxdsTarget) > 0 {
		s.deferredIxRes = append(s.deferredIxRes, resources...)
	} else {
		for _, el := range resources {
			s.validate(el, "")
		}
	}
	if elementNamespace(root) == NsXhtml {
		s.validate(root, NsXhtml)
	}
	s.IxdsHTMLElements = append(s.IxdsHTMLElements, root)
}

// inlineNamespace returns the single inline XBRL namespace used by the
// fragment. Without inline elements the root's namespace declarations decide.
func (s *Session) inlineNamespace(doc *Document, root *etree.Element) string {
	found := make(map[string]bool)
	walk(root, func(el *etree.Element) bool {
		if ns := elementNamespace(el); IsInlineNamespace(ns) {
			found[ns] = true
		}
		return true
	})
	if len(found) == 0 {
		for _, ns := range namespaceDeclarations(root) {
			if IsInlineNamespace(ns) {
				found[ns] = true
			}
		}
	}
	if len(found) > 1 {
		namespaces := make([]string, 0, len(found))
		for ns := range found {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		s.errorf(KindMisdeclared, "ix:multipleIxNamespaces", root,
			"%s uses more than one inline XBRL namespace: %s", doc.BaseName(), strings.Join(namespaces, ", "))
	}
	// Prefer inline XBRL 1.1 when both appear.
	if found[NsIxbrl11] {
		return NsIxbrl11
	}
	if found[NsIxbrl] {
		return NsIxbrl
	}
	return ""
}

// inlineElements returns the inline XBRL elements named local below root in
// document order.
func inlineElements(root *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	walk(root, func(el *etree.Element) bool {
		if el.Tag == local && IsInlineNamespace(elementNamespace(el)) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// isInline reports whether el is the inline XBRL element local.
func isInline(el *etree.Element, local string) bool {
	return el != nil && el.Tag == local && IsInlineNamespace(elementNamespace(el))
}

// newInlineFact builds the fact of an ix:nonNumeric, ix:nonFraction,
// ix:fraction or ix:tuple element.
func (s *Session) newInlineFact(doc *Document, el *etree.Element) *Fact {
	nilValue, _ := attrValue(el, NsXsi, "nil")
	f := &Fact{
		Element:    el,
		Document:   doc,
		ID:         elementID(el),
		ContextRef: attr(el, "contextRef"),
		UnitRef:    attr(el, "unitRef"),
		Decimals:   attr(el, "decimals"),
		Precision:  attr(el, "precision"),
		IsNil:      isTrue(nilValue),
		Inline:     true,
		Target:     attr(el, "target"),
		Order:      attr(el, "order"),
		Scale:      attr(el, "scale"),
		Sign:       attr(el, "sign"),
		TupleID:    attr(el, "tupleID"),
		TupleRef:   attr(el, "tupleRef"),
		session:    s,
	}
	if qn, ok := ResolveQName(el, strings.TrimSpace(attr(el, "name"))); ok {
		f.QName = qn
		f.Concept = s.Concepts[qn]
	}
	s.factByElement[el] = f
	return f
}
