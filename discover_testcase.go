package xbrl

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Variation is one test of a testcase document.
type Variation struct {
	Element     *etree.Element
	ID          string
	Name        string
	Description string
	// Inline is set when the testcase element itself is the only variation.
	Inline bool
}

var (
	qnRegistryURL         = QName{NsRegistry, "url"}
	qnFunctionConformance = QName{NsFunction, "conformanceTest"}
)

func isTestcaseContainer(el *etree.Element) bool {
	switch el.Tag {
	case "testcases", "registries", "testSuite", "documentation":
		return true
	}
	return false
}

// testcaseRefURI returns the location an index entry points at.
func testcaseRefURI(el *etree.Element) string {
	if uri := strings.TrimSpace(attr(el, "uri")); uri != "" {
		return uri
	}
	if href := strings.TrimSpace(xlinkAttr(el, "href")); href != "" {
		return href
	}
	return strings.TrimSpace(attr(el, "href"))
}

// discoverTestcasesIndex loads every testcase, registry and nested index an
// index document lists. A container's root attribute moves the base of its
// entries to that directory next to the index.
func (s *Session) discoverTestcasesIndex(ctx context.Context, doc *Document) {
	root := doc.Root
	if root == nil {
		return
	}
	if s.opts.ValidateTestcaseSchema {
		s.validate(root, "")
	}
	walk(root, func(el *etree.Element) bool {
		if !isTestcaseContainer(el) {
			return true
		}
		if el != root {
			if uri := testcaseRefURI(el); uri != "" {
				s.loadIndexEntry(ctx, doc, el, uri, doc.baseForElement(el))
				return false
			}
		}
		base := doc.baseForElement(el)
		if rootAttr := strings.Trim(strings.TrimSpace(attr(el, "root")), "/\\"); rootAttr != "" {
			base = parentDir(doc.URI) + "/" + rootAttr + "/"
		}
		for _, c := range childElements(el) {
			switch c.Tag {
			case "testcase", "registry", "testSetRef":
				if uri := testcaseRefURI(c); uri != "" {
					s.loadIndexEntry(ctx, doc, c, uri, base)
				}
			}
		}
		return true
	})
}

func (s *Session) loadIndexEntry(ctx context.Context, doc *Document, el *etree.Element, uri, base string) {
	loaded := s.load(ctx, uri, LoadRequest{Base: base, ReferringElement: el})
	if loaded != nil {
		doc.addReference(loaded, RefTestcaseIndex, el)
	}
}

// discoverTestcase collects the variations of a testcase. Transform
// conformance testcases name their variations after the enclosing
// transform, numbered from 1 within each transform.
func (s *Session) discoverTestcase(doc *Document) {
	root := doc.Root
	if root == nil {
		return
	}
	if s.opts.ValidateTestcaseSchema {
		s.validate(root, "")
	}
	for _, ns := range inScopeNamespaces(root) {
		if ns == NsCfcn {
			doc.Type = RegistryTestcase
			break
		}
	}

	rootNS := elementNamespace(root)
	isTransform := rootNS == NsTransformTestcase
	var (
		priorTransform string
		number         int
	)
	doc.Variations = nil
	for _, el := range descendants(root) {
		if (el.Tag != "variation" && el.Tag != "testGroup") || elementNamespace(el) != rootNS {
			continue
		}
		v := &Variation{
			Element:     el,
			ID:          elementID(el),
			Name:        attr(el, "name"),
			Description: variationDescription(el),
		}
		if v.Name == "" {
			v.Name = v.ID
		}
		if parent := el.Parent(); isTransform && parent != nil {
			if transform := attr(parent, "name"); transform != "" {
				if transform != priorTransform {
					priorTransform = transform
					number = 1
				}
				v.Name = fmt.Sprintf("%s v-%02d", transform, number)
				number++
			}
		}
		doc.Variations = append(doc.Variations, v)
	}

	if len(doc.Variations) == 0 && declaresInline(root) {
		doc.Variations = append(doc.Variations, &Variation{
			Element: root,
			ID:      elementID(root),
			Name:    attr(root, "name"),
			Inline:  true,
		})
	}
}

func variationDescription(el *etree.Element) string {
	for _, c := range childElements(el) {
		if c.Tag == "description" {
			return NormalizeSpace(textContent(c))
		}
	}
	return ""
}

// declaresInline reports whether any attribute of el, namespace
// declarations included, names an inline XBRL namespace.
func declaresInline(el *etree.Element) bool {
	for _, a := range el.Attr {
		if IsInlineNamespace(a.Value) {
			return true
		}
	}
	return false
}

// discoverRegistry loads the function definition of every registry entry
// and, when the definition names one, its conformance testcase.
func (s *Session) discoverRegistry(ctx context.Context, doc *Document) {
	root := doc.Root
	if root == nil {
		return
	}
	s.validate(root, "")
	for _, entry := range descendants(root) {
		if !hasQName(entry, qnRegistryEntry) {
			continue
		}
		href := ""
		for _, c := range childElements(entry) {
			if hasQName(c, qnRegistryURL) {
				href = strings.TrimSpace(xlinkAttr(c, "href"))
				break
			}
		}
		if href == "" {
			continue
		}
		function := s.load(ctx, href, LoadRequest{Base: doc.baseForElement(entry), ReferringElement: entry})
		if function == nil || function.Root == nil {
			continue
		}
		for _, c := range childElements(function.Root) {
			if !hasQName(c, qnFunctionConformance) {
				continue
			}
			testHref := strings.TrimSpace(xlinkAttr(c, "href"))
			if testHref == "" {
				break
			}
			if testcase := s.load(ctx, testHref, LoadRequest{Base: function.URI, ReferringElement: c}); testcase != nil {
				doc.addReference(testcase, RefRegistryIndex, entry)
			}
			break
		}
	}
}
