package xbrl

import (
	"context"
	"strings"

	"github.com/beevik/etree"
)

// discoverLinkbase walks the children of a linkbase element, or of an
// instance root when inInstance is set, resolving role and arcrole refs and
// indexing every extended link.
func (s *Session) discoverLinkbase(ctx context.Context, doc *Document, lbEl *etree.Element, inInstance bool) {
	if lbEl == nil {
		return
	}
	s.noteSchemaLocation(doc, lbEl)
	for _, el := range childElements(lbEl) {
		if elementNamespace(el) == NsLink && (el.Tag == "roleRef" || el.Tag == "arcroleRef") {
			if s.discoverHref(ctx, doc, el, false) == nil {
				s.errorf(KindMisdeclared, "xbrl:hrefMissing", el,
					"linkbase in %s %s href attribute missing or malformed", doc.BaseName(), el.Tag)
			}
			continue
		}
		if xlinkAttr(el, "type") == "extended" {
			s.discoverExtendedLink(ctx, doc, el, inInstance)
		}
	}
}

// discoverExtendedLink indexes one extended link. Discovering the same
// element twice returns the first result.
func (s *Session) discoverExtendedLink(ctx context.Context, doc *Document, el *etree.Element, inInstance bool) *Link {
	if l := s.links[el]; l != nil {
		return l
	}
	l := &Link{
		Element:          el,
		Doc:              doc,
		Role:             xlinkAttr(el, "role"),
		LabeledResources: make(map[string][]*etree.Element),
		Sequence:         make(map[*etree.Element]int),
	}
	if l.Role == "" {
		l.Role = DefaultLinkRole
	}
	s.links[el] = l
	doc.Links = append(doc.Links, l)
	s.noteSchemaLocation(doc, el)

	linkQn := ElementQName(el)
	l.Recognized = s.recognizedLink(doc, el, linkQn)
	if !l.Recognized {
		return l
	}
	if inInstance {
		s.BaseSets.addUmbrella(ArcroleFootnotes, l.Role, l)
	}
	standard := IsStandardNamespace(linkQn.Space)

	seenArcroles := make(map[string]bool)
	var dimensional, formula, table bool
	for i, child := range childElements(el) {
		l.Sequence[child] = i + 1
		s.noteSchemaLocation(doc, child)
		label := xlinkAttr(child, "label")
		switch xlinkAttr(child, "type") {
		case "locator":
			nonDTS := !hasQName(child, qnLinkLoc)
			if s.discoverHref(ctx, doc, child, nonDTS) == nil {
				if standard {
					s.errorf(KindMisdeclared, "xbrl:hrefMissing", child,
						"locator %s in %s href attribute missing or malformed", label, doc.BaseName())
				} else {
					s.warnf(KindMisdeclared, "xbrl:hrefMissing", child,
						"locator %s in %s href attribute missing or malformed", label, doc.BaseName())
				}
				continue
			}
			l.Locators = append(l.Locators, child)
			l.LabeledResources[label] = append(l.LabeledResources[label], child)
		case "arc":
			l.Arcs = append(l.Arcs, child)
			arcrole := xlinkAttr(child, "arcrole")
			if arcrole == "" || seenArcroles[arcrole] {
				continue
			}
			seenArcroles[arcrole] = true
			s.BaseSets.addArcrole(arcrole, l.Role, linkQn, ElementQName(child), l)
			switch {
			case !dimensional && IsDimensionArcrole(arcrole):
				dimensional = true
				s.BaseSets.addUmbrella(ArcroleDimensions, l.Role, l)
			case !formula && IsFormulaArcrole(arcrole):
				formula = true
				s.BaseSets.addUmbrella(ArcroleFormulae, l.Role, l)
			case !table && IsTableRenderingArcrole(arcrole):
				table = true
				s.BaseSets.addUmbrella(ArcroleTable, l.Role, l)
			}
		case "resource":
			l.LabeledResources[label] = append(l.LabeledResources[label], child)
		}
	}
	return l
}

// recognizedLink reports whether the children of an extended link should be
// indexed. Links in the linkbase namespace and generic links always are. A
// custom link is skipped when its schema is loaded but does not declare it as
// an extended link; when its schema is missing altogether discovery goes on.
func (s *Session) recognizedLink(doc *Document, el *etree.Element, qn QName) bool {
	if qn.Space == NsLink || qn == qnGenLink {
		return true
	}
	if c := s.Concepts[qn]; c != nil {
		if c.IsExtendedLink() {
			return true
		}
		s.errorf(KindMisdeclared, "xbrl:schemaDefinitionMissing", el,
			"%s in %s is not declared as an extended link", prefixedName(el), doc.BaseName())
		return false
	}
	for _, d := range s.NamespaceDocs[qn.Space] {
		if d.InDTS {
			s.errorf(KindMisdeclared, "xbrl:schemaDefinitionMissing", el,
				"%s in %s has no schema definition", prefixedName(el), doc.BaseName())
			return false
		}
	}
	s.errorf(KindMisdeclared, "xbrl:schemaDefinitionMissing", el,
		"%s in %s has no schema definition, namespace %s is not loaded", prefixedName(el), doc.BaseName(), qn.Space)
	return true
}

// noteSchemaLocation records the element carrying the xsi:schemaLocation
// hint for the namespace of el, when that namespace has no schema loaded yet.
func (s *Session) noteSchemaLocation(doc *Document, el *etree.Element) {
	ns := elementNamespace(el)
	if ns == "" || doc.ReferencedNamespaces[ns] {
		return
	}
	if _, loaded := s.NamespaceDocs[ns]; loaded {
		return
	}
	for e := el; e != nil; e = e.Parent() {
		hint, ok := attrValue(e, NsXsi, "schemaLocation")
		if !ok {
			continue
		}
		for _, p := range schemaLocationPairs(hint) {
			if p.namespace == ns {
				doc.addSchemaLocationElement(e)
				doc.ReferencedNamespaces[ns] = true
				return
			}
		}
	}
}

type schemaLocationPair struct {
	namespace string
	location  string
}

// schemaLocationPairs splits an xsi:schemaLocation value into its
// namespace/location pairs. A trailing unpaired token is ignored.
func schemaLocationPairs(hint string) []schemaLocationPair {
	fields := strings.Fields(hint)
	pairs := make([]schemaLocationPair, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		pairs = append(pairs, schemaLocationPair{namespace: fields[i], location: fields[i+1]})
	}
	return pairs
}

// loadSchemaLocatedSchemas loads the schemas hinted by xsi:schemaLocation for
// namespaces that nothing in the DTS has provided. They are not part of the
// DTS.
func (s *Session) loadSchemaLocatedSchemas(ctx context.Context, doc *Document) {
	for _, el := range doc.SchemaLocationElements {
		hint, ok := attrValue(el, NsXsi, "schemaLocation")
		if !ok {
			continue
		}
		for _, p := range schemaLocationPairs(hint) {
			if _, loaded := s.NamespaceDocs[p.namespace]; loaded {
				continue
			}
			target := s.load(ctx, p.location, LoadRequest{
				Base:             doc.baseForElement(el),
				ReferringElement: el,
				Namespace:        p.namespace,
			})
			doc.addReference(target, RefSchemaLocation, el)
		}
	}
}
