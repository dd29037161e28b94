package xbrl

import (
	"context"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

func (s *Session) discoverInstance(ctx context.Context, doc *Document) {
	root := doc.Root
	if root == nil {
		return
	}
	if doc.TargetRoot == nil {
		doc.TargetRoot = root
	}
	for _, el := range descendants(root) {
		if hasQName(el, qnLinkSchemaRef) || hasQName(el, qnLinkLinkbaseRef) {
			if s.discoverHref(ctx, doc, el, false) == nil {
				s.errorf(KindMisdeclared, "xbrl:hrefMissing", el,
					"%s in %s href attribute missing or malformed", el.Tag, doc.BaseName())
			}
		}
	}
	s.discoverLinkbase(ctx, doc, root, true)
	s.loadSchemaLocatedSchemas(ctx, doc)
	s.validate(root, "")

	for _, el := range childElements(root) {
		ns := elementNamespace(el)
		switch {
		case ns == NsXbrli && el.Tag == "context":
			s.discoverContext(doc, el)
		case ns == NsXbrli && el.Tag == "unit":
			s.discoverUnit(doc, el)
		case ns == NsLink, IsInlineNamespace(ns):
		default:
			if f := s.discoverFact(doc, el, nil); f != nil {
				s.Facts = append(s.Facts, f)
				s.FactsInInstance = append(s.FactsInInstance, f)
			}
		}
	}
	s.reportUndefinedFacts(root)
}

// discoverFact builds the fact for el. Tuple members are discovered
// recursively; numerator and denominator elements stay part of their fraction.
func (s *Session) discoverFact(doc *Document, el *etree.Element, parent *Fact) *Fact {
	if f := s.factByElement[el]; f != nil {
		return f
	}
	s.noteSchemaLocation(doc, el)
	qn := ElementQName(el)
	nilValue, _ := attrValue(el, NsXsi, "nil")
	f := &Fact{
		Element:    el,
		Document:   doc,
		QName:      qn,
		Concept:    s.Concepts[qn],
		ID:         elementID(el),
		ContextRef: attr(el, "contextRef"),
		UnitRef:    attr(el, "unitRef"),
		Decimals:   attr(el, "decimals"),
		Precision:  attr(el, "precision"),
		IsNil:      isTrue(nilValue),
		Parent:     parent,
		session:    s,
	}
	s.factByElement[el] = f
	if f.Concept == nil {
		s.UndefinedFacts = append(s.UndefinedFacts, f)
		return f
	}
	if f.IsTuple() {
		for _, c := range childElements(el) {
			if elementNamespace(c) == NsXbrli && (c.Tag == "numerator" || c.Tag == "denominator") {
				continue
			}
			f.Children = append(f.Children, s.discoverFact(doc, c, f))
		}
	}
	return f
}

// reportUndefinedFacts reports, once, the distinct names of the facts found
// since the last report that have no schema definition.
func (s *Session) reportUndefinedFacts(el *etree.Element) {
	if len(s.UndefinedFacts) <= s.undefinedNoted {
		return
	}
	pending := s.UndefinedFacts[s.undefinedNoted:]
	s.undefinedNoted = len(s.UndefinedFacts)

	names := make(map[string]bool)
	for _, f := range pending {
		names[f.Name()] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	s.errorf(KindMisdeclared, "xbrl:schemaImportMissing", el,
		"instance facts missing schema definition: %s", strings.Join(sorted, ", "))
}

func (s *Session) discoverContext(doc *Document, el *etree.Element) *Context {
	c := s.newContext(doc, el)
	if _, exists := s.Contexts[c.ID]; !exists {
		s.Contexts[c.ID] = c
	}
	return c
}

func (s *Session) newContext(doc *Document, el *etree.Element) *Context {
	c := &Context{
		ID:        elementID(el),
		Element:   el,
		Document:  doc,
		SegDims:   make(map[QName]*DimensionValue),
		ScenDims:  make(map[QName]*DimensionValue),
		QNameDims: make(map[QName]*DimensionValue),
	}
	for _, child := range childElements(el) {
		switch {
		case hasQName(child, qnXbrliEntity):
			for _, ec := range childElements(child) {
				switch {
				case hasQName(ec, qnXbrliIdentifier):
					c.EntityScheme = attr(ec, "scheme")
					c.EntityIdentifier = strings.TrimSpace(textContent(ec))
				case hasQName(ec, qnXbrliSegment):
					c.Segment = ec
					c.SegNonDim = s.contextMembers(c, ec, false)
				}
			}
		case hasQName(child, qnXbrliPeriod):
			c.Period = parsePeriod(child)
		case hasQName(child, qnXbrliScenario):
			c.Scenario = child
			c.ScenNonDim = s.contextMembers(c, child, true)
		}
	}
	return c
}

// contextMembers records the dimension members of a segment or scenario and
// returns its other children. The first member of a dimension wins; repeats
// go to ErrorDimValues.
func (s *Session) contextMembers(c *Context, container *etree.Element, inScenario bool) []*etree.Element {
	dims := c.SegDims
	if inScenario {
		dims = c.ScenDims
	}
	var nonDim []*etree.Element
	for _, m := range childElements(container) {
		explicit := hasQName(m, qnXbrldiExplicit)
		if !explicit && !hasQName(m, qnXbrldiTyped) {
			nonDim = append(nonDim, m)
			continue
		}
		dv := &DimensionValue{IsExplicit: explicit, InScenario: inScenario, Element: m}
		dim, ok := ResolveQName(m, strings.TrimSpace(attr(m, "dimension")))
		if !ok {
			c.ErrorDimValues = append(c.ErrorDimValues, dv)
			continue
		}
		dv.Dimension = dim
		if explicit {
			dv.Member, _ = ResolveQName(m, strings.TrimSpace(textContent(m)))
		} else if members := childElements(m); len(members) > 0 {
			dv.TypedMember = members[0]
		}
		if _, dup := c.QNameDims[dim]; dup {
			c.ErrorDimValues = append(c.ErrorDimValues, dv)
			continue
		}
		dims[dim] = dv
		c.QNameDims[dim] = dv
	}
	return nonDim
}

func parsePeriod(el *etree.Element) Period {
	var p Period
	for _, c := range childElements(el) {
		if elementNamespace(c) != NsXbrli {
			continue
		}
		v := strings.TrimSpace(textContent(c))
		switch c.Tag {
		case "instant":
			p.Instant = v
		case "startDate":
			p.StartDate = v
		case "endDate":
			p.EndDate = v
		case "forever":
			p.Forever = true
		}
	}
	return p
}

func (s *Session) discoverUnit(doc *Document, el *etree.Element) *Unit {
	u := newUnit(doc, el)
	if _, exists := s.Units[u.ID]; !exists {
		s.Units[u.ID] = u
	}
	return u
}

func newUnit(doc *Document, el *etree.Element) *Unit {
	u := &Unit{ID: elementID(el), Element: el, Document: doc}
	for _, child := range childElements(el) {
		switch {
		case hasQName(child, qnXbrliMeasure):
			u.Measures = append(u.Measures, measureQName(child))
		case hasQName(child, qnXbrliDivide):
			for _, part := range childElements(child) {
				for _, m := range childElements(part) {
					if !hasQName(m, qnXbrliMeasure) {
						continue
					}
					switch part.Tag {
					case "unitNumerator":
						u.Numerators = append(u.Numerators, measureQName(m))
					case "unitDenominator":
						u.Denominators = append(u.Denominators, measureQName(m))
					}
				}
			}
		}
	}
	return u
}

func measureQName(el *etree.Element) QName {
	text := strings.TrimSpace(textContent(el))
	if qn, ok := ResolveQName(el, text); ok {
		return qn
	}
	return QName{Local: text}
}
