package xbrl

import (
	"context"
	"strings"

	"github.com/beevik/etree"
)

// Concept is a global element declaration of a schema in the DTS.
type Concept struct {
	QName             QName
	Element           *etree.Element
	Document          *Document
	SubstitutionGroup QName
	TypeName          QName
	Abstract          bool
	Nillable          bool
	PeriodType        string
	Balance           string
	ID                string
}

// IsItem reports whether the concept substitutes for xbrli:item.
func (c *Concept) IsItem() bool { return c.substitutesFor(qnXbrliItem) }

// IsTuple reports whether the concept substitutes for xbrli:tuple.
func (c *Concept) IsTuple() bool { return c.substitutesFor(qnXbrliTuple) }

// IsExtendedLink reports whether the concept substitutes for xl:extended.
func (c *Concept) IsExtendedLink() bool { return c.substitutesFor(qnXlExtended) }

// substitutesFor follows the substitution group chain looking for head.
func (c *Concept) substitutesFor(head QName) bool {
	seen := make(map[QName]bool)
	for cur := c; cur != nil; {
		if cur.QName == head || cur.SubstitutionGroup == head {
			return true
		}
		sg := cur.SubstitutionGroup
		if sg.IsZero() || seen[sg] || cur.Document == nil || cur.Document.session == nil {
			return false
		}
		seen[sg] = true
		cur = cur.Document.session.Concepts[sg]
	}
	return false
}

// RoleType is a link:roleType or link:arcroleType definition.
type RoleType struct {
	URI           string
	Definition    string
	UsedOn        []QName
	CyclesAllowed string // arcrole types only
	IsArcrole     bool
	Element       *etree.Element
	Document      *Document
}

// schemaBottom names the top-level schema components that end the
// import/include prologue.
var schemaBottom = stringSet("element", "attribute", "notation", "simpleType", "complexType", "group", "attributeGroup")

func (s *Session) discoverSchema(ctx context.Context, doc *Document, isIncluded bool, namespace string) {
	root := doc.Root
	doc.ElementFormQualified = attr(root, "elementFormDefault") == "qualified"
	doc.AttributeFormQualified = attr(root, "attributeFormDefault") == "qualified"

	if tns, ok := attrValue(root, "", "targetNamespace"); ok {
		doc.TargetNamespace = tns
		doc.ReferencedNamespaces[tns] = true
		s.addNamespaceDoc(tns, doc)
		if namespace != "" && tns != namespace {
			s.errorf(KindMisdeclared, "xmlSchema:refSchemaNamespace", root,
				"discovery of %s expected namespace %s, found targetNamespace %s", doc.BaseName(), namespace, tns)
		}
		if ds := s.opts.DisclosureSystem; s.opts.ValidateDisclosureSystem && ds != nil && ds.DisallowedHrefOfNamespace(doc.URI, tns) {
			s.errorf(KindPolicyBlocked, "disclosureSystem:disallowedSchemaLocation", root,
				"namespace %s disallowed schemaLocation %s", tns, doc.URI)
		}
	} else {
		doc.NoTargetNamespace = true
		if isIncluded && namespace != "" {
			// A schema without a namespace takes on the namespace of the
			// schema including it.
			doc.TargetNamespace = namespace
			s.addNamespaceDoc(namespace, doc)
		}
	}
	switch doc.TargetNamespace {
	case NsXbrldt:
		s.HasXDT = true
	case NsUtr:
		doc.DefinesUTR = true
	}

	for _, el := range childElements(root) {
		if elementNamespace(el) != NsXsd {
			continue
		}
		if el.Tag == "import" || el.Tag == "include" || el.Tag == "redefine" {
			s.discoverImport(ctx, doc, el)
		}
		if schemaBottom[el.Tag] {
			break
		}
	}

	if doc.InDTS {
		s.discoverSchemaChildren(ctx, doc)
	}
	if !isIncluded {
		s.pendingSchemas = append(s.pendingSchemas, doc)
	}
}

func (s *Session) discoverImport(ctx context.Context, doc *Document, el *etree.Element) {
	isImport := el.Tag == "import"
	namespace := doc.TargetNamespace
	if isImport {
		namespace = attr(el, "namespace")
	}
	schemaLocation := strings.TrimSpace(attr(el, "schemaLocation"))
	if schemaLocation == "" {
		return
	}
	loc := s.resolver.NormalizeURL(schemaLocation, doc.baseForElement(el))
	if loc == "" {
		return
	}
	if ds := s.opts.DisclosureSystem; s.opts.ValidateDisclosureSystem && ds != nil &&
		ds.BlocksDisallowedReferences() && ds.DisallowedHrefOfNamespace(loc, namespace) {
		s.errorf(KindPolicyBlocked, "disclosureSystem:disallowedSchemaLocation", el,
			"namespace %s disallowed schemaLocation, blocked: %s", namespace, loc)
		return
	}

	target := s.registry.Get(loc)
	if target == nil && isImport {
		if dup := s.duplicateSchema(namespace, loc); dup != nil {
			s.infof("xbrl:duplicateSchema", el,
				"schema %s has the namespace and file name of %s, which is used instead", loc, dup.URI)
			s.registry.Alias(loc, dup)
			target = dup
		}
	}
	if target != nil {
		if doc.InDTS && !target.InDTS && target.Type == Schema {
			target.InDTS = true
			s.discoverSchemaChildren(ctx, target)
		}
	} else {
		target = s.load(ctx, loc, LoadRequest{
			ReferringElement: el,
			IsDiscovered:     doc.InDTS,
			IsIncluded:       !isImport,
			Namespace:        namespace,
		})
	}
	if target == nil || target == doc {
		return
	}
	doc.addReference(target, el.Tag, el)
	if namespace != "" {
		doc.ReferencedNamespaces[namespace] = true
	}
}

// discoverSchemaChildren indexes the role types, linkbases and concepts of a
// schema in the DTS. It runs at most once per document.
func (s *Session) discoverSchemaChildren(ctx context.Context, doc *Document) {
	if doc.childrenDiscovered || doc.Root == nil {
		return
	}
	doc.childrenDiscovered = true
	s.walkSchemaChildren(ctx, doc, doc.Root)
}

func (s *Session) walkSchemaChildren(ctx context.Context, doc *Document, parent *etree.Element) {
	for _, el := range childElements(parent) {
		ns := elementNamespace(el)
		switch {
		case ns == NsLink && (el.Tag == "roleType" || el.Tag == "arcroleType"):
			s.discoverRoleType(doc, el)
			continue
		case ns == NsLink && el.Tag == "linkbaseRef":
			if !inAppinfo(el) {
				s.errorf(KindMisdeclared, "xbrl:linkbaseRefLocation", el,
					"linkbaseRef in %s is not in xs:schema/xs:annotation/xs:appinfo", doc.BaseName())
			}
			if s.discoverHref(ctx, doc, el, false) == nil {
				s.errorf(KindMisdeclared, "xbrl:hrefMissing", el,
					"linkbaseRef in %s href attribute missing or malformed", doc.BaseName())
			}
			continue
		case ns == NsLink && el.Tag == "linkbase":
			s.discoverLinkbase(ctx, doc, el, false)
			continue
		case ns == NsXsd && el.Tag == "element" && parent == doc.Root:
			s.discoverConcept(doc, el)
		}
		s.walkSchemaChildren(ctx, doc, el)
	}
}

// inAppinfo reports whether el sits at xs:schema/xs:annotation/xs:appinfo.
func inAppinfo(el *etree.Element) bool {
	appinfo := el.Parent()
	if !hasQName(appinfo, qnXsdAppinfo) {
		return false
	}
	annotation := appinfo.Parent()
	return hasQName(annotation, qnXsdAnnotation) && hasQName(annotation.Parent(), qnXsdSchema)
}

func (s *Session) discoverRoleType(doc *Document, el *etree.Element) {
	rt := &RoleType{
		IsArcrole: el.Tag == "arcroleType",
		Element:   el,
		Document:  doc,
	}
	index, code := s.RoleTypes, "xbrl:roleTypeLocation"
	if rt.IsArcrole {
		rt.URI = attr(el, "arcroleURI")
		rt.CyclesAllowed = attr(el, "cyclesAllowed")
		index, code = s.ArcroleTypes, "xbrl:arcroleTypeLocation"
	} else {
		rt.URI = attr(el, "roleURI")
	}
	if !inAppinfo(el) {
		s.errorf(KindMisdeclared, code, el, "%s %s in %s is not in xs:schema/xs:annotation/xs:appinfo",
			el.Tag, rt.URI, doc.BaseName())
	}
	for _, c := range childElements(el) {
		switch {
		case hasQName(c, qnLinkDefinition):
			rt.Definition = strings.TrimSpace(textContent(c))
		case hasQName(c, qnLinkUsedOn):
			if qn, ok := ResolveQName(c, strings.TrimSpace(textContent(c))); ok {
				rt.UsedOn = append(rt.UsedOn, qn)
			}
		}
	}
	index[rt.URI] = append(index[rt.URI], rt)
}

func (s *Session) discoverConcept(doc *Document, el *etree.Element) {
	name := attr(el, "name")
	if name == "" {
		return
	}
	c := &Concept{
		QName:    QName{Space: doc.TargetNamespace, Local: name},
		Element:  el,
		Document: doc,
		Abstract: isTrue(attr(el, "abstract")),
		Nillable: isTrue(attr(el, "nillable")),
		ID:       elementID(el),
	}
	if sg := attr(el, "substitutionGroup"); sg != "" {
		c.SubstitutionGroup, _ = ResolveQName(el, sg)
	}
	if t := attr(el, "type"); t != "" {
		c.TypeName, _ = ResolveQName(el, t)
	}
	c.PeriodType, _ = attrValue(el, NsXbrli, "periodType")
	c.Balance, _ = attrValue(el, NsXbrli, "balance")
	if _, exists := s.Concepts[c.QName]; !exists {
		s.Concepts[c.QName] = c
	}
}

func isTrue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "true" || v == "1"
}

// Concept returns the concept declared for qn, or nil.
func (s *Session) Concept(qn QName) *Concept {
	return s.Concepts[qn]
}
