package xbrl

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

var qnGenArc = QName{NsGen, "arc"}

// PromotedFact records a fact moved into the active target because a
// relationship of that target points at it.
type PromotedFact struct {
	ID         string
	FromTarget string
	ToTarget   string
}

type refAttr struct {
	attr   etree.Attr
	ns     string
	source *etree.Element
}

// ixdsInventory is everything the merge collects from the fragments of an
// inline document set, in fragment and document order.
type ixdsInventory struct {
	ids            map[string][]*etree.Element
	headers        int
	resources      []*etree.Element
	references     []*etree.Element
	tuples         []*etree.Element
	tuplesByID     map[string]*etree.Element
	facts          []*etree.Element
	continuations  []*etree.Element
	continuedFrom  []*etree.Element
	footnotes      []*etree.Element
	relationships  []*etree.Element
	excludes       []*etree.Element
	fractionTerms  []*etree.Element
	refAttrs       map[string]map[QName]refAttr
	refNamespaces  map[string]map[string]string
	contextsByTgt  map[string]map[string]bool
	unitsByTgt     map[string]map[string]bool
	rolesByTarget  map[string]map[string]bool
	targetsPresent map[string]bool
}

// ixdsMerge holds the working state of one merge.
type ixdsMerge struct {
	s       *Session
	logical *Document
	inv     *ixdsInventory
	active  string

	tupleFacts map[*etree.Element]*Fact
	tupleByID  map[string]*Fact
	members    map[*Fact][]*Fact
	placed     []*Fact

	links     map[ixdsLinkKey]*LinkPrototype
	locLabels map[*LinkPrototype]map[*etree.Element]string
	resLabels map[*LinkPrototype]map[*etree.Element]string
}

type ixdsLinkKey struct {
	name QName
	role string
}

// mergeInlineDocumentSet reconciles every inline fragment loaded in the
// session into one logical instance for the active target. Structural
// problems are reported and the merge carries on.
func (s *Session) mergeInlineDocumentSet(ctx context.Context, logical *Document) {
	if logical == nil || len(s.IxdsHTMLElements) == 0 {
		return
	}
	m := &ixdsMerge{
		s:          s,
		logical:    logical,
		tupleFacts: make(map[*etree.Element]*Fact),
		tupleByID:  make(map[string]*Fact),
		members:    make(map[*Fact][]*Fact),
		links:      make(map[ixdsLinkKey]*LinkPrototype),
		locLabels:  make(map[*LinkPrototype]map[*etree.Element]string),
		resLabels:  make(map[*LinkPrototype]map[*etree.Element]string),
	}
	m.selectTarget()
	m.inventory()
	m.discoverDTS(ctx)
	m.inferRelationshipTargets()
	m.selectResources(ctx)
	m.buildTargetRoots()
	m.placeFacts()
	m.checkTuples()
	m.resolveContinuations()
	m.checkFractions()
	m.checkTransforms()
	m.materializeFootnotes()
	m.materializeRelationships()
	m.finish()
}

func (m *ixdsMerge) selectTarget() {
	s := m.s
	targets := make(map[string]bool)
	for _, root := range s.IxdsHTMLElements {
		walk(root, func(el *etree.Element) bool {
			if !IsInlineNamespace(elementNamespace(el)) {
				return true
			}
			switch el.Tag {
			case "nonNumeric", "nonFraction", "fraction", "tuple", "references":
				if t, ok := attrValue(el, "", "target"); ok {
					targets[t] = true
				} else {
					targets[""] = true
				}
			}
			return true
		})
	}
	s.IxdsTargets = slices.Sorted(maps.Keys(targets))
	for _, fn := range s.hooks.SelectIxdsTarget {
		fn(s, s.IxdsTargets)
	}
	m.active = s.IxdsTarget
	if m.active != "" && !targets[m.active] {
		s.warnf(KindMisdeclared, "ixerr:targetNotFound", s.IxdsHTMLElements[0],
			"inline document set has no target %q, targets present: %s", m.active, strings.Join(s.IxdsTargets, ", "))
	}
}

func (m *ixdsMerge) inventory() {
	s := m.s
	inv := &ixdsInventory{
		ids:            make(map[string][]*etree.Element),
		tuplesByID:     make(map[string]*etree.Element),
		refAttrs:       make(map[string]map[QName]refAttr),
		refNamespaces:  make(map[string]map[string]string),
		contextsByTgt:  make(map[string]map[string]bool),
		unitsByTgt:     make(map[string]map[string]bool),
		rolesByTarget:  make(map[string]map[string]bool),
		targetsPresent: make(map[string]bool),
	}
	m.inv = inv

	for _, root := range s.IxdsHTMLElements {
		walk(root, func(el *etree.Element) bool {
			if id := elementID(el); id != "" {
				inv.ids[id] = append(inv.ids[id], el)
			}
			if !IsInlineNamespace(elementNamespace(el)) {
				return true
			}
			if el.Tag != "continuation" && attr(el, "continuedAt") != "" {
				inv.continuedFrom = append(inv.continuedFrom, el)
			}
			switch el.Tag {
			case "header":
				inv.headers++
			case "resources":
				inv.resources = append(inv.resources, el)
			case "references":
				inv.references = append(inv.references, el)
				m.collectReferences(el)
			case "tuple":
				inv.tuples = append(inv.tuples, el)
				if id := attr(el, "tupleID"); id != "" {
					if prev, dup := inv.tuplesByID[id]; dup {
						s.errorf(KindMisdeclared, "ixerr:tupleIDDuplicate", el,
							"inline XBRL tuples %s and %s have the same tupleID %s", attr(prev, "name"), attr(el, "name"), id)
					} else {
						inv.tuplesByID[id] = el
					}
				}
			case "nonNumeric", "nonFraction":
				inv.facts = append(inv.facts, el)
				m.noteFactRefs(el)
			case "fraction":
				if !hasInlineAncestor(el, "fraction") {
					inv.facts = append(inv.facts, el)
					m.noteFactRefs(el)
				}
			case "numerator", "denominator":
				inv.fractionTerms = append(inv.fractionTerms, el)
			case "continuation":
				inv.continuations = append(inv.continuations, el)
			case "footnote":
				inv.footnotes = append(inv.footnotes, el)
			case "relationship":
				inv.relationships = append(inv.relationships, el)
			case "exclude":
				inv.excludes = append(inv.excludes, el)
			}
			return true
		})
	}

	for _, id := range slices.Sorted(maps.Keys(inv.ids)) {
		els := inv.ids[id]
		first := s.documentOf(els[0])
		if i := slices.IndexFunc(els[1:], func(el *etree.Element) bool { return s.documentOf(el) != first }); i >= 0 {
			s.errorf(KindMisdeclared, "ixerr:duplicateId", els[i+1],
				"id %s is used in %d elements of the inline document set", id, len(els))
		}
	}
	if inv.headers == 0 {
		s.errorf(KindMisdeclared, "ixerr:missingHeader", s.IxdsHTMLElements[0],
			"inline document set has no ix:header element")
	}
	if len(inv.resources) == 0 {
		s.errorf(KindMisdeclared, "ixerr:missingResources", s.IxdsHTMLElements[0],
			"inline document set has no ix:resources element")
	}
}

func (m *ixdsMerge) noteFactRefs(el *etree.Element) {
	inv := m.inv
	target := attr(el, "target")
	inv.targetsPresent[target] = true
	if ref := attr(el, "contextRef"); ref != "" {
		addToSet(inv.contextsByTgt, target, ref)
	}
	if ref := attr(el, "unitRef"); ref != "" {
		addToSet(inv.unitsByTgt, target, ref)
	}
}

// collectReferences accumulates the attributes and namespace bindings of an
// ix:references element into its target.
func (m *ixdsMerge) collectReferences(el *etree.Element) {
	s, inv := m.s, m.inv
	target := attr(el, "target")
	inv.targetsPresent[target] = true

	attrs := inv.refAttrs[target]
	if attrs == nil {
		attrs = make(map[QName]refAttr)
		inv.refAttrs[target] = attrs
	}
	for _, a := range el.Attr {
		if isNamespaceDecl(a) {
			continue
		}
		ns := attrNamespace(el, a)
		if IsInlineNamespace(ns) || (ns == NsXML && a.Key == "base") || (ns == "" && (a.Key == "target" || a.Key == "id")) {
			continue
		}
		qn := QName{Space: ns, Local: a.Key}
		if prev, dup := attrs[qn]; dup && prev.source != el {
			s.errorf(KindMisdeclared, "ixerr:referencesAttributeDuplication", el,
				"attribute %s of ix:references for target %q is also given in another ix:references", qn, target)
			continue
		}
		attrs[qn] = refAttr{attr: a, ns: ns, source: el}
	}

	bindings := inv.refNamespaces[target]
	if bindings == nil {
		bindings = make(map[string]string)
		inv.refNamespaces[target] = bindings
	}
	inScope := inScopeNamespaces(el)
	for _, prefix := range slices.Sorted(maps.Keys(inScope)) {
		ns := inScope[prefix]
		if prefix == "" {
			continue
		}
		if prev, ok := bindings[prefix]; ok && prev != ns {
			s.errorf(KindMisdeclared, "ixerr:referencesNamespacePrefixConflict", el,
				"prefix %s of target %q is bound to both %s and %s", prefix, target, prev, ns)
			continue
		}
		bindings[prefix] = ns
	}
}

func (m *ixdsMerge) targetSelected(target string) bool {
	return target == m.active || m.s.opts.IxdsLoadAllTargets
}

// discoverDTS follows the schemaRef and linkbaseRef elements of the
// ix:references of the selected targets.
func (m *ixdsMerge) discoverDTS(ctx context.Context) {
	s := m.s
	if !s.hooks.discoverIxdsDts(s) {
		return
	}
	for _, refs := range m.inv.references {
		if !m.targetSelected(attr(refs, "target")) {
			continue
		}
		doc := s.documentOf(refs)
		if doc == nil {
			doc = m.logical
		}
		for _, el := range childElements(refs) {
			if !hasQName(el, qnLinkSchemaRef) && !hasQName(el, qnLinkLinkbaseRef) {
				continue
			}
			if s.discoverHref(ctx, doc, el, false) == nil {
				s.errorf(KindMisdeclared, "xbrl:hrefMissing", el,
					"%s in %s href attribute missing or malformed", el.Tag, doc.BaseName())
			}
		}
	}
}

// inferRelationshipTargets records, per target, the link roles and arcroles
// that footnotes and relationships use. A relationship belongs to the target
// of the facts it starts from.
func (m *ixdsMerge) inferRelationshipTargets() {
	inv := m.inv
	for _, rel := range inv.relationships {
		target := ""
		for _, id := range strings.Fields(attr(rel, "fromRefs")) {
			if el := m.element(id); el != nil && !isInline(el, "footnote") {
				target = attr(el, "target")
				break
			}
		}
		addToSet(inv.rolesByTarget, target, defaultString(attr(rel, "linkRole"), DefaultLinkRole))
		addToSet(inv.rolesByTarget, target, defaultString(attr(rel, "arcrole"), FactFootnoteArcrole))
		for _, id := range strings.Fields(attr(rel, "toRefs")) {
			if el := m.element(id); isInline(el, "footnote") {
				addToSet(inv.rolesByTarget, target, defaultString(attr(el, "footnoteRole"), FootnoteRole))
			}
		}
	}
	for _, fn := range inv.footnotes {
		fid := attr(fn, "footnoteID")
		if fid == "" {
			continue
		}
		for _, el := range inv.facts {
			if !slices.Contains(strings.Fields(attr(el, "footnoteRefs")), fid) {
				continue
			}
			target := attr(el, "target")
			addToSet(inv.rolesByTarget, target, defaultString(attr(fn, "footnoteLinkRole"), DefaultLinkRole))
			addToSet(inv.rolesByTarget, target, defaultString(attr(fn, "arcrole"), FactFootnoteArcrole))
			addToSet(inv.rolesByTarget, target, defaultString(attr(fn, "footnoteRole"), FootnoteRole))
		}
	}
}

// selectResources registers the contexts and units the active target uses.
// Without target filtering, resources no target uses are kept as well. Role
// and arcrole refs are followed when the active target uses their URI.
func (m *ixdsMerge) selectResources(ctx context.Context) {
	s, inv := m.s, m.inv
	filtering := s.IxdsTarget != "" || s.opts.IxdsLoadAllTargets
	usedContexts := unionSets(inv.contextsByTgt)
	usedUnits := unionSets(inv.unitsByTgt)

	for _, res := range inv.resources {
		doc := s.documentOf(res)
		if doc == nil {
			doc = m.logical
		}
		for _, el := range childElements(res) {
			ns := elementNamespace(el)
			switch {
			case ns == NsXbrli && el.Tag == "context":
				id := elementID(el)
				if inv.contextsByTgt[m.active][id] || (!filtering && !usedContexts[id]) {
					s.discoverContext(doc, el)
				}
			case ns == NsXbrli && el.Tag == "unit":
				id := elementID(el)
				if inv.unitsByTgt[m.active][id] || (!filtering && !usedUnits[id]) {
					s.discoverUnit(doc, el)
				}
			case hasQName(el, qnLinkRoleRef) || hasQName(el, qnLinkArcroleRef):
				uri := attr(el, "roleURI")
				if el.Tag == "arcroleRef" {
					uri = attr(el, "arcroleURI")
				}
				if !inv.rolesByTarget[m.active][uri] {
					continue
				}
				if s.discoverHref(ctx, doc, el, false) == nil {
					s.errorf(KindMisdeclared, "xbrl:hrefMissing", el,
						"%s in %s href attribute missing or malformed", el.Tag, doc.BaseName())
				}
			}
		}
	}
}

// buildTargetRoots synthesizes an xbrli:xbrl root for every target, carrying
// the target's ix:references attributes, namespace bindings and refs.
func (m *ixdsMerge) buildTargetRoots() {
	s, inv := m.s, m.inv
	targets := map[string]bool{"": true, m.active: true}
	for t := range inv.targetsPresent {
		targets[t] = true
	}
	for _, target := range slices.Sorted(maps.Keys(targets)) {
		xd := etree.NewDocument()
		root := xd.CreateElement("xbrli:xbrl")
		root.CreateAttr("xmlns:xbrli", NsXbrli)
		bindings := inv.refNamespaces[target]
		for _, prefix := range slices.Sorted(maps.Keys(bindings)) {
			if prefix != "xbrli" && prefix != "xml" {
				root.CreateAttr("xmlns:"+prefix, bindings[prefix])
			}
		}
		attrs := inv.refAttrs[target]
		for _, qn := range slices.SortedFunc(maps.Keys(attrs), compareQNames) {
			ra := attrs[qn]
			key := ra.attr.Key
			if ra.ns != "" {
				key = prefixFor(bindings, ra.ns, ra.attr.Space) + ":" + key
			}
			root.CreateAttr(key, ra.attr.Value)
		}
		for _, refs := range inv.references {
			if attr(refs, "target") != target {
				continue
			}
			for _, el := range childElements(refs) {
				if hasQName(el, qnLinkSchemaRef) || hasQName(el, qnLinkLinkbaseRef) {
					root.AddChild(el.Copy())
				}
			}
		}
		s.docByTree[&xd.Element] = m.logical
		s.IxTargetRootElements[target] = root
	}
}

// placeFacts builds the facts of every fragment, tuples first, and attaches
// each to its tuple or to its target.
func (m *ixdsMerge) placeFacts() {
	s, inv := m.s, m.inv
	for _, el := range inv.tuples {
		f := s.newInlineFact(m.docOf(el), el)
		m.tupleFacts[el] = f
		if f.TupleID != "" && inv.tuplesByID[f.TupleID] == el {
			m.tupleByID[f.TupleID] = f
		}
	}
	for _, el := range inv.tuples {
		m.place(m.tupleFacts[el])
	}
	for _, el := range inv.facts {
		m.place(s.newInlineFact(m.docOf(el), el))
	}

	for _, f := range m.placed {
		if f.Target == m.active && f.Concept == nil {
			s.UndefinedFacts = append(s.UndefinedFacts, f)
		}
	}
	s.reportUndefinedFacts(s.IxdsHTMLElements[0])
}

func (m *ixdsMerge) place(f *Fact) {
	s := m.s
	m.placed = append(m.placed, f)
	if f.Target == m.active {
		s.FactsInInstance = append(s.FactsInInstance, f)
	}
	parent := m.tupleParent(f)
	if parent != nil && f.Target != parent.Target {
		// A member never joins a tuple of another target.
		s.errorf(KindMisdeclared, "ixerr:tupleTargetMismatch", f.Element,
			"inline XBRL fact %s has target %q but its tuple %s has target %q", f.Name(), f.Target, parent.Name(), parent.Target)
		parent = nil
	}
	if parent == nil {
		m.placeTopLevel(f)
		return
	}
	f.Parent = parent
	m.members[parent] = append(m.members[parent], f)
	if f.Order == "" {
		s.errorf(KindMisdeclared, "ixerr:tupleOrderMissing", f.Element,
			"inline XBRL fact %s in tuple %s has no order", f.Name(), parent.Name())
	}
}

func (m *ixdsMerge) placeTopLevel(f *Fact) {
	s := m.s
	f.Parent = nil
	s.IxTargetFacts[f.Target] = append(s.IxTargetFacts[f.Target], f)
	if f.Target == m.active {
		s.Facts = append(s.Facts, f)
	}
}

// tupleParent finds the tuple of f through tupleRef or, without one, the
// nearest enclosing ix:tuple.
func (m *ixdsMerge) tupleParent(f *Fact) *Fact {
	if f.TupleRef != "" {
		parent := m.tupleByID[f.TupleRef]
		if parent == nil {
			m.s.errorf(KindMisdeclared, "ixerr:tupleRefMissing", f.Element,
				"inline XBRL %s tupleRef %s not found", f.Name(), f.TupleRef)
		}
		return parent
	}
	for p := f.Element.Parent(); p != nil; p = p.Parent() {
		if isInline(p, "tuple") {
			return m.tupleFacts[p]
		}
	}
	return nil
}

// checkTuples orders tuple members, drops equivalent duplicates, and reports
// misplaced fraction terms and containment cycles.
func (m *ixdsMerge) checkTuples() {
	s := m.s
	for _, el := range m.inv.tuples {
		t := m.tupleFacts[el]
		members := m.members[t]
		sort.SliceStable(members, func(i, j int) bool {
			return orderLess(members[i].Order, members[j].Order)
		})
		var kept []*Fact
		for _, f := range members {
			var clash *Fact
			equivalent := false
			for _, k := range kept {
				if !sameOrder(k.Order, f.Order) {
					continue
				}
				if equivalentFacts(k, f) {
					equivalent = true
					break
				}
				if clash == nil {
					clash = k
				}
			}
			if equivalent {
				continue
			}
			if clash != nil {
				s.errorf(KindMisdeclared, "ixerr:tupleOrderDuplicate", f.Element,
					"inline XBRL tuple %s has different facts %s and %s at order %s",
					t.Name(), clash.Name(), f.Name(), f.Order)
			}
			kept = append(kept, f)
		}
		t.Children = kept
	}

	for _, term := range m.inv.fractionTerms {
		if hasInlineAncestor(term, "fraction") || !hasInlineAncestor(term, "tuple") {
			continue
		}
		s.errorf(KindMisdeclared, "ixerr:misplacedFractionTerms", term,
			"ix:%s is only allowed within an ix:fraction", term.Tag)
	}

	state := make(map[*Fact]int)
	var stack []*Fact
	var visit func(*Fact)
	visit = func(t *Fact) {
		state[t] = 1
		stack = append(stack, t)
		kept := t.Children[:0]
		for _, c := range t.Children {
			if c.IsTuple() && state[c] == 1 {
				i := slices.Index(stack, c)
				names := make([]string, 0, len(stack)-i+1)
				for _, f := range stack[i:] {
					names = append(names, tupleLabel(f))
				}
				names = append(names, tupleLabel(c))
				s.errorf(KindMisdeclared, "ixerr:tupleCycle", c.Element,
					"inline XBRL tuple cycle: %s", strings.Join(names, " - "))
				m.placeTopLevel(c)
				continue
			}
			kept = append(kept, c)
			if c.IsTuple() && state[c] == 0 {
				visit(c)
			}
		}
		t.Children = kept
		stack = stack[:len(stack)-1]
		state[t] = 2
	}
	for _, el := range m.inv.tuples {
		if t := m.tupleFacts[el]; state[t] == 0 {
			visit(t)
		}
	}
}

// tupleLabel names a tuple in messages by its tupleID, id or qname.
func tupleLabel(f *Fact) string {
	switch {
	case f.TupleID != "":
		return f.TupleID
	case f.ID != "":
		return f.ID
	}
	return f.Name()
}

// resolveContinuations links continuedAt chains and reports missing, wrong,
// cyclic, shared and nested continuations and misplaced exclusions.
func (m *ixdsMerge) resolveContinuations() {
	s, inv := m.s, m.inv
	walked := make(map[*etree.Element]bool)
	referencedBy := make(map[*etree.Element][]*etree.Element)
	var referenced []*etree.Element

	follow := func(source *etree.Element) {
		chain := []*etree.Element{source}
		walked[source] = true
		cur := source
		for {
			id := strings.TrimSpace(attr(cur, "continuedAt"))
			if id == "" {
				break
			}
			next := m.element(id)
			if next == nil {
				s.errorf(KindMisdeclared, "ixerr:continuationMissing", cur,
					"inline XBRL %s continuedAt %s has no matching continuation", prefixedName(cur), id)
				break
			}
			if !isInline(next, "continuation") {
				s.errorf(KindMisdeclared, "ixerr:continuationInvalidTarget", cur,
					"inline XBRL %s continuedAt %s refers to %s, not ix:continuation", prefixedName(cur), id, prefixedName(next))
				break
			}
			if slices.Contains(chain, next) {
				ids := make([]string, 0, len(chain)+1)
				for _, el := range chain {
					ids = append(ids, elementID(el))
				}
				ids = append(ids, elementID(next))
				s.errorf(KindMisdeclared, "ixerr:continuationCycle", next,
					"inline XBRL continuation chain is cyclic: %s", strings.Join(ids, ", "))
				delete(s.continuations, source)
				break
			}
			if len(referencedBy[next]) == 0 {
				referenced = append(referenced, next)
			}
			referencedBy[next] = append(referencedBy[next], cur)
			s.continuations[cur] = next
			if walked[next] {
				break
			}
			walked[next] = true
			chain = append(chain, next)
			cur = next
		}
		m.checkNestedChain(chain)
	}
	for _, el := range inv.continuedFrom {
		follow(el)
	}
	for _, el := range inv.continuations {
		if !walked[el] && attr(el, "continuedAt") != "" {
			follow(el)
		}
	}

	for _, cont := range referenced {
		refs := referencedBy[cont]
		if len(refs) < 2 {
			continue
		}
		names := make([]string, 0, len(refs))
		for _, r := range refs {
			names = append(names, prefixedName(r))
		}
		s.errorf(KindMisdeclared, "ixerr:continuationReuse", cont,
			"inline XBRL continuation %s is referenced by %s", elementID(cont), strings.Join(names, ", "))
	}

	for _, ex := range inv.excludes {
		if !hasInlineAncestor(ex, "continuation") && !hasInlineAncestor(ex, "footnote") && !hasInlineAncestor(ex, "nonNumeric") {
			s.errorf(KindMisdeclared, "ixerr:misplacedExclude", ex,
				"ix:exclude must be within ix:continuation, ix:footnote or ix:nonNumeric")
		}
	}
}

func (m *ixdsMerge) checkNestedChain(chain []*etree.Element) {
	for _, outer := range chain {
		for _, inner := range chain {
			if outer != inner && isAncestor(outer, inner) {
				m.s.errorf(KindMisdeclared, "ixerr:continuationDescendant", inner,
					"inline XBRL %s %s is nested in %s %s of its own continuation chain",
					prefixedName(inner), elementID(inner), prefixedName(outer), elementID(outer))
			}
		}
	}
}

// checkFractions validates the terms, children and nested attributes of
// every top-level fraction fact.
func (m *ixdsMerge) checkFractions() {
	for _, f := range m.placed {
		if isInline(f.Element, "fraction") {
			m.checkFraction(f)
		}
	}
}

func (m *ixdsMerge) checkFraction(f *Fact) {
	s := m.s
	var numerators, denominators int
	for _, d := range descendants(f.Element) {
		switch {
		case isInline(d, "numerator"):
			numerators++
		case isInline(d, "denominator"):
			denominators++
		}
	}
	switch {
	case f.IsNil && (numerators > 0 || denominators > 0):
		s.errorf(KindMisdeclared, "ixerr:fractionNilTerms", f.Element,
			"nil inline XBRL fraction %s must not have a numerator or denominator", f.Name())
	case !f.IsNil && (numerators != 1 || denominators != 1):
		s.errorf(KindMisdeclared, "ixerr:fractionTerms", f.Element,
			"inline XBRL fraction %s has %d numerators and %d denominators", f.Name(), numerators, denominators)
	}

	var check func(el *etree.Element)
	check = func(el *etree.Element) {
		var disallowed []string
		var nested []*etree.Element
		for _, c := range childElements(el) {
			switch {
			case isInline(c, "numerator"), isInline(c, "denominator"):
			case isInline(c, "fraction"):
				nested = append(nested, c)
			default:
				if !slices.Contains(disallowed, c.Tag) {
					disallowed = append(disallowed, c.Tag)
				}
			}
		}
		if len(disallowed) > 0 {
			s.errorf(KindMisdeclared, "ixerr:fractionDisallowedChildren", el,
				"inline XBRL fraction %s has disallowed children: %s", attr(el, "name"), strings.Join(disallowed, ", "))
		}
		for i := 1; i < len(nested); i++ {
			if key, ok := differingAttr(nested[0], nested[i]); ok {
				s.errorf(KindMisdeclared, "ixerr:fractionNestedAttributes", nested[i],
					"nested inline XBRL fractions of %s differ in attribute %s", attr(el, "name"), key)
			}
		}
		for _, n := range nested {
			check(n)
		}
	}
	check(f.Element)
}

// differingAttr returns the first attribute other than order that a and b
// both carry with different values.
func differingAttr(a, b *etree.Element) (string, bool) {
	for _, x := range a.Attr {
		if isNamespaceDecl(x) || (x.Space == "" && x.Key == "order") {
			continue
		}
		for _, y := range b.Attr {
			if y.Space == x.Space && y.Key == x.Key && y.Value != x.Value {
				return x.FullKey(), true
			}
		}
	}
	return "", false
}

// checkTransforms resolves ix:format of every fact. Facts with an unknown
// transform are marked invalid.
func (m *ixdsMerge) checkTransforms() {
	s := m.s
	for _, f := range m.placed {
		format := strings.TrimSpace(attr(f.Element, "format"))
		if format == "" {
			continue
		}
		qn, ok := ResolveQName(f.Element, format)
		f.Format = qn
		if !ok || !s.transforms.Valid(qn) {
			f.Invalid = true
			s.errorf(KindMisdeclared, "ixerr:invalidTransformation", f.Element,
				"inline XBRL fact %s has an unrecognized format %s", f.Name(), format)
		}
	}
}

// materializeFootnotes turns inline XBRL 1.0 footnotes into footnote links,
// one per link role, for footnotes referenced from the active target.
func (m *ixdsMerge) materializeFootnotes() {
	s := m.s
	byFootnote := make(map[string][]*Fact)
	for _, f := range m.placed {
		for _, ref := range strings.Fields(attr(f.Element, "footnoteRefs")) {
			byFootnote[ref] = append(byFootnote[ref], f)
		}
	}
	for _, fn := range m.inv.footnotes {
		fid := attr(fn, "footnoteID")
		if fid == "" {
			continue
		}
		var facts []*Fact
		for _, f := range byFootnote[fid] {
			if f.Target == m.active {
				facts = append(facts, f)
			}
		}
		if len(facts) == 0 {
			continue
		}
		role := defaultString(attr(fn, "footnoteLinkRole"), DefaultLinkRole)
		arcrole := defaultString(attr(fn, "arcrole"), FactFootnoteArcrole)
		link := m.link(qnLinkFootnoteLink, role, fn)
		to := m.resourceLabel(link, fn)
		for _, f := range facts {
			link.AddArc(qnLinkFootnoteArc, arcrole, m.locLabel(link, f.Element), to, "")
		}
		s.BaseSets.addArcrole(arcrole, role, qnLinkFootnoteLink, qnLinkFootnoteArc, link)
	}
}

// materializeRelationships turns inline XBRL 1.1 relationships starting in
// the active target into links. Facts they point at in other targets are
// promoted into the active target.
func (m *ixdsMerge) materializeRelationships() {
	s := m.s
	for _, rel := range m.inv.relationships {
		fromRefs := strings.Fields(attr(rel, "fromRefs"))
		toRefs := strings.Fields(attr(rel, "toRefs"))
		if overlap := intersect(fromRefs, toRefs); len(overlap) > 0 {
			s.errorf(KindMisdeclared, "ixerr:relationshipFromToOverlap", rel,
				"inline XBRL relationship fromRefs and toRefs share %s", strings.Join(overlap, ", "))
			continue
		}
		var fromFacts []*Fact
		for _, id := range fromRefs {
			if f := s.factByElement[m.element(id)]; f != nil && f.Target == m.active {
				fromFacts = append(fromFacts, f)
			}
		}
		var toFootnotes []*etree.Element
		var toFacts []*Fact
		for _, id := range toRefs {
			el := m.element(id)
			switch {
			case isInline(el, "footnote"):
				toFootnotes = append(toFootnotes, el)
			case s.factByElement[el] != nil:
				toFacts = append(toFacts, s.factByElement[el])
			default:
				s.errorf(KindMisdeclared, "ixerr:relationshipToRefMissing", rel,
					"inline XBRL relationship toRef %s is not a footnote or fact", id)
			}
		}
		if len(toFootnotes) > 0 && len(toFacts) > 0 {
			s.errorf(KindMisdeclared, "ixerr:relationshipMixedToRefs", rel,
				"inline XBRL relationship toRefs mix footnotes and facts")
			continue
		}
		if len(fromFacts) == 0 {
			continue
		}
		s.TargetRelationships = append(s.TargetRelationships, rel)
		for _, f := range toFacts {
			m.promote(f)
		}

		role := defaultString(attr(rel, "linkRole"), DefaultLinkRole)
		arcrole := defaultString(attr(rel, "arcrole"), FactFootnoteArcrole)
		linkName, arcName := qnLinkFootnoteLink, qnLinkFootnoteArc
		if len(toFacts) > 0 {
			linkName, arcName = qnGenLink, qnGenArc
		}
		link := m.link(linkName, role, rel)
		order := attr(rel, "order")
		for _, from := range fromFacts {
			fromLabel := m.locLabel(link, from.Element)
			for _, fn := range toFootnotes {
				link.AddArc(arcName, arcrole, fromLabel, m.resourceLabel(link, fn), order)
			}
			for _, f := range toFacts {
				link.AddArc(arcName, arcrole, fromLabel, m.locLabel(link, f.Element), order)
			}
		}
		s.BaseSets.addArcrole(arcrole, role, linkName, arcName, link)
	}
}

// promote moves f, and the tuple members below it, into the active target.
// The target attribute is rewritten, or removed for the default target. A
// fact already in the active target is left alone.
func (m *ixdsMerge) promote(f *Fact) {
	s := m.s
	if f.Target == m.active {
		return
	}
	s.PromotedFacts = append(s.PromotedFacts, PromotedFact{ID: f.ID, FromTarget: f.Target, ToTarget: m.active})
	if m.active == "" {
		f.Element.RemoveAttr("target")
	} else {
		setAttr(f.Element, "target", m.active)
	}
	if f.Parent == nil {
		old := s.IxTargetFacts[f.Target]
		if i := slices.Index(old, f); i >= 0 {
			s.IxTargetFacts[f.Target] = slices.Delete(old, i, i+1)
		}
		s.IxTargetFacts[m.active] = append(s.IxTargetFacts[m.active], f)
		s.Facts = append(s.Facts, f)
	}
	f.Target = m.active
	s.FactsInInstance = append(s.FactsInInstance, f)
	for _, c := range f.Children {
		m.promote(c)
	}
}

func (m *ixdsMerge) link(name QName, role string, source *etree.Element) *LinkPrototype {
	key := ixdsLinkKey{name: name, role: role}
	if l := m.links[key]; l != nil {
		return l
	}
	l := NewLinkPrototype(m.logical, name, role, source)
	m.links[key] = l
	m.locLabels[l] = make(map[*etree.Element]string)
	m.resLabels[l] = make(map[*etree.Element]string)
	m.s.FootnoteLinks = append(m.s.FootnoteLinks, l)
	m.s.BaseSets.addUmbrella(ArcroleFootnotes, role, l)
	return l
}

// locLabel returns the label of the locator for el in link, adding it once.
func (m *ixdsMerge) locLabel(link *LinkPrototype, el *etree.Element) string {
	if label, ok := m.locLabels[link][el]; ok {
		return label
	}
	label := "fact_" + strconv.Itoa(len(m.locLabels[link])+1)
	if id := elementID(el); id != "" {
		label = "fact_" + id
	}
	m.locLabels[link][el] = label
	link.AddLoc(label, el)
	return label
}

// resourceLabel returns the label of footnote el in link, adding it once.
func (m *ixdsMerge) resourceLabel(link *LinkPrototype, el *etree.Element) string {
	if label, ok := m.resLabels[link][el]; ok {
		return label
	}
	id := attr(el, "footnoteID")
	if id == "" {
		id = elementID(el)
	}
	label := "footnote_" + id
	m.resLabels[link][el] = label
	link.AddResource(label, el)
	return label
}

func (m *ixdsMerge) finish() {
	s := m.s
	doc := m.logical
	doc.TargetRoot = s.IxTargetRootElements[m.active]
	if doc.Root == nil {
		doc.Root = s.IxdsHTMLElements[0]
	}
	if doc.IxNS == "" {
		if first := s.documentOf(s.IxdsHTMLElements[0]); first != nil {
			doc.IxNS = first.IxNS
		}
	}
	for _, fn := range s.hooks.IxdsTargetDiscovered {
		fn(s, doc)
	}
}

func (m *ixdsMerge) element(id string) *etree.Element {
	if els := m.inv.ids[id]; len(els) > 0 {
		return els[0]
	}
	return nil
}

func (m *ixdsMerge) docOf(el *etree.Element) *Document {
	if doc := m.s.documentOf(el); doc != nil {
		return doc
	}
	return m.logical
}

func hasInlineAncestor(el *etree.Element, local string) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if isInline(p, local) {
			return true
		}
	}
	return false
}

func addToSet(sets map[string]map[string]bool, key, value string) {
	set := sets[key]
	if set == nil {
		set = make(map[string]bool)
		sets[key] = set
	}
	set[value] = true
}

func unionSets(sets map[string]map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, set := range sets {
		for v := range set {
			out[v] = true
		}
	}
	return out
}

func intersect(a, b []string) []string {
	var out []string
	for _, x := range a {
		if slices.Contains(b, x) && !slices.Contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// prefixFor returns a prefix bound to ns, preferring the one used in the
// source document.
func prefixFor(bindings map[string]string, ns, preferred string) string {
	if bindings[preferred] == ns {
		return preferred
	}
	for _, p := range slices.Sorted(maps.Keys(bindings)) {
		if bindings[p] == ns {
			return p
		}
	}
	return preferred
}

func compareQNames(a, b QName) int {
	if c := strings.Compare(a.Space, b.Space); c != 0 {
		return c
	}
	return strings.Compare(a.Local, b.Local)
}

func orderLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}

func sameOrder(a, b string) bool {
	return !orderLess(a, b) && !orderLess(b, a)
}
