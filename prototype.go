package xbrl

import "github.com/beevik/etree"

// Node is the read-only view shared by linkbase elements and the synthetic
// prototypes that stand in for them, so base sets and relationship
// construction never need to know which one they hold.
type Node interface {
	QName() QName
	Get(ns, local string) string
	Parent() Node
	Children() []Node
	Document() *Document
}

// ElementNode adapts an XML element to Node.
type ElementNode struct {
	Element *etree.Element
	Doc     *Document
}

func (n ElementNode) QName() QName { return ElementQName(n.Element) }

func (n ElementNode) Get(ns, local string) string {
	v, _ := attrValue(n.Element, ns, local)
	return v
}

func (n ElementNode) Parent() Node {
	p := n.Element.Parent()
	if p == nil || p.Tag == "" {
		return nil
	}
	if n.Doc != nil && n.Doc.session != nil {
		if l := n.Doc.session.links[p]; l != nil {
			return l
		}
	}
	return ElementNode{Element: p, Doc: n.Doc}
}

func (n ElementNode) Children() []Node {
	var out []Node
	for _, c := range n.Element.ChildElements() {
		out = append(out, ElementNode{Element: c, Doc: n.Doc})
	}
	return out
}

func (n ElementNode) Document() *Document { return n.Doc }

// Link is a discovered extended link.
type Link struct {
	Element *etree.Element
	Doc     *Document
	Role    string

	// LabeledResources holds the link's resources by xlink:label.
	LabeledResources map[string][]*etree.Element
	Locators         []*etree.Element
	Arcs             []*etree.Element

	// Sequence is the 1-based position of each child within the link.
	Sequence map[*etree.Element]int

	// Recognized is false for extended links without a known link construct;
	// their children are not indexed.
	Recognized bool
}

func (l *Link) QName() QName { return ElementQName(l.Element) }

func (l *Link) Get(ns, local string) string {
	v, _ := attrValue(l.Element, ns, local)
	return v
}

func (l *Link) Parent() Node {
	return ElementNode{Element: l.Element.Parent(), Doc: l.Doc}
}

func (l *Link) Children() []Node {
	var out []Node
	for _, c := range l.Element.ChildElements() {
		out = append(out, ElementNode{Element: c, Doc: l.Doc})
	}
	return out
}

func (l *Link) Document() *Document { return l.Doc }

// DocumentPrototype stands in for a document that was referenced but not
// loaded, as when the DTS is skipped.
type DocumentPrototype struct {
	URI       string
	Type      Type
	Namespace string

	References []*DocumentPrototype
}

func (p *DocumentPrototype) QName() QName                { return QName{} }
func (p *DocumentPrototype) Get(ns, local string) string { return "" }
func (p *DocumentPrototype) Parent() Node                { return nil }
func (p *DocumentPrototype) Children() []Node            { return nil }
func (p *DocumentPrototype) Document() *Document         { return nil }

// LinkPrototype is an extended link synthesized from inline XBRL footnotes
// and relationships.
type LinkPrototype struct {
	Name    QName
	Role    string
	Doc     *Document
	Source  *etree.Element // inline element the link was built from, if any
	attrs   map[QName]string
	content []Node

	LabeledResources map[string][]Node
}

// NewLinkPrototype returns an empty link of the given element name and role.
func NewLinkPrototype(doc *Document, name QName, role string, source *etree.Element) *LinkPrototype {
	return &LinkPrototype{
		Name:   name,
		Role:   role,
		Doc:    doc,
		Source: source,
		attrs: map[QName]string{
			{NsXlink, "type"}: "extended",
			{NsXlink, "role"}: role,
		},
		LabeledResources: make(map[string][]Node),
	}
}

func (p *LinkPrototype) QName() QName                { return p.Name }
func (p *LinkPrototype) Get(ns, local string) string { return p.attrs[QName{ns, local}] }
func (p *LinkPrototype) Parent() Node                { return nil }
func (p *LinkPrototype) Document() *Document         { return p.Doc }

func (p *LinkPrototype) Children() []Node {
	out := make([]Node, len(p.content))
	copy(out, p.content)
	return out
}

// AddLoc appends a locator labelled label pointing at target.
func (p *LinkPrototype) AddLoc(label string, target *etree.Element) *LocPrototype {
	loc := &LocPrototype{link: p, Label: label, Target: target}
	p.content = append(p.content, loc)
	return loc
}

// AddResource records a resource element, such as an inline footnote, under label.
func (p *LinkPrototype) AddResource(label string, el *etree.Element) {
	n := ElementNode{Element: el, Doc: p.Doc}
	p.LabeledResources[label] = append(p.LabeledResources[label], n)
	p.content = append(p.content, n)
}

// AddArc appends an arc named name from one label to another.
func (p *LinkPrototype) AddArc(name QName, arcrole, from, to, order string) *ArcPrototype {
	arc := &ArcPrototype{link: p, Name: name, Arcrole: arcrole, From: from, To: to, Order: order}
	p.content = append(p.content, arc)
	return arc
}

// Arcs returns the arc prototypes of the link.
func (p *LinkPrototype) Arcs() []*ArcPrototype {
	var out []*ArcPrototype
	for _, n := range p.content {
		if a, ok := n.(*ArcPrototype); ok {
			out = append(out, a)
		}
	}
	return out
}

// LocPrototype is a synthetic locator.
type LocPrototype struct {
	link   *LinkPrototype
	Label  string
	Target *etree.Element
}

func (p *LocPrototype) QName() QName        { return qnLinkLoc }
func (p *LocPrototype) Parent() Node        { return p.link }
func (p *LocPrototype) Children() []Node    { return nil }
func (p *LocPrototype) Document() *Document { return p.link.Doc }

func (p *LocPrototype) Get(ns, local string) string {
	if ns != NsXlink {
		return ""
	}
	switch local {
	case "type":
		return "locator"
	case "label":
		return p.Label
	case "href":
		if p.Target == nil {
			return ""
		}
		return "#" + elementID(p.Target)
	}
	return ""
}

// ArcPrototype is a synthetic arc.
type ArcPrototype struct {
	link    *LinkPrototype
	Name    QName
	Arcrole string
	From    string
	To      string
	Order   string
}

func (p *ArcPrototype) QName() QName        { return p.Name }
func (p *ArcPrototype) Parent() Node        { return p.link }
func (p *ArcPrototype) Children() []Node    { return nil }
func (p *ArcPrototype) Document() *Document { return p.link.Doc }

func (p *ArcPrototype) Get(ns, local string) string {
	switch {
	case ns == "" && local == "order":
		return p.Order
	case ns != NsXlink:
		return ""
	}
	switch local {
	case "type":
		return "arc"
	case "arcrole":
		return p.Arcrole
	case "from":
		return p.From
	case "to":
		return p.To
	}
	return ""
}
