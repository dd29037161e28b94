package xbrl

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// Href is one resolved xlink:href of a document.
type Href struct {
	Element   *etree.Element
	Document  *Document          // nil when the target could not be loaded
	Prototype *DocumentPrototype // set instead of Document when the DTS is skipped
	Fragment  string
}

// Target returns the element the href points at, if it can be resolved.
func (h Href) Target() *etree.Element {
	if h.Document == nil {
		return nil
	}
	if h.Fragment == "" {
		return h.Document.Root
	}
	return h.Document.IDObjects[h.Fragment]
}

// Reference is a typed edge from one document to another.
type Reference struct {
	Document         *Document
	Kinds            []string
	ReferringElement *etree.Element
}

// HasKind reports whether kind was recorded on the edge.
func (r *Reference) HasKind(kind string) bool {
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ReferringXlinkRole returns the xlink:role of the referring element when the
// edge is a plain href reference.
func (r *Reference) ReferringXlinkRole() string {
	if len(r.Kinds) != 1 || r.Kinds[0] != RefHref || r.ReferringElement == nil {
		return ""
	}
	return xlinkAttr(r.ReferringElement, "role")
}

// Document is one loaded file of a session.
type Document struct {
	session *Session

	URI         string
	Filepath    string
	ObjectIndex int
	Type        Type

	TargetNamespace        string
	NoTargetNamespace      bool
	ElementFormQualified   bool
	AttributeFormQualified bool

	XMLDocument *etree.Document
	Root        *etree.Element
	// TargetRoot is the effective instance root; for inline documents it is
	// the synthetic root of the active target rather than the html element.
	TargetRoot *etree.Element
	Encoding   string
	Text       []byte // content of non-XML documents

	InDTS      bool
	DefinesUTR bool

	IDObjects              map[string]*etree.Element
	HrefObjects            []Href
	SchemaLocationElements []*etree.Element
	ReferencedNamespaces   map[string]bool
	Links                  []*Link

	references map[*Document]*Reference
	refOrder   []*Document
	schemaLoc  map[*etree.Element]bool
	hrefSeen   map[*etree.Element]bool

	childrenDiscovered bool

	// Inline XBRL.
	IxNS    string
	XMLBase string

	// Testcases and feeds.
	Variations []*Variation
	RSSItems   []*RSSItem

	// Versioning reports own the sessions of the two compared DTSes.
	FromDTS *Session
	ToDTS   *Session
}

func (s *Session) newDocument(typ Type, uri, filepath string, xmlDoc *etree.Document) *Document {
	d := &Document{
		session:              s,
		URI:                  uri,
		Filepath:             filepath,
		ObjectIndex:          s.nextObjectIndex,
		Type:                 typ,
		XMLDocument:          xmlDoc,
		Encoding:             "utf-8",
		IDObjects:            make(map[string]*etree.Element),
		ReferencedNamespaces: make(map[string]bool),
		references:           make(map[*Document]*Reference),
		schemaLoc:            make(map[*etree.Element]bool),
		hrefSeen:             make(map[*etree.Element]bool),
	}
	s.nextObjectIndex++
	if xmlDoc != nil {
		s.docByTree[&xmlDoc.Element] = d
		d.Root = xmlDoc.Root()
	}
	return d
}

// Session returns the owning session.
func (d *Document) Session() *Session {
	return d.session
}

// BaseName returns the file name of the document.
func (d *Document) BaseName() string {
	if d.Filepath != "" {
		return filepath.Base(d.Filepath)
	}
	return baseName(d.URI)
}

// ObjectID returns a stable identifier for objects of this document.
func (d *Document) ObjectID(ref string) string {
	return fmt.Sprintf("_%s_%d", ref, d.ObjectIndex)
}

// References returns the outbound edges in the order they were first recorded.
func (d *Document) References() []*Reference {
	out := make([]*Reference, 0, len(d.refOrder))
	for _, to := range d.refOrder {
		out = append(out, d.references[to])
	}
	return out
}

// ReferenceTo returns the edge to other, or nil.
func (d *Document) ReferenceTo(other *Document) *Reference {
	return d.references[other]
}

// ReferencesDocument reports whether d has an edge to other.
func (d *Document) ReferencesDocument(other *Document) bool {
	_, ok := d.references[other]
	return ok
}

// addReference records an edge of the given kind. Self edges are not recorded.
func (d *Document) addReference(to *Document, kind string, el *etree.Element) {
	if to == nil || to == d {
		return
	}
	ref, ok := d.references[to]
	if !ok {
		ref = &Reference{Document: to, ReferringElement: el}
		d.references[to] = ref
		d.refOrder = append(d.refOrder, to)
	}
	if !ref.HasKind(kind) {
		ref.Kinds = append(ref.Kinds, kind)
	}
}

func (d *Document) addHref(h Href) {
	if d.hrefSeen[h.Element] {
		return
	}
	d.hrefSeen[h.Element] = true
	d.HrefObjects = append(d.HrefObjects, h)
}

func (d *Document) addSchemaLocationElement(el *etree.Element) {
	if d.schemaLoc[el] {
		return
	}
	d.schemaLoc[el] = true
	d.SchemaLocationElements = append(d.SchemaLocationElements, el)
}

// indexIDs records every id-bearing element. Duplicates are reported and the
// last one wins.
func (d *Document) indexIDs() {
	if d.Root == nil {
		return
	}
	walk(d.Root, func(el *etree.Element) bool {
		id := elementID(el)
		if id == "" {
			return true
		}
		if prev, ok := d.IDObjects[id]; ok && prev != el {
			d.session.warnf(KindMisdeclared, "xml:duplicateId", el, "duplicate id %q in %s", id, d.BaseName())
		}
		d.IDObjects[id] = el
		return true
	})
}

// baseForElement returns the base URI for resolving relative references made
// by el, honoring xml:base unless a disclosure system prohibits it.
func (d *Document) baseForElement(el *etree.Element) string {
	base := ""
	for e := el; e != nil; e = e.Parent() {
		b, ok := attrValue(e, NsXML, "base")
		if !ok || b == "" {
			continue
		}
		if d.session.opts.ValidateDisclosureSystem {
			d.session.errorf(KindPolicyBlocked, "disclosureSystem:prohibitedBaseAttribute", e,
				"prohibited base attribute %q in file %s", b, d.BaseName())
			continue
		}
		if strings.HasPrefix(b, "/") || isAbsoluteURI(b) {
			base = b + base
			break
		}
		base = b + base
	}
	if d.XMLBase != "" && base == "" {
		base = d.XMLBase
	}
	if base == "" {
		return d.URI
	}
	if isAbsoluteURI(base) || filepath.IsAbs(base) {
		return base
	}
	if u, err := url.Parse(d.URI); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		ref, err := url.Parse(base)
		if err == nil {
			return u.ResolveReference(ref).String()
		}
	}
	return path.Join(parentDir(d.URI), base) + trailingSlash(base)
}

func trailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return "/"
	}
	return ""
}

func isAbsoluteURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && len(u.Scheme) > 1
}

// RelativeURI returns uri relative to this document's directory.
func (d *Document) RelativeURI(uri string) string {
	if isAbsoluteURI(uri) {
		return uri
	}
	rel, err := filepath.Rel(filepath.Dir(d.URI), uri)
	if err != nil {
		return uri
	}
	return filepath.ToSlash(rel)
}

// Save writes the document's XML tree.
func (d *Document) Save(w io.Writer) error {
	if d.XMLDocument == nil {
		if d.Text != nil {
			_, err := w.Write(d.Text)
			return err
		}
		return fmt.Errorf("failed to save %s: %w", d.URI, ErrNoRoot)
	}
	if _, err := d.XMLDocument.WriteTo(w); err != nil {
		return fmt.Errorf("failed to save %s: %w", d.URI, err)
	}
	return nil
}

func (d *Document) close(visited map[*Document]bool) {
	if visited[d] {
		return
	}
	visited[d] = true
	for _, to := range d.refOrder {
		to.close(visited)
	}
	if d.session != nil {
		for _, fn := range d.session.hooks.CustomCloser {
			fn(d)
		}
	}
	if d.FromDTS != nil {
		d.FromDTS.Close()
		d.FromDTS = nil
	}
	if d.ToDTS != nil {
		d.ToDTS.Close()
		d.ToDTS = nil
	}
	d.references = make(map[*Document]*Reference)
	d.refOrder = nil
	d.IDObjects = make(map[string]*etree.Element)
	d.HrefObjects = nil
	d.SchemaLocationElements = nil
	d.ReferencedNamespaces = make(map[string]bool)
	d.Links = nil
	d.Variations = nil
	d.RSSItems = nil
	d.XMLDocument = nil
	d.Root = nil
	d.TargetRoot = nil
	d.session = nil
}
