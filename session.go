package xbrl

import (
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RxDataLab/go-xbrl/webcache"
)

// Session holds everything discovered from one entry point: the document
// registry, the DTS-wide indexes and, for instances, the facts. A session is
// not safe for concurrent use; independent sessions may run in parallel.
type Session struct {
	ID string

	opts      Options
	log       *zap.Logger
	resolver  Resolver
	parser    Parser
	validator Validator
	hooks     Hooks

	registry        *DocumentRegistry
	docByTree       map[*etree.Element]*Document
	nextObjectIndex int
	depth           int
	diags           Diagnostics

	// URI is the normalized entry point; uriDir bounds hrefs that are
	// always permitted under a disclosure system.
	URI    string
	uriDir string

	EntryDocument *Document

	BaseSets      *BaseSetIndex
	NamespaceDocs map[string][]*Document
	Concepts      map[QName]*Concept
	RoleTypes     map[string][]*RoleType
	ArcroleTypes  map[string][]*RoleType
	HasXDT        bool

	Contexts        map[string]*Context
	Units           map[string]*Unit
	Facts           []*Fact
	FactsInInstance []*Fact
	UndefinedFacts  []*Fact

	// Inline XBRL document set state.
	IxdsHTMLElements     []*etree.Element
	IxTargetRootElements map[string]*etree.Element
	IxTargetFacts        map[string][]*Fact
	TargetRelationships  []*etree.Element
	IxdsTarget           string
	IxdsTargets          []string
	PromotedFacts        []PromotedFact
	// FootnoteLinks are the links built from inline footnotes and relationships.
	FootnoteLinks []*LinkPrototype

	links          map[*etree.Element]*Link
	factByElement  map[*etree.Element]*Fact
	continuations  map[*etree.Element]*etree.Element
	prototypes     map[string]*DocumentPrototype
	pendingSchemas []*Document
	validated      map[*Document]bool
	deferredIxRes  []*etree.Element
	ixdsDocument   *Document
	ixdsMerged     int
	transforms     *TransformRegistry
	undefinedNoted int
}

// NewSession returns an empty session configured by opts.
func NewSession(opts Options) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		opts:     opts,
		registry: NewDocumentRegistry(),
		hooks:    opts.Hooks,
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s.log = logger.With(zap.String("session", s.ID))

	s.resolver = opts.Resolver
	if s.resolver == nil {
		s.resolver = webcache.New(webcache.Config{WorkOffline: true})
	}
	s.parser = opts.Parser
	if s.parser == nil {
		s.parser = XMLParser{}
	}
	s.validator = opts.Validator
	if s.validator == nil {
		s.validator = noValidation{}
	}
	s.transforms = NewTransformRegistry(opts.CustomTransforms)
	s.IxdsTarget = opts.IxdsTarget
	s.reset()
	return s
}

func (s *Session) reset() {
	s.docByTree = make(map[*etree.Element]*Document)
	s.BaseSets = NewBaseSetIndex()
	s.NamespaceDocs = make(map[string][]*Document)
	s.Concepts = make(map[QName]*Concept)
	s.RoleTypes = make(map[string][]*RoleType)
	s.ArcroleTypes = make(map[string][]*RoleType)
	s.Contexts = make(map[string]*Context)
	s.Units = make(map[string]*Unit)
	s.Facts = nil
	s.FactsInInstance = nil
	s.UndefinedFacts = nil
	s.IxdsHTMLElements = nil
	s.IxTargetRootElements = make(map[string]*etree.Element)
	s.IxTargetFacts = make(map[string][]*Fact)
	s.TargetRelationships = nil
	s.PromotedFacts = nil
	s.FootnoteLinks = nil
	s.links = make(map[*etree.Element]*Link)
	s.factByElement = make(map[*etree.Element]*Fact)
	s.continuations = make(map[*etree.Element]*etree.Element)
	s.prototypes = make(map[string]*DocumentPrototype)
	s.pendingSchemas = nil
	s.validated = make(map[*Document]bool)
	s.deferredIxRes = nil
	s.ixdsDocument = nil
	s.ixdsMerged = 0
}

// Registry returns the session's document registry.
func (s *Session) Registry() *DocumentRegistry {
	return s.registry
}

// Documents returns every loaded document in load order.
func (s *Session) Documents() []*Document {
	return s.registry.Documents()
}

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger {
	return s.log
}

// Options returns the configuration the session was created with.
func (s *Session) Options() Options {
	return s.opts
}

// FactForElement returns the fact discovered from el, if any.
func (s *Session) FactForElement(el *etree.Element) *Fact {
	return s.factByElement[el]
}

// LinkForElement returns the extended link discovered from el, if any.
func (s *Session) LinkForElement(el *etree.Element) *Link {
	return s.links[el]
}

// ContinuationOf returns the continuation element that el continues at.
func (s *Session) ContinuationOf(el *etree.Element) *etree.Element {
	return s.continuations[el]
}

// ContinuationChain follows continuedAt links from el. The chain never
// repeats an element.
func (s *Session) ContinuationChain(el *etree.Element) []*etree.Element {
	var chain []*etree.Element
	seen := map[*etree.Element]bool{el: true}
	for next := s.continuations[el]; next != nil && !seen[next]; next = s.continuations[next] {
		seen[next] = true
		chain = append(chain, next)
	}
	return chain
}

// documentOf returns the document whose tree contains el.
func (s *Session) documentOf(el *etree.Element) *Document {
	top := el
	for p := el.Parent(); p != nil; p = p.Parent() {
		top = p
	}
	return s.docByTree[top]
}

func (s *Session) setEntryURI(uri string) {
	if s.URI != "" {
		return
	}
	s.URI = uri
	s.uriDir = parentDir(uri)
	if s.opts.DisclosureSystem != nil {
		for i := 0; i < s.opts.DisclosureSystem.EntryNesting(); i++ {
			s.uriDir = parentDir(s.uriDir)
		}
	}
}

func (s *Session) addNamespaceDoc(ns string, doc *Document) {
	for _, d := range s.NamespaceDocs[ns] {
		if d == doc {
			return
		}
	}
	s.NamespaceDocs[ns] = append(s.NamespaceDocs[ns], doc)
}

func (s *Session) validate(el *etree.Element, targetNamespace string) {
	if el == nil {
		return
	}
	if err := s.validator.Validate(s, el, targetNamespace); err != nil {
		s.errorf(KindMisdeclared, "xmlSchema:valueError", el, "%v", err)
	}
}

// Close tears down every document, severing references between them, and
// then empties the registry.
func (s *Session) Close() {
	visited := make(map[*Document]bool)
	for _, d := range s.registry.Documents() {
		d.close(visited)
	}
	s.registry.clear()
	s.reset()
	s.EntryDocument = nil
}

func parentDir(uri string) string {
	uri = strings.TrimRight(uri, "/\\")
	if i := strings.LastIndexAny(uri, "/\\"); i >= 0 {
		return uri[:i]
	}
	return path.Dir(uri)
}
