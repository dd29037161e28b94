package xbrl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Load loads uri and, recursively, every document it references. The
// returned document is cached: loading the same URI again in this session
// returns the same *Document.
//
// A nil document with a nil error means the document could not be loaded
// and the reason is in Diagnostics. An error is returned when an entry
// point fails to load or when AbortOnMajorError stopped the load.
func (s *Session) Load(ctx context.Context, uri string, req LoadRequest) (doc *Document, err error) {
	defer recoverLoading(&err)

	doc = s.load(ctx, uri, req)
	if doc == nil && req.IsEntry {
		return nil, fmt.Errorf("failed to load %s: %w", uri, ErrNotLoadable)
	}
	if doc != nil && req.IsEntry && s.EntryDocument == nil {
		s.EntryDocument = doc
	}
	return doc, nil
}

// load wraps loadDocument with the entry-point finalization that runs once
// the outermost call completes.
func (s *Session) load(ctx context.Context, uri string, req LoadRequest) *Document {
	s.depth++
	defer func() { s.depth-- }()

	doc := s.loadDocument(ctx, uri, req)
	if s.depth == 1 {
		s.finalize(ctx)
	}
	return doc
}

func (s *Session) loadDocument(ctx context.Context, uri string, req LoadRequest) *Document {
	normalized := s.resolver.NormalizeURL(uri, req.Base)
	if normalized == "" {
		s.errorf(KindUnfetchable, "FileNotLoadable", req.ReferringElement, "file can not be loaded: %q", uri)
		return nil
	}
	if req.IsEntry {
		s.setEntryURI(normalized)
	}

	if doc := s.registry.Get(normalized); doc != nil {
		return doc
	}
	if s.registry.IsKnownUnloadable(normalized) {
		if !req.ReloadCache || s.registry.isPermanentlyUnloadable(normalized) {
			return nil
		}
		s.registry.forget(normalized)
	}
	if !s.hrefPermitted(normalized, req) {
		return nil
	}

	if s.hooks.pullLoadable(s, normalized, req) {
		if doc := s.hooks.pullLoad(ctx, s, normalized, req); doc != nil {
			s.registry.Put(normalized, doc)
			return doc
		}
	}

	mapped := s.mapURI(normalized)
	s.log.Debug("loading document", zap.String("uri", normalized), zap.String("mapped", mapped))

	var (
		localPath string
		data      []byte
		fetchErr  error
	)
	ok := s.guard(normalized, req.ReferringElement, func() {
		localPath, data, fetchErr = s.fetch(ctx, mapped, req.ReloadCache)
	})
	if !ok {
		return nil
	}
	if fetchErr != nil {
		return s.fetchFailed(ctx, normalized, req, fetchErr)
	}

	if doc := s.hooks.customLoad(ctx, s, normalized, localPath, req); doc != nil {
		s.registry.Put(normalized, doc)
		return doc
	}

	var (
		xmlDoc   *etree.Document
		parseErr error
	)
	ok = s.guard(normalized, req.ReferringElement, func() {
		xmlDoc, parseErr = s.parser.Parse(bytes.NewReader(data), normalized)
		if parseErr == nil && xmlDoc.Root() == nil {
			parseErr = ErrNoRoot
		}
	})
	if !ok {
		return nil
	}
	if parseErr != nil {
		if !req.IsEntry && !looksLikeXML(data) {
			doc := s.newDocument(UnknownNonXML, normalized, localPath, nil)
			doc.Text = data
			s.registry.Put(normalized, doc)
			return doc
		}
		s.errorf(KindMalformedXML, "xmlSyntax", req.ReferringElement, "%s: import error: %v", baseName(normalized), parseErr)
		s.registry.MarkUnloadable(normalized, true)
		if s.opts.AbortOnMajorError && (req.IsEntry || req.IsDiscovered) {
			abortLoading(normalized, "xmlSyntax", parseErr)
		}
		return nil
	}

	typ, root := Classify(xmlDoc.Root(), ClassifyContext{
		IsEntry:        req.IsEntry,
		IsDiscovered:   req.IsDiscovered,
		IsSupplemental: req.IsSupplemental,
	}, s.hooks.IdentifyType...)

	if typ == Schema && !req.IsEntry && !req.IsIncluded {
		if dup := s.duplicateSchema(attr(root, "targetNamespace"), normalized); dup != nil {
			s.infof("xbrl:duplicateSchema", req.ReferringElement,
				"schema %s has the namespace and file name of %s, which is used instead", normalized, dup.URI)
			s.registry.Alias(normalized, dup)
			return dup
		}
	}

	doc := s.newDocument(typ, normalized, localPath, xmlDoc)
	doc.Root = root
	doc.Encoding = declaredEncoding(xmlDoc)
	doc.InDTS = req.IsEntry || req.IsDiscovered
	s.registry.Put(normalized, doc)
	if req.IsEntry && s.EntryDocument == nil {
		s.EntryDocument = doc
	}
	doc.addSchemaLocationElement(root)
	doc.indexIDs()

	s.discover(ctx, doc, req)
	return doc
}

// hrefPermitted applies the disclosure system's href policy. Documents under
// the entry point's directory are always permitted.
func (s *Session) hrefPermitted(uri string, req LoadRequest) bool {
	ds := s.opts.DisclosureSystem
	if !s.opts.ValidateDisclosureSystem || ds == nil {
		return true
	}
	if s.uriDir != "" && strings.HasPrefix(uri, s.uriDir) {
		return true
	}
	if ds.HrefValid(uri) {
		return true
	}
	if ds.BlocksDisallowedReferences() {
		s.errorf(KindPolicyBlocked, "disclosureSystem:prohibitedFile", req.ReferringElement,
			"prohibited file for filings, blocked: %s", uri)
		s.registry.MarkUnloadable(uri, true)
		return false
	}
	s.warnf(KindPolicyBlocked, "disclosureSystem:prohibitedFile", req.ReferringElement,
		"prohibited file for filings: %s", uri)
	return true
}

// mapURI applies package, session and disclosure system mappings in that order.
func (s *Session) mapURI(uri string) string {
	var ds URIMapper
	if s.opts.DisclosureSystem != nil {
		ds = s.opts.DisclosureSystem
	}
	for _, m := range []URIMapper{s.opts.PackageMappings, s.opts.SessionMappings, ds} {
		if m != nil && m.IsMapped(uri) {
			return m.MappedURI(uri)
		}
	}
	return uri
}

func (s *Session) fetch(ctx context.Context, uri string, reload bool) (string, []byte, error) {
	localPath := uri
	if !s.resolver.IsArchiveMember(uri) {
		p, err := s.resolver.GetLocalPath(ctx, uri, reload)
		if err != nil {
			return "", nil, err
		}
		localPath = p
	}
	rc, err := s.resolver.Open(localPath)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	return localPath, data, nil
}

// fetchFailed reports an unfetchable document. A standard schema that cannot
// be fetched from where it was referenced is retried once at its canonical
// location.
func (s *Session) fetchFailed(ctx context.Context, uri string, req LoadRequest, err error) *Document {
	if canonical, ok := standardRetryLocation(uri, req.Namespace); ok {
		s.registry.MarkUnloadable(uri, false)
		s.warnf(KindUnfetchable, "FileNotLoadable", req.ReferringElement,
			"file can not be loaded: %s, retrying at %s", uri, canonical)
		retry := req
		retry.Base = ""
		doc := s.loadDocument(ctx, canonical, retry)
		if doc != nil {
			s.registry.Alias(uri, doc)
		}
		return doc
	}
	s.errorf(KindUnfetchable, "FileNotLoadable", req.ReferringElement, "file can not be loaded: %s: %v", uri, err)
	s.registry.MarkUnloadable(uri, true)
	if s.opts.AbortOnMajorError && (req.IsEntry || req.IsDiscovered) {
		abortLoading(uri, "FileNotLoadable", err)
	}
	return nil
}

func standardRetryLocation(uri, namespace string) (string, bool) {
	if namespace != "" {
		if loc, ok := StandardSchemaLocation(namespace); ok {
			return loc, loc != uri
		}
	}
	if ns, ok := isStandardSchemaLocation(uri); ok {
		loc, _ := StandardSchemaLocation(ns)
		return loc, loc != uri
	}
	return "", false
}

// guard runs fn, turning an unexpected panic into an internal diagnostic and
// marking uri unloadable. LoadingError panics pass through.
func (s *Session) guard(uri string, el *etree.Element, fn func()) (ok bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if le, isAbort := r.(*LoadingError); isAbort {
			panic(le)
		}
		s.errorf(KindInternal, "xbrl:loadingException", el, "%s: unexpected %T while loading: %v", uri, r, r)
		s.registry.MarkUnloadable(uri, true)
		ok = false
	}()
	fn()
	return true
}

// duplicateSchema returns an already loaded schema with the same target
// namespace and file name as uri, reached under a different path.
func (s *Session) duplicateSchema(namespace, uri string) *Document {
	if namespace == "" {
		return nil
	}
	name := baseName(uri)
	for _, d := range s.NamespaceDocs[namespace] {
		if d.Type == Schema && d.URI != uri && baseName(d.URI) == name {
			return d
		}
	}
	return nil
}

// discover runs the type-specific discovery of doc unless a hook claims it.
func (s *Session) discover(ctx context.Context, doc *Document, req LoadRequest) {
	if s.hooks.discover(ctx, doc) {
		return
	}
	switch doc.Type {
	case Schema:
		s.discoverSchema(ctx, doc, req.IsIncluded, req.Namespace)
	case Linkbase:
		s.discoverLinkbase(ctx, doc, doc.Root, false)
	case Instance:
		s.discoverInstance(ctx, doc)
	case InlineXBRL:
		s.discoverInline(ctx, doc)
	case VersioningReport:
		s.discoverVersioningReport(ctx, doc)
	case TestcasesIndex:
		s.discoverTestcasesIndex(ctx, doc)
	case Testcase, RegistryTestcase:
		s.discoverTestcase(doc)
	case Registry:
		s.discoverRegistry(ctx, doc)
	case RSSFeed:
		s.discoverRSSFeed(doc)
	case UnknownXML, UnknownNonXML, DTSEntries, InlineXBRLDocumentSet,
		XPathTestSuite, ArcsInfoset, FactDimsInfoset, HTML:
	}
}

// finalize runs once the outermost load returns: the inline document set
// merge, deferred schema validation and the base set ordering.
func (s *Session) finalize(ctx context.Context) {
	if len(s.IxdsHTMLElements) > 0 && s.ixdsMerged == 0 {
		logical := s.ixdsDocument
		if logical == nil {
			logical = s.EntryDocument
		}
		if logical == nil {
			logical = s.documentOf(s.IxdsHTMLElements[0])
		}
		s.ixdsMerged = len(s.IxdsHTMLElements)
		s.mergeInlineDocumentSet(ctx, logical)
	}

	s.validatePendingSchemas()
	for _, el := range s.deferredIxRes {
		s.validate(el, "")
	}
	s.deferredIxRes = nil
	s.BaseSets.Sort()
}

// validatePendingSchemas validates each queued schema together with the
// schemas it includes, which share its namespace.
func (s *Session) validatePendingSchemas() {
	for len(s.pendingSchemas) > 0 {
		doc := s.pendingSchemas[0]
		s.pendingSchemas = s.pendingSchemas[1:]
		if s.validated[doc] || doc.Root == nil {
			continue
		}
		s.validated[doc] = true
		s.validate(doc.Root, doc.TargetNamespace)
		for _, ref := range doc.References() {
			inc := ref.Document
			if ref.HasKind(RefInclude) && !s.validated[inc] && inc.Root != nil {
				s.validated[inc] = true
				s.validate(inc.Root, doc.TargetNamespace)
			}
		}
	}
}

// Create builds a document in memory and discovers it like a loaded one.
// Instances get an xbrli:xbrl root carrying schemaRefs, schemas an empty
// xs:schema and RSS feeds an empty rss element; entry point sets and inline
// document sets have no XML. initialXML, when given, replaces the generated
// tree.
func (s *Session) Create(ctx context.Context, typ Type, uri string, schemaRefs []string, isEntry bool, initialXML string) (doc *Document, err error) {
	defer recoverLoading(&err)

	normalized := s.resolver.NormalizeURL(uri, "")
	if normalized == "" {
		return nil, fmt.Errorf("failed to create %q: %w", uri, ErrNotLoadable)
	}
	if isEntry {
		s.setEntryURI(normalized)
	}

	var xmlDoc *etree.Document
	if initialXML != "" {
		xmlDoc, err = s.parser.Parse(strings.NewReader(initialXML), normalized)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", normalized, err)
		}
	} else {
		xmlDoc = skeleton(typ, schemaRefs)
		if xmlDoc == nil && typ != DTSEntries && typ != InlineXBRLDocumentSet {
			typ = UnknownXML
		}
	}

	s.depth++
	defer func() { s.depth-- }()

	doc = s.newDocument(typ, normalized, "", xmlDoc)
	doc.InDTS = isEntry
	s.registry.Put(normalized, doc)
	if isEntry && s.EntryDocument == nil {
		s.EntryDocument = doc
	}
	if doc.Root != nil {
		doc.addSchemaLocationElement(doc.Root)
		doc.indexIDs()
	}
	switch typ {
	case Instance:
		s.discoverInstance(ctx, doc)
	case Schema:
		s.discoverSchema(ctx, doc, false, "")
	case RSSFeed:
		s.discoverRSSFeed(doc)
	case InlineXBRLDocumentSet:
		s.ixdsDocument = doc
	}
	if s.depth == 1 {
		s.finalize(ctx)
	}
	return doc, nil
}

func skeleton(typ Type, schemaRefs []string) *etree.Document {
	xmlDoc := etree.NewDocument()
	switch typ {
	case Instance:
		root := xmlDoc.CreateElement("xbrl")
		root.CreateAttr("xmlns", NsXbrli)
		root.CreateAttr("xmlns:link", NsLink)
		root.CreateAttr("xmlns:xlink", NsXlink)
		for _, ref := range schemaRefs {
			sr := root.CreateElement("link:schemaRef")
			sr.CreateAttr("xlink:type", "simple")
			sr.CreateAttr("xlink:href", strings.ReplaceAll(ref, "\\", "/"))
		}
	case Schema:
		root := xmlDoc.CreateElement("schema")
		root.CreateAttr("xmlns", NsXsd)
	case RSSFeed:
		root := xmlDoc.CreateElement("rss")
		root.CreateAttr("version", "2.0")
	default:
		return nil
	}
	return xmlDoc
}

// LoadInlineDocumentSet loads several inline XBRL documents as one document
// set. The returned document stands for the set: it references every member
// and, after the merge, its TargetRoot is the root of the active target.
func (s *Session) LoadInlineDocumentSet(ctx context.Context, uris []string) (doc *Document, err error) {
	defer recoverLoading(&err)

	if len(uris) == 0 {
		return nil, fmt.Errorf("empty inline document set: %w", ErrNotLoadable)
	}
	first := s.resolver.NormalizeURL(uris[0], "")
	if first == "" {
		return nil, fmt.Errorf("failed to load %q: %w", uris[0], ErrNotLoadable)
	}
	setURI := parentDir(first) + "/_IXDS"
	s.setEntryURI(setURI)

	s.depth++
	defer func() { s.depth-- }()

	doc = s.newDocument(InlineXBRLDocumentSet, setURI, "", nil)
	doc.InDTS = true
	s.registry.Put(setURI, doc)
	if s.EntryDocument == nil {
		s.EntryDocument = doc
	}
	s.ixdsDocument = doc

	for _, u := range uris {
		member := s.load(ctx, u, LoadRequest{IsDiscovered: true})
		if member == nil {
			continue
		}
		doc.addReference(member, RefInlineDocument, nil)
		if member.Type != InlineXBRL {
			s.warnf(KindMisdeclared, "ix:nonInlineDocument", member.Root,
				"%s is not an inline XBRL document", member.BaseName())
			continue
		}
		if doc.Root == nil {
			doc.Root = member.Root
		}
	}
	if s.depth == 1 {
		s.finalize(ctx)
	}
	return doc, nil
}
