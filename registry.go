package xbrl

// DocumentRegistry maps normalized URIs to loaded documents for one session and
// remembers URIs that failed to load. A document is put into the registry
// before its discovery recurses, which is what stops import cycles.
type DocumentRegistry struct {
	docs       map[string]*Document
	order      []*Document
	seen       map[*Document]bool
	unloadable map[string]bool // value is the permanent flag
}

// NewDocumentRegistry returns an empty registry.
func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{
		docs:       make(map[string]*Document),
		seen:       make(map[*Document]bool),
		unloadable: make(map[string]bool),
	}
}

// Get returns the document registered for uri, or nil.
func (r *DocumentRegistry) Get(uri string) *Document {
	return r.docs[uri]
}

// Put registers doc under uri.
func (r *DocumentRegistry) Put(uri string, doc *Document) {
	if !r.seen[doc] {
		r.seen[doc] = true
		r.order = append(r.order, doc)
	}
	r.docs[uri] = doc
	delete(r.unloadable, uri)
}

// Alias registers an additional uri for an already registered document.
func (r *DocumentRegistry) Alias(uri string, doc *Document) {
	r.docs[uri] = doc
}

// MarkUnloadable records that uri could not be loaded. Transient marks are
// forgotten when a later load asks to reload the cache.
func (r *DocumentRegistry) MarkUnloadable(uri string, permanent bool) {
	if uri == "" {
		return
	}
	if r.unloadable[uri] {
		return
	}
	r.unloadable[uri] = permanent
}

// IsKnownUnloadable reports whether uri previously failed to load.
func (r *DocumentRegistry) IsKnownUnloadable(uri string) bool {
	_, ok := r.unloadable[uri]
	return ok
}

func (r *DocumentRegistry) isPermanentlyUnloadable(uri string) bool {
	return r.unloadable[uri]
}

func (r *DocumentRegistry) forget(uri string) {
	delete(r.unloadable, uri)
}

// Documents returns each registered document once, in registration order.
func (r *DocumentRegistry) Documents() []*Document {
	out := make([]*Document, len(r.order))
	copy(out, r.order)
	return out
}

// URIs returns every registered URI, aliases included.
func (r *DocumentRegistry) URIs() []string {
	out := make([]string, 0, len(r.docs))
	for u := range r.docs {
		out = append(out, u)
	}
	return out
}

// Len returns the number of distinct documents.
func (r *DocumentRegistry) Len() int {
	return len(r.order)
}

func (r *DocumentRegistry) clear() {
	r.docs = make(map[string]*Document)
	r.order = nil
	r.seen = make(map[*Document]bool)
	r.unloadable = make(map[string]bool)
}
