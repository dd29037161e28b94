package xbrl

import (
	"context"

	"github.com/beevik/etree"
)

// Hooks are extension points consulted during loading. Each field is an
// ordered list; unless noted otherwise the first hook that answers wins.
type Hooks struct {
	// IsPullLoadable claims a URI for the PullLoader hooks.
	IsPullLoadable []func(s *Session, uri string, req LoadRequest) bool
	// PullLoader produces a document for a claimed URI without fetching it.
	PullLoader []func(ctx context.Context, s *Session, uri string, req LoadRequest) *Document
	// CustomLoader may load a fetched local file that is not plain XML.
	CustomLoader []func(ctx context.Context, s *Session, uri, localPath string, req LoadRequest) *Document
	// IdentifyType classifies a root element the built-in rules leave unknown.
	IdentifyType []func(root *etree.Element) (Type, bool)
	// Discover claims the whole discovery of a document.
	Discover []func(ctx context.Context, doc *Document) bool
	// InstanceSchemaRefRewriter rewrites schemaRef hrefs of instances.
	InstanceSchemaRefRewriter []func(doc *Document, href string) string
	// SelectIxdsTarget may pick the active target of an inline set (all called).
	SelectIxdsTarget []func(s *Session, targets []string)
	// DiscoverIxdsDts decides whether the inline set's DTS is discovered (all called, AND-combined).
	DiscoverIxdsDts []func(s *Session) bool
	// IxdsTargetDiscovered is notified once the active target is assembled (all called).
	IxdsTargetDiscovered []func(s *Session, doc *Document)
	// CustomCloser runs on every document during Close (all called).
	CustomCloser []func(doc *Document)
}

func (h *Hooks) pullLoadable(s *Session, uri string, req LoadRequest) bool {
	for _, fn := range h.IsPullLoadable {
		if fn(s, uri, req) {
			return true
		}
	}
	return false
}

func (h *Hooks) pullLoad(ctx context.Context, s *Session, uri string, req LoadRequest) *Document {
	for _, fn := range h.PullLoader {
		if doc := fn(ctx, s, uri, req); doc != nil {
			return doc
		}
	}
	return nil
}

func (h *Hooks) customLoad(ctx context.Context, s *Session, uri, localPath string, req LoadRequest) *Document {
	for _, fn := range h.CustomLoader {
		if doc := fn(ctx, s, uri, localPath, req); doc != nil {
			return doc
		}
	}
	return nil
}

func (h *Hooks) identify(root *etree.Element) (Type, bool) {
	for _, fn := range h.IdentifyType {
		if t, ok := fn(root); ok {
			return t, true
		}
	}
	return UnknownXML, false
}

func (h *Hooks) discover(ctx context.Context, doc *Document) bool {
	for _, fn := range h.Discover {
		if fn(ctx, doc) {
			return true
		}
	}
	return false
}

func (h *Hooks) rewriteSchemaRef(doc *Document, href string) string {
	for _, fn := range h.InstanceSchemaRefRewriter {
		if rewritten := fn(doc, href); rewritten != "" && rewritten != href {
			return rewritten
		}
	}
	return href
}

func (h *Hooks) discoverIxdsDts(s *Session) bool {
	ok := true
	for _, fn := range h.DiscoverIxdsDts {
		if !fn(s) {
			ok = false
		}
	}
	return ok
}
