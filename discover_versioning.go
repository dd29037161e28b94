package xbrl

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// discoverVersioningReport loads the from and to DTSes of a versioning
// report, each into its own session owned by the report document.
func (s *Session) discoverVersioningReport(ctx context.Context, doc *Document) {
	root := doc.Root
	if root == nil {
		return
	}
	s.validate(root, "")
	for _, el := range descendants(root) {
		ns := elementNamespace(el)
		if ns != NsVer && ns != NsVer10 {
			continue
		}
		switch {
		case el.Tag == "fromDTS" && doc.FromDTS == nil:
			doc.FromDTS = s.loadVersionedDTS(ctx, doc, el)
		case el.Tag == "toDTS" && doc.ToDTS == nil:
			doc.ToDTS = s.loadVersionedDTS(ctx, doc, el)
		}
	}
}

// loadVersionedDTS loads the DTS that a fromDTS or toDTS element names. A
// single schemaRef is loaded as the entry; several refs are gathered under a
// synthetic entry point set.
func (s *Session) loadVersionedDTS(ctx context.Context, doc *Document, el *etree.Element) *Session {
	var refs []*etree.Element
	for _, c := range childElements(el) {
		if (hasQName(c, qnLinkSchemaRef) || hasQName(c, qnLinkLinkbaseRef)) && strings.TrimSpace(xlinkAttr(c, "href")) != "" {
			refs = append(refs, c)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	child := NewSession(s.opts)
	s.log.Debug("loading versioned DTS",
		zap.String("report", doc.URI), zap.String("dts", el.Tag), zap.String("child", child.ID))

	if len(refs) == 1 && hasQName(refs[0], qnLinkSchemaRef) {
		href := strings.TrimSpace(xlinkAttr(refs[0], "href"))
		if _, err := child.Load(ctx, href, LoadRequest{Base: doc.baseForElement(refs[0]), IsEntry: true}); err != nil {
			s.errorf(KindUnfetchable, "FileNotLoadable", refs[0], "%s of %s: %v", el.Tag, doc.BaseName(), err)
		}
		return child
	}

	uri := strings.TrimSuffix(doc.URI, ".xml") + "-" + el.Tag + ".dts"
	entries, err := child.Create(ctx, DTSEntries, uri, nil, true, "")
	if err != nil {
		s.errorf(KindInternal, "FileNotLoadable", el, "%s of %s: %v", el.Tag, doc.BaseName(), err)
		return child
	}
	entries.InDTS = true
	for _, ref := range refs {
		href := strings.TrimSpace(xlinkAttr(ref, "href"))
		loaded, err := child.Load(ctx, href, LoadRequest{Base: doc.baseForElement(ref), IsDiscovered: true})
		if err != nil || loaded == nil {
			continue
		}
		loaded.InDTS = true
		entries.addReference(loaded, RefImport, ref)
	}
	return child
}
