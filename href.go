package xbrl

import (
	"context"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// discoverHref resolves the xlink:href of el. It returns nil when el has no
// href; the caller decides how severe that is.
func (s *Session) discoverHref(ctx context.Context, doc *Document, el *etree.Element, nonDTS bool) *Href {
	href, ok := attrValue(el, NsXlink, "href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil
	}
	return s.resolveHref(ctx, doc, el, href, nonDTS)
}

// resolveHref loads the document named by href. A DTS reference records an
// href edge and brings the target into the DTS; nonDTS references only load
// it.
func (s *Session) resolveHref(ctx context.Context, doc *Document, el *etree.Element, href string, nonDTS bool) *Href {
	loc, fragment := splitFragment(strings.TrimSpace(href))
	h := Href{Element: el, Fragment: fragment}

	switch {
	case loc == "":
		h.Document = doc
	case s.opts.SkipDTS:
		h.Prototype = s.documentPrototype(doc, el, loc)
	default:
		if doc.Type.IsInstanceBearing() && hasQName(el, qnLinkSchemaRef) {
			loc = s.hooks.rewriteSchemaRef(doc, loc)
		}
		target := s.load(ctx, loc, LoadRequest{
			Base:             doc.baseForElement(el),
			ReferringElement: el,
			IsDiscovered:     !nonDTS,
		})
		h.Document = target
		if target != nil && !nonDTS {
			doc.addReference(target, RefHref, el)
			if !target.InDTS && !target.Type.IsUnknown() {
				target.InDTS = true
				if target.Type == Schema {
					s.discoverSchemaChildren(ctx, target)
				}
			}
		}
	}
	doc.addHref(h)
	return &h
}

func splitFragment(href string) (string, string) {
	i := strings.IndexByte(href, '#')
	if i < 0 {
		return href, ""
	}
	fragment := href[i+1:]
	if unescaped, err := url.PathUnescape(fragment); err == nil {
		fragment = unescaped
	}
	return href[:i], fragment
}

// documentPrototype returns the placeholder for a document that is not
// loaded because the DTS is skipped.
func (s *Session) documentPrototype(doc *Document, el *etree.Element, loc string) *DocumentPrototype {
	uri := s.resolver.NormalizeURL(loc, doc.baseForElement(el))
	if p, ok := s.prototypes[uri]; ok {
		return p
	}
	p := &DocumentPrototype{URI: uri, Type: UnknownXML}
	switch {
	case hasQName(el, qnLinkSchemaRef) || strings.HasSuffix(strings.ToLower(uri), ".xsd"):
		p.Type = Schema
	case hasQName(el, qnLinkLinkbaseRef):
		p.Type = Linkbase
	}
	s.prototypes[uri] = p
	return p
}

// DocumentPrototypes returns the placeholders created while the DTS was skipped.
func (s *Session) DocumentPrototypes() map[string]*DocumentPrototype {
	return s.prototypes
}
