package xbrl

import (
	"strings"

	"github.com/beevik/etree"
)

// lookupNamespace resolves prefix against the xmlns declarations in scope at el.
// The empty prefix resolves the default namespace.
func lookupNamespace(el *etree.Element, prefix string) (string, bool) {
	switch prefix {
	case "xml":
		return NsXML, true
	case "xmlns":
		return "http://www.w3.org/2000/xmlns/", true
	}
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value, true
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value, true
			}
		}
	}
	return "", prefix == ""
}

// elementNamespace returns the namespace URI of el.
func elementNamespace(el *etree.Element) string {
	ns, _ := lookupNamespace(el, el.Space)
	return ns
}

// attrNamespace returns the namespace URI of an attribute of el. Unprefixed
// attributes are in no namespace.
func attrNamespace(el *etree.Element, a etree.Attr) string {
	if a.Space == "" {
		return ""
	}
	ns, _ := lookupNamespace(el, a.Space)
	return ns
}

func isNamespaceDecl(a etree.Attr) bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns")
}

// attrValue returns the value of the attribute {ns}local on el.
func attrValue(el *etree.Element, ns, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Key != local || isNamespaceDecl(a) {
			continue
		}
		if attrNamespace(el, a) == ns {
			return a.Value, true
		}
	}
	return "", false
}

// attr returns the unqualified attribute local on el, or "".
func attr(el *etree.Element, local string) string {
	v, _ := attrValue(el, "", local)
	return v
}

func xlinkAttr(el *etree.Element, local string) string {
	v, _ := attrValue(el, NsXlink, local)
	return v
}

func setAttr(el *etree.Element, local, value string) {
	for i, a := range el.Attr {
		if a.Space == "" && a.Key == local {
			el.Attr[i].Value = value
			return
		}
	}
	el.CreateAttr(local, value)
}

// elementID returns the id of el, preferring the plain id attribute over xml:id.
func elementID(el *etree.Element) string {
	if id := attr(el, "id"); id != "" {
		return id
	}
	v, _ := attrValue(el, NsXML, "id")
	return v
}

// hasQName reports whether el has the expanded name q.
func hasQName(el *etree.Element, q QName) bool {
	return el != nil && el.Tag == q.Local && elementNamespace(el) == q.Space
}

// childElements returns the element children of el in document order.
func childElements(el *etree.Element) []*etree.Element {
	if el == nil {
		return nil
	}
	return el.ChildElements()
}

// walk visits el and all its descendant elements depth-first in document
// order. Returning false from fn skips the element's subtree.
func walk(el *etree.Element, fn func(*etree.Element) bool) {
	if el == nil || !fn(el) {
		return
	}
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}

// descendants returns every descendant of el (excluding el) in document order.
func descendants(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		walk(c, func(e *etree.Element) bool {
			out = append(out, e)
			return true
		})
	}
	return out
}

// textContent concatenates all character data beneath el.
func textContent(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				collect(t)
			}
		}
	}
	collect(el)
	return b.String()
}

// isAncestor reports whether anc is a proper ancestor of el.
func isAncestor(anc, el *etree.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p == anc {
			return true
		}
	}
	return false
}

// namespaceDeclarations returns the prefix bindings declared directly on el.
// The default namespace is keyed by "".
func namespaceDeclarations(el *etree.Element) map[string]string {
	out := make(map[string]string)
	for _, a := range el.Attr {
		switch {
		case a.Space == "xmlns":
			out[a.Key] = a.Value
		case a.Space == "" && a.Key == "xmlns":
			out[""] = a.Value
		}
	}
	return out
}

// inScopeNamespaces returns every prefix binding visible at el.
func inScopeNamespaces(el *etree.Element) map[string]string {
	var chain []*etree.Element
	for e := el; e != nil; e = e.Parent() {
		chain = append(chain, e)
	}
	out := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for p, ns := range namespaceDeclarations(chain[i]) {
			out[p] = ns
		}
	}
	return out
}

// elementPath renders the etree path of el for diagnostics.
func elementPath(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return el.GetPath()
}

// prefixedName returns the prefixed tag of el as written in the source.
func prefixedName(el *etree.Element) string {
	if el.Space == "" {
		return el.Tag
	}
	return el.Space + ":" + el.Tag
}
