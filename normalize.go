package xbrl

import (
	"sort"
	"strings"
	"unicode"
)

// NormalizeSpace collapses a text value for comparison: Unicode spaces
// become plain spaces, invisible characters are dropped, runs of whitespace
// collapse to one space and the ends are trimmed.
func NormalizeSpace(text string) string {
	text = normalizeWhitespace(text)
	text = removeInvisibleChars(text)
	return strings.Join(strings.Fields(text), " ")
}

// normalizeWhitespace converts various Unicode whitespace characters to regular spaces
func normalizeWhitespace(text string) string {
	// U+00A0 (non-breaking space) is the most common issue
	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch r {
		case '\u00A0': // Non-breaking space (NBSP)
			result.WriteRune(' ')
		case '\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005': // En quad, Em quad, etc.
			result.WriteRune(' ')
		case '\u2006', '\u2007', '\u2008', '\u2009', '\u200A': // Figure space, etc.
			result.WriteRune(' ')
		case '\u202F', '\u205F', '\u3000':
			result.WriteRune(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// removeInvisibleChars removes zero-width and other invisible characters
func removeInvisibleChars(text string) string {
	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u180E':
			continue
		default:
			// Also skip other format characters
			if unicode.Is(unicode.Cf, r) {
				continue
			}
			result.WriteRune(r)
		}
	}

	return result.String()
}

// equivalentFacts reports whether two inline facts carry the same name,
// value and attributes once whitespace is normalized. The id is ignored.
func equivalentFacts(a, b *Fact) bool {
	if a.QName != b.QName || NormalizeSpace(a.Value()) != NormalizeSpace(b.Value()) {
		return false
	}
	return attributeSignature(a) == attributeSignature(b)
}

func attributeSignature(f *Fact) string {
	var parts []string
	for _, a := range f.Element.Attr {
		if isNamespaceDecl(a) || (a.Space == "" && a.Key == "id") {
			continue
		}
		ns := attrNamespace(f.Element, a)
		parts = append(parts, QName{Space: ns, Local: a.Key}.String()+"="+NormalizeSpace(a.Value))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}
