package xbrl

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// XMLParser is the default Parser, building etree documents and decoding
// any declared charset.
type XMLParser struct{}

// Parse reads a complete XML document.
func (XMLParser) Parse(r io.Reader, uri string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", uri, ErrMalformedXML, err)
	}
	return doc, nil
}

var encodingDecl = regexp.MustCompile(`encoding\s*=\s*["']([A-Za-z0-9._\-]+)["']`)

// declaredEncoding returns the encoding named by the XML declaration of
// doc, or utf-8.
func declaredEncoding(doc *etree.Document) string {
	for _, tok := range doc.Child {
		pi, ok := tok.(*etree.ProcInst)
		if !ok || pi.Target != "xml" {
			continue
		}
		if m := encodingDecl.FindStringSubmatch(pi.Inst); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return "utf-8"
}

// looksLikeXML reports whether data starts, after whitespace and a byte
// order mark, with a tag.
func looksLikeXML(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '<'
}

// Identify classifies a document from a streaming scan of its start tags,
// without building a tree. It reaches the same verdict as Classify for an
// entry document and additionally reports plain HTML.
func Identify(r io.Reader) (Type, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	if !looksLikeXML(head) {
		return UnknownNonXML, nil
	}
	var buf bytes.Buffer
	t, err := identifyXML(io.TeeReader(br, &buf))
	if err == nil {
		return t, nil
	}
	// Not well-formed; fall back to a lenient HTML scan of everything read so far.
	return identifyHTML(io.MultiReader(&buf, br))
}

func identifyXML(r io.Reader) (Type, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity

	var root xml.StartElement
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return UnknownNonXML, nil
		}
		if err != nil {
			return UnknownXML, err
		}
		if se, ok := token.(xml.StartElement); ok {
			root = se
			break
		}
	}

	ns, ln := root.Name.Space, root.Name.Local
	switch {
	case ns == NsXsd && ln == "schema":
		return Schema, nil
	case ns == NsLink && ln == "linkbase":
		return Linkbase, nil
	case (ns == NsLink || ns == NsXbrli) && ln == "xbrl":
		return Instance, nil
	case (ns == NsVer || ns == NsVer10) && ln == "report":
		return VersioningReport, nil
	case ln == "testcases" || ln == "documentation" || ln == "testSuite" || ln == "registries":
		return TestcasesIndex, nil
	case ln == "testcase" || ln == "testSet":
		return Testcase, nil
	case ns == NsRegistry && ln == "registry":
		return Registry, nil
	case ns == NsXQTSCatalog && ln == "test-suite":
		return XPathTestSuite, nil
	case ln == "rss":
		return RSSFeed, nil
	case ln == "ptvl":
		return ArcsInfoset, nil
	case ln == "facts":
		return FactDimsInfoset, nil
	}

	isHTML := ns == NsXhtml && (ln == "html" || ln == "xhtml")
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return UnknownXML, err
		}
		if se, ok := token.(xml.StartElement); ok && IsInlineNamespace(se.Name.Space) {
			return InlineXBRL, nil
		}
	}
	if isHTML {
		return HTML, nil
	}
	return UnknownXML, nil
}

// identifyHTML scans tag names with the HTML tokenizer, which tolerates
// markup the XML decoder rejects. Inline tags are recognized by their ix
// prefix.
func identifyHTML(r io.Reader) (Type, error) {
	z := html.NewTokenizer(r)
	sawHTML := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				if sawHTML {
					return HTML, nil
				}
				return UnknownXML, nil
			}
			return UnknownXML, fmt.Errorf("failed to scan document: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := strings.ToLower(string(name))
			if strings.HasPrefix(tag, "ix:") {
				return InlineXBRL, nil
			}
			if tag == "html" || tag == "xhtml" {
				sawHTML = true
			}
		}
	}
}
