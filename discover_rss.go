package xbrl

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// RSSItem is one filing of an EDGAR XBRL RSS feed.
type RSSItem struct {
	Element *etree.Element

	Title              string
	Link               string
	CompanyName        string
	FormType           string
	CIK                string
	AccessionNumber    string
	FileNumber         string
	AssignedSIC        string
	FiscalYearEnd      string // MM-DD
	Period             string // YYYY-MM-DD
	FilingDate         time.Time
	AcceptanceDatetime time.Time
	PubDate            time.Time
	EnclosureURL       string
	Files              []RSSFile
}

// RSSFile is one edgar:xbrlFile of a feed item.
type RSSFile struct {
	Sequence    int
	File        string
	Type        string
	Size        int64
	Description string
	URL         string
	InlineXBRL  bool
}

// InstanceURL returns the URL of the XBRL instance of the filing: the
// inline document when the filing is inline, otherwise the .INS file.
func (it *RSSItem) InstanceURL() string {
	for _, f := range it.Files {
		if f.InlineXBRL {
			return f.URL
		}
	}
	for _, f := range it.Files {
		if strings.HasSuffix(f.Type, ".INS") {
			return f.URL
		}
	}
	return ""
}

// PrimaryDocumentURL returns the file whose type is the form type.
func (it *RSSItem) PrimaryDocumentURL() string {
	for _, f := range it.Files {
		if f.Type == it.FormType {
			return f.URL
		}
	}
	return ""
}

// ZippedURL returns the instance URL inside the filing's zip enclosure, or
// the plain instance URL without one.
func (it *RSSItem) ZippedURL() string {
	u := it.InstanceURL()
	if it.EnclosureURL == "" || u == "" {
		return u
	}
	return it.EnclosureURL + "/" + u[strings.LastIndex(u, "/")+1:]
}

// HTMLURLs returns the description and URL of every .htm file.
func (it *RSSItem) HTMLURLs() [][2]string {
	var out [][2]string
	for _, f := range it.Files {
		if strings.HasSuffix(f.File, ".htm") {
			out = append(out, [2]string{f.Description, f.URL})
		}
	}
	return out
}

// discoverRSSFeed records the items of the feed. The filings are not loaded.
func (s *Session) discoverRSSFeed(doc *Document) {
	root := doc.Root
	doc.RSSItems = nil
	if root == nil {
		return
	}
	for _, channel := range childElements(root) {
		if channel.Tag != "channel" {
			continue
		}
		for _, el := range childElements(channel) {
			if el.Tag == "item" {
				doc.RSSItems = append(doc.RSSItems, newRSSItem(el))
			}
		}
	}
}

func newRSSItem(el *etree.Element) *RSSItem {
	it := &RSSItem{Element: el}
	for _, c := range childElements(el) {
		switch {
		case c.Tag == "title" && elementNamespace(c) == "":
			it.Title = strings.TrimSpace(textContent(c))
		case c.Tag == "link" && elementNamespace(c) == "":
			it.Link = strings.TrimSpace(textContent(c))
		case c.Tag == "pubDate":
			it.PubDate = parseRFCDate(textContent(c))
		case c.Tag == "enclosure":
			it.EnclosureURL = attr(c, "url")
		}
	}

	filing := firstDescendant(el, NsEdgar, "xbrlFiling")
	if filing == nil {
		return it
	}
	text := func(local string) string {
		return strings.TrimSpace(textContent(firstDescendant(filing, NsEdgar, local)))
	}
	it.CompanyName = text("companyName")
	it.FormType = text("formType")
	it.CIK = text("cikNumber")
	it.AccessionNumber = text("accessionNumber")
	it.FileNumber = text("fileNumber")
	it.AssignedSIC = text("assignedSic")
	if per := text("period"); len(per) == 8 {
		it.Period = per[0:4] + "-" + per[4:6] + "-" + per[6:8]
	}
	if ye := text("fiscalYearEnd"); len(ye) == 4 {
		it.FiscalYearEnd = ye[0:2] + "-" + ye[2:4]
	}
	if t, err := time.Parse("01/02/2006", text("filingDate")); err == nil {
		it.FilingDate = t
	}
	if t, err := time.Parse("20060102150405", text("acceptanceDatetime")); err == nil {
		it.AcceptanceDatetime = t
	}

	for _, f := range descendants(filing) {
		if f.Tag != "xbrlFile" || elementNamespace(f) != NsEdgar {
			continue
		}
		file := RSSFile{
			File:        edgarAttr(f, "file"),
			Type:        edgarAttr(f, "type"),
			Description: edgarAttr(f, "description"),
			URL:         edgarAttr(f, "url"),
		}
		file.Sequence, _ = strconv.Atoi(edgarAttr(f, "sequence"))
		file.Size, _ = strconv.ParseInt(edgarAttr(f, "size"), 10, 64)
		file.InlineXBRL = isTrue(edgarAttr(f, "inlineXBRL"))
		it.Files = append(it.Files, file)
	}

	if it.AccessionNumber == "" || it.CIK == "" {
		for _, f := range it.Files {
			if cik, accession, ok := filingFromURL(f.URL); ok {
				if it.CIK == "" {
					it.CIK = cik
				}
				if it.AccessionNumber == "" {
					it.AccessionNumber = accession
				}
				break
			}
		}
	}
	return it
}

func edgarAttr(el *etree.Element, local string) string {
	v, _ := attrValue(el, NsEdgar, local)
	return strings.TrimSpace(v)
}

func firstDescendant(el *etree.Element, ns, local string) *etree.Element {
	for _, d := range descendants(el) {
		if d.Tag == local && elementNamespace(d) == ns {
			return d
		}
	}
	return nil
}

var edgarArchivePath = regexp.MustCompile(`/edgar/data/(\d+)/(\d+)/`)

// filingFromURL extracts the CIK and accession number from an EDGAR archive
// URL such as https://www.sec.gov/Archives/edgar/data/1631574/000119312525314736/x.htm.
func filingFromURL(url string) (cik, accession string, ok bool) {
	matches := edgarArchivePath.FindStringSubmatch(url)
	if len(matches) < 3 {
		return "", "", false
	}
	accession = matches[2]
	if len(accession) == 18 {
		// 0001193125-25-314736
		accession = accession[:10] + "-" + accession[10:12] + "-" + accession[12:]
	}
	return matches[1], accession, true
}

func parseRFCDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
