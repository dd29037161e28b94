package main

import (
	"sort"

	xbrl "github.com/RxDataLab/go-xbrl"
)

// Summary is the JSON report of one load.
type Summary struct {
	URI         string              `json:"uri"`
	Type        xbrl.Type           `json:"type"`
	Documents   []DocumentSummary   `json:"documents,omitempty"`
	Concepts    int                 `json:"concepts"`
	RoleTypes   int                 `json:"roleTypes"`
	BaseSets    int                 `json:"baseSets"`
	Contexts    int                 `json:"contexts"`
	Units       int                 `json:"units"`
	Facts       int                 `json:"facts"`
	IxdsTargets []string            `json:"ixdsTargets,omitempty"`
	IxdsTarget  string              `json:"ixdsTarget,omitempty"`
	Promoted    []xbrl.PromotedFact `json:"promotedFacts,omitempty"`
	Variations  int                 `json:"variations,omitempty"`
	RSSItems    int                 `json:"rssItems,omitempty"`
	Diagnostics []DiagnosticSummary `json:"diagnostics,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// DocumentSummary describes one loaded document.
type DocumentSummary struct {
	URI        string              `json:"uri"`
	Type       xbrl.Type           `json:"type"`
	InDTS      bool                `json:"inDTS"`
	References map[string][]string `json:"references,omitempty"`
}

// DiagnosticSummary is the JSON form of a diagnostic.
type DiagnosticSummary struct {
	Level   string `json:"level"`
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	URI     string `json:"uri,omitempty"`
	Element string `json:"element,omitempty"`
}

func summarizeResult(r *xbrl.BatchResult) *Summary {
	var summary *Summary
	if r.Session != nil {
		summary = summarizeSession(r.URI, r.Session, r.Session.EntryDocument)
	} else {
		summary = &Summary{
			URI:         r.URI,
			Type:        r.Type,
			Concepts:    r.Concepts,
			BaseSets:    r.BaseSets,
			Facts:       r.Facts,
			Diagnostics: summarizeDiagnostics(r.Diagnostics),
		}
	}
	if r.Err != nil {
		summary.Error = r.Err.Error()
	}
	return summary
}

func summarizeSession(uri string, s *xbrl.Session, entry *xbrl.Document) *Summary {
	summary := &Summary{
		URI:         uri,
		Concepts:    len(s.Concepts),
		BaseSets:    s.BaseSets.Len(),
		Contexts:    len(s.Contexts),
		Units:       len(s.Units),
		Facts:       len(s.Facts),
		IxdsTargets: s.IxdsTargets,
		IxdsTarget:  s.IxdsTarget,
		Promoted:    s.PromotedFacts,
		Diagnostics: summarizeDiagnostics(s.Diagnostics()),
	}
	for _, roles := range s.RoleTypes {
		summary.RoleTypes += len(roles)
	}
	if entry != nil {
		summary.Type = entry.Type
		summary.Variations = len(entry.Variations)
		summary.RSSItems = len(entry.RSSItems)
	}
	for _, doc := range s.Documents() {
		ds := DocumentSummary{URI: doc.URI, Type: doc.Type, InDTS: doc.InDTS}
		for _, ref := range doc.References() {
			if ds.References == nil {
				ds.References = make(map[string][]string)
			}
			for _, kind := range ref.Kinds {
				ds.References[kind] = append(ds.References[kind], ref.Document.URI)
			}
		}
		for _, uris := range ds.References {
			sort.Strings(uris)
		}
		summary.Documents = append(summary.Documents, ds)
	}
	return summary
}

func summarizeDiagnostics(diags xbrl.Diagnostics) []DiagnosticSummary {
	out := make([]DiagnosticSummary, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticSummary{
			Level:   d.Level.String(),
			Kind:    d.Kind.String(),
			Code:    d.Code,
			Message: d.Message,
			URI:     d.URI,
			Element: d.Element,
		})
	}
	return out
}
