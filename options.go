package xbrl

import (
	"context"
	"io"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Resolver normalizes URIs and provides local copies of remote documents.
// webcache.Cache is the standard implementation.
type Resolver interface {
	NormalizeURL(uri, base string) string
	GetLocalPath(ctx context.Context, uri string, reload bool) (string, error)
	IsArchiveMember(uri string) bool
	Open(path string) (io.ReadCloser, error)
}

// Parser builds an XML tree from a byte stream.
type Parser interface {
	Parse(r io.Reader, uri string) (*etree.Document, error)
}

// Validator performs schema (PSVI) validation of an element. Errors are
// recorded as diagnostics; discovery continues regardless.
type Validator interface {
	Validate(s *Session, el *etree.Element, targetNamespace string) error
}

// URIMapper remaps URIs before fetching. mapping.Table implements it.
type URIMapper interface {
	IsMapped(uri string) bool
	MappedURI(uri string) string
}

// DisclosurePolicy restricts the documents a filing may reference.
// disclosure.System implements it.
type DisclosurePolicy interface {
	URIMapper
	HrefValid(uri string) bool
	BlocksDisallowedReferences() bool
	DisallowedHrefOfNamespace(href, namespace string) bool
	EntryNesting() int
}

// Options configures a Session.
type Options struct {
	Resolver  Resolver  // defaults to an offline webcache.Cache
	Parser    Parser    // defaults to the etree parser
	Validator Validator // defaults to no validation
	Logger    *zap.Logger

	PackageMappings URIMapper
	SessionMappings URIMapper

	DisclosureSystem         DisclosurePolicy
	ValidateDisclosureSystem bool

	// AbortOnMajorError turns fetch and parse failures of entry or
	// discovered documents into a LoadingError.
	AbortOnMajorError bool

	// SkipDTS replaces href targets by lightweight document prototypes.
	SkipDTS bool

	// ValidateTestcaseSchema asks the Validator to check testcase documents.
	ValidateTestcaseSchema bool

	// IxdsTarget selects the embedded report of an inline document set.
	// The empty string selects the default, unlabeled target.
	IxdsTarget         string
	IxdsLoadAllTargets bool

	// CustomTransforms adds transform names beyond the registered ixt namespaces.
	CustomTransforms map[QName]bool

	Hooks Hooks
}

// LoadRequest carries the per-call flags of a load.
type LoadRequest struct {
	Base             string
	ReferringElement *etree.Element
	IsEntry          bool
	IsDiscovered     bool
	IsIncluded       bool
	IsSupplemental   bool
	Namespace        string
	ReloadCache      bool
}
