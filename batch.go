package xbrl

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchOptions configures a batch load
type BatchOptions struct {
	EntryPoints  []string   // Required: entry point URIs, one session each
	InlineSets   [][]string // Optional: inline document sets, one session each
	Options      Options    // Session configuration shared by every load
	Concurrency  int        // Optional: sessions loaded at once, default 4
	KeepSessions bool       // If false, each session is closed once summarized
}

// BatchResult is the outcome of one entry point or inline document set
type BatchResult struct {
	URI         string
	Session     *Session // nil unless KeepSessions
	Type        Type
	Documents   int
	Concepts    int
	Facts       int
	BaseSets    int
	Diagnostics Diagnostics
	Err         error
}

// LoadBatch loads independent entry points concurrently. Sessions share
// nothing but the configured resolver and logger. Results keep the order
// of EntryPoints followed by InlineSets; per-entry failures are reported in
// BatchResult.Err.
func LoadBatch(ctx context.Context, opts BatchOptions) ([]*BatchResult, error) {
	if len(opts.EntryPoints) == 0 && len(opts.InlineSets) == 0 {
		return nil, fmt.Errorf("EntryPoints or InlineSets is required")
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}
	logger := opts.Options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]*BatchResult, len(opts.EntryPoints)+len(opts.InlineSets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, uri := range opts.EntryPoints {
		g.Go(func() error {
			results[i] = runBatchEntry(gctx, opts, uri, func(s *Session) (*Document, error) {
				return s.Load(gctx, uri, LoadRequest{IsEntry: true})
			})
			return nil
		})
	}
	for j, uris := range opts.InlineSets {
		i := len(opts.EntryPoints) + j
		name := fmt.Sprintf("ixds[%d]", j)
		if len(uris) > 0 {
			name = uris[0]
		}
		g.Go(func() error {
			results[i] = runBatchEntry(gctx, opts, name, func(s *Session) (*Document, error) {
				return s.LoadInlineDocumentSet(gctx, uris)
			})
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("batch load finished", zap.Int("entries", len(results)), zap.Int("failed", failed))
	return results, ctx.Err()
}

func runBatchEntry(ctx context.Context, opts BatchOptions, uri string, load func(*Session) (*Document, error)) *BatchResult {
	result := &BatchResult{URI: uri}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}
	s := NewSession(opts.Options)
	doc, err := load(s)
	if err != nil {
		result.Err = fmt.Errorf("failed to load %s: %w", uri, err)
	}
	if doc != nil {
		result.Type = doc.Type
	}
	result.Documents = s.Registry().Len()
	result.Concepts = len(s.Concepts)
	result.Facts = len(s.Facts)
	result.BaseSets = s.BaseSets.Len()
	result.Diagnostics = s.Diagnostics()

	if opts.KeepSessions {
		result.Session = s
	} else {
		s.Close()
	}
	return result
}
