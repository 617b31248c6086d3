package cache

import (
	"context"
	"strings"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/logger"
)

// Fetcher serves targets from a Store and falls back to the wrapped fetcher
// on a miss. Only OutcomeOK results are stored.
type Fetcher struct {
	next     gcp.TargetFetcher
	store    *Store
	runID    string
	endpoint string
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithEndpoint scopes entries to the base URL next sends requests to. Empty
// is the public endpoint.
func WithEndpoint(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		f.endpoint = strings.TrimRight(baseURL, "/")
	}
}

// NewFetcher wraps next. runID tags the entries written during this run.
func NewFetcher(next gcp.TargetFetcher, store *Store, runID string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{next: next, store: store, runID: runID}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *Fetcher) FetchTarget(ctx context.Context, target gcp.Target) gcp.Result {
	items, ok, err := f.store.get(ctx, f.endpoint, target)
	if err != nil {
		logger.Log.Warnf("Cache lookup for %s failed: %v", target, err)
	}

	if ok {
		logger.Log.Tracef("Cache hit for %s (%d items)", target, len(items))

		return gcp.Result{Target: target, Items: items, Outcome: gcp.OutcomeOK}
	}

	result := f.next.FetchTarget(ctx, target)
	if result.Outcome != gcp.OutcomeOK {
		return result
	}

	if err := f.store.put(ctx, f.endpoint, target, result.Items, f.runID); err != nil {
		logger.Log.Warnf("Failed to cache %s: %v", target, err)
	}

	return result
}
