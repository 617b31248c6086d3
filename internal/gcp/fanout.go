package gcp

import (
	"context"
	"sort"

	"github.com/kedare/netscope/internal/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight target fetches when no limit is given.
const DefaultConcurrency = 16

// Stats summarises the outcomes of a batch.
type Stats struct {
	Total         int
	Succeeded     int
	NotAccessible int
	Failed        int
}

// TargetError pairs a target with the reason it produced no items.
type TargetError struct {
	Target  Target
	Outcome Outcome
	Err     error
}

// FanOutResult maps every requested target to its outcome. One failed
// target never removes the results of the others.
type FanOutResult struct {
	Results map[Target]Result
	// Order lists the distinct targets in request order.
	Order []Target
	Stats Stats
}

// Items returns the items collected for target.
func (r *FanOutResult) Items(target Target) []RawItem {
	return r.Results[target].Items
}

// ItemsOfKind concatenates the items of every target of kind in request order.
func (r *FanOutResult) ItemsOfKind(kind Kind) []RawItem {
	var items []RawItem
	for _, target := range r.Order {
		if target.Kind == kind {
			items = append(items, r.Results[target].Items...)
		}
	}

	return items
}

// Errors returns the non-OK targets sorted by their string form.
func (r *FanOutResult) Errors() []TargetError {
	var errs []TargetError
	for _, target := range r.Order {
		result := r.Results[target]
		if result.Outcome != OutcomeOK {
			errs = append(errs, TargetError{Target: target, Outcome: result.Outcome, Err: result.Err})
		}
	}

	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Target.String() < errs[j].Target.String()
	})

	return errs
}

// ProgressFunc is invoked after each target resolves.
type ProgressFunc func(done, total int, result Result)

// Executor runs target fetches concurrently with a bounded number in flight.
type Executor struct {
	fetcher  TargetFetcher
	limit    int
	metrics  *Metrics
	progress ProgressFunc
}

// ExecutorOption customises an Executor.
type ExecutorOption func(*Executor)

// WithExecutorMetrics records per-target outcomes on m.
func WithExecutorMetrics(m *Metrics) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithProgress registers fn to observe completed targets.
func WithProgress(fn ProgressFunc) ExecutorOption {
	return func(e *Executor) {
		e.progress = fn
	}
}

// NewExecutor creates an executor. A non-positive limit uses DefaultConcurrency.
func NewExecutor(fetcher TargetFetcher, limit int, opts ...ExecutorOption) *Executor {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	e := &Executor{fetcher: fetcher, limit: limit}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// FetchAll resolves every target. Duplicate targets are fetched once. The
// call returns once all targets have an outcome; a cancelled context shows up
// as failed targets rather than an aborted batch.
func (e *Executor) FetchAll(ctx context.Context, targets []Target) *FanOutResult {
	out := &FanOutResult{Results: make(map[Target]Result, len(targets))}

	seen := make(map[Target]struct{}, len(targets))
	for _, target := range targets {
		if _, ok := seen[target]; ok {
			continue
		}

		seen[target] = struct{}{}
		out.Order = append(out.Order, target)
	}

	results := make([]Result, len(out.Order))

	var g errgroup.Group
	g.SetLimit(e.limit)

	done := make(chan Result)
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		count := 0
		for result := range done {
			count++
			e.metrics.ObserveResult(result)

			if e.progress != nil {
				e.progress(count, len(out.Order), result)
			}
		}
	}()

	for i, target := range out.Order {
		g.Go(func() error {
			result := e.fetcher.FetchTarget(ctx, target)
			result.Target = target
			results[i] = result
			done <- result

			return nil
		})
	}

	_ = g.Wait()
	close(done)
	<-finished

	for _, result := range results {
		out.Results[result.Target] = result
		out.Stats.Total++

		switch result.Outcome {
		case OutcomeOK:
			out.Stats.Succeeded++
		case OutcomeNotAccessible:
			out.Stats.NotAccessible++
		default:
			out.Stats.Failed++
		}
	}

	logger.Log.Debugf("Fetched %d targets: %d ok, %d not accessible, %d failed",
		out.Stats.Total, out.Stats.Succeeded, out.Stats.NotAccessible, out.Stats.Failed)

	return out
}
