package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kedare/netscope/internal/logger"
	"google.golang.org/api/googleapi"
)

const pageTokenParam = "pageToken"

// DefaultRequestTimeout bounds a single page request, body included.
const DefaultRequestTimeout = time.Minute

var (
	// ErrNotAccessible marks a target answered with a non-success status.
	// It is recorded on the result and never returned as a fetch error.
	ErrNotAccessible = errors.New("collection not accessible")
	// ErrMalformedResponse indicates a response body that is not a JSON object
	// or a pagination sequence that never ends.
	ErrMalformedResponse = errors.New("malformed response body")
	// ErrRequestTimeout marks a page request that outlived the fetcher timeout.
	ErrRequestTimeout = errors.New("request timed out")
)

// RawItem is one undecoded resource returned by the remote API.
type RawItem = json.RawMessage

// Outcome classifies how a target fetch ended.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeNotAccessible Outcome = "not_accessible"
	OutcomeFailed        Outcome = "failed"
)

// Result holds the items collected for one target.
type Result struct {
	Target  Target
	Items   []RawItem
	Pages   int
	Outcome Outcome
	Err     error
}

// TargetFetcher collects every item of a single target.
type TargetFetcher interface {
	FetchTarget(ctx context.Context, target Target) Result
}

// Fetcher issues paginated GET requests against Google Cloud REST endpoints.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	metrics   *Metrics
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL sends every request to baseURL instead of https://{api}.googleapis.com.
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTimeout bounds every page request to d. A non-positive d keeps
// DefaultRequestTimeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMetrics records page counts on m.
func WithMetrics(m *Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a fetcher using client, which is expected to carry the
// bearer token (see NewHTTPClient).
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	f := &Fetcher{client: client, timeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch returns every item of target. A non-success status yields an empty
// result and no error; only transport and decoding failures are returned.
func (f *Fetcher) Fetch(ctx context.Context, target Target) ([]RawItem, error) {
	result := f.FetchTarget(ctx, target)
	if result.Outcome == OutcomeFailed {
		return nil, result.Err
	}

	return result.Items, nil
}

// FetchTarget follows page tokens until the provider stops returning one.
// Items of every page are appended. A non-success page discards the partial
// items of the target. A token handed out twice fails the target.
func (f *Fetcher) FetchTarget(ctx context.Context, target Target) Result {
	result := Result{Target: target}

	if err := target.Validate(); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err

		return result
	}

	envelope := target.ResolveEnvelope()
	params, _ := url.ParseQuery(target.Query)
	endpoint := f.endpoint(target)

	var items []RawItem
	seen := map[string]struct{}{}

	for {
		body, err := f.getPage(ctx, endpoint, params)
		if err != nil {
			if errors.Is(err, ErrNotAccessible) {
				logger.Log.Debugf("Skipping %s: %v", target, err)
				result.Outcome = OutcomeNotAccessible
			} else {
				logger.Log.Warnf("Failed to fetch %s: %v", target, err)
				result.Outcome = OutcomeFailed
			}
			result.Err = fmt.Errorf("%s: %w", target, err)

			return result
		}

		result.Pages++
		f.metrics.observePage(target.Kind)

		pageItems, next, err := extractItems(body, envelope)
		if err != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("%s: %w", target, err)

			return result
		}

		items = append(items, pageItems...)

		if next == "" {
			break
		}

		if _, ok := seen[next]; ok {
			logger.Log.Warnf("Failed to fetch %s: page token repeated after %d pages", target, result.Pages)
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("%s: %w: page token %q repeated", target, ErrMalformedResponse, next)

			return result
		}

		seen[next] = struct{}{}
		params.Set(pageTokenParam, next)
	}

	logger.Log.Tracef("Collected %d items from %s in %d pages", len(items), target, result.Pages)

	result.Items = items
	result.Outcome = OutcomeOK

	return result
}

func (f *Fetcher) endpoint(target Target) string {
	base := f.baseURL
	if base == "" {
		base = "https://" + target.API + ".googleapis.com"
	}

	return base + "/" + strings.TrimLeft(target.Path, "/")
}

func (f *Fetcher) getPage(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	pageCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := f.doPage(pageCtx, endpoint, params)
	if err != nil && ctx.Err() == nil && errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s: %v", ErrRequestTimeout, f.timeout, err)
	}

	return body, err
}

func (f *Fetcher) doPage(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAccessible, err)
	}

	return io.ReadAll(resp.Body)
}

// extractItems pulls the items of one page out of body according to envelope
// and returns the continuation token, if any.
func extractItems(body []byte, envelope Envelope) ([]RawItem, string, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var next string
	if raw, ok := object["nextPageToken"]; ok {
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, "", fmt.Errorf("%w: nextPageToken: %v", ErrMalformedResponse, err)
		}
	}

	switch envelope.Shape {
	case ShapeSingleton:
		return []RawItem{RawItem(body)}, next, nil
	case ShapeAggregated:
		items, err := flattenAggregated(object[envelope.Field], envelope.Inner)

		return items, next, err
	default:
		items, err := decodeList(object[envelope.Field])

		return items, next, err
	}
}

// flattenAggregated walks every scope of an aggregated response and collects
// the list stored under inner. Scopes are visited in name order so the
// result does not depend on map iteration.
func flattenAggregated(raw json.RawMessage, inner string) ([]RawItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var scopes map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &scopes); err != nil {
		return nil, fmt.Errorf("%w: aggregated items: %v", ErrMalformedResponse, err)
	}

	names := make([]string, 0, len(scopes))
	for name := range scopes {
		names = append(names, name)
	}

	sort.Strings(names)

	var items []RawItem
	for _, name := range names {
		list, err := decodeList(scopes[name][inner])
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", name, err)
		}

		items = append(items, list...)
	}

	return items, nil
}

func decodeList(raw json.RawMessage) ([]RawItem, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []RawItem
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return list, nil
}
