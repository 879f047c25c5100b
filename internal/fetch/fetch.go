// Package fetch pulls recent items from the external source families and
// normalizes them into RawArticle records. Fetchers are side-effect-free on
// the stores; persistence happens downstream in the normalizer.
package fetch

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

	"github.com/cenkalti/backoff/v4"
)

// ErrSourceUnavailable marks a recoverable source failure: network error,
// HTTP 5xx, or a malformed payload. The scheduler logs it and moves on.
var ErrSourceUnavailable = errors.New("source unavailable")

const (
	// Per-call deadline for any single outbound request.
	callTimeout = 30 * time.Second

	userAgent = "veritas-news/1.0 (+https://github.com/veritas-news/veritas)"

	maxRetries = 2
)

// RawArticle is the pre-normalization record emitted by every fetcher.
// URL, Title, Timestamp and SourceDomain are mandatory; the rest may be
// empty.
type RawArticle struct {
	URL          string
	SourceDomain string
	Title        string
	Summary      string
	Snippet      string
	PublishedAt  time.Time
}

// Fetcher pulls items published inside the window (now-window, now].
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, window time.Duration) ([]RawArticle, error)
}

// Registry holds the enabled fetchers keyed by variant name. Fetchers whose
// API key is missing are simply never registered.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register adds a fetcher under its variant name. A nil fetcher is ignored
// so callers can pass the result of a constructor that disabled itself.
func (r *Registry) Register(f Fetcher) {
	if f == nil {
		return
	}
	r.fetchers[f.Name()] = f
}

// Get returns the fetcher for a variant, or nil when it is not enabled.
func (r *Registry) Get(name string) Fetcher {
	return r.fetchers[name]
}

// Names returns the enabled variant names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var httpClient = &http.Client{
	Timeout: callTimeout,
	Transport: &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	},
}

// getJSON fetches a URL and decodes its JSON body into out, retrying
// transient failures with exponential backoff. 4xx responses are not
// retried; 5xx and transport errors are.
func getJSON(ctx context.Context, rawURL string, out any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return nil
}

// domainOf extracts the registrable host of an article URL, lowercased and
// without the www prefix. Empty on parse failure.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// inWindow reports whether ts falls inside (now-window, now], with a small
// allowance for publisher clock skew.
func inWindow(ts time.Time, window time.Duration) bool {
	if ts.IsZero() {
		return false
	}
	now := time.Now()
	return ts.After(now.Add(-window)) && ts.Before(now.Add(5*time.Minute))
}
