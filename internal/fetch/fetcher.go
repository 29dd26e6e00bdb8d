// Package fetch is the network layer: a conditional cache, per-domain
// concurrency permits, a retrying HTTP fetcher, and a headless-browser
// renderer for pages that only exist after JavaScript runs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fortuna/ceres/internal/logging"
)

// Result is the outcome of one fetch. A 304 carries the cached body;
// FromCache marks a fetch answered entirely from the cache with no
// network I/O.
type Result struct {
	URL         string
	StatusCode  int
	Body        []byte
	FromCache   bool
	Revalidated bool
}

// Fetcher issues conditional GETs with per-domain concurrency limits and
// transport-level retries. Non-2xx statuses are returned to the caller
// as-is and never retried here; status policy belongs to the layer above.
type Fetcher struct {
	client  *http.Client
	cache   *Cache
	limiter *DomainLimiter
	cfg     Config
	metrics *Metrics
	log     *logging.Logger

	networkRequests atomic.Int64
}

// NewFetcher creates a fetcher with its own HTTP client, cache, and
// domain limiter.
func NewFetcher(cfg Config, metrics *Metrics, log *logging.Logger) (*Fetcher, error) {
	return NewFetcherWithClient(cfg, &http.Client{Timeout: cfg.Timeout}, metrics, log)
}

// NewFetcherWithClient is NewFetcher with a caller-supplied HTTP client.
func NewFetcherWithClient(cfg Config, client *http.Client, metrics *Metrics, log *logging.Logger) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	cache, err := NewCache(cfg.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	if log == nil {
		log = logging.Default()
	}
	return &Fetcher{
		client:  client,
		cache:   cache,
		limiter: NewDomainLimiter(cfg.MaxPerDomain),
		cfg:     cfg,
		metrics: metrics,
		log:     log.Named("fetch"),
	}, nil
}

// Cache exposes the shared response cache.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// Limiter exposes the shared per-domain permit table.
func (f *Fetcher) Limiter() *DomainLimiter {
	return f.limiter
}

// NetworkRequests returns how many requests actually went out on the
// wire, cache hits excluded.
func (f *Fetcher) NetworkRequests() int64 {
	return f.networkRequests.Load()
}

// FetchText fetches a URL's body. A cache entry younger than cacheTTL is
// returned without touching the network; a stale entry is revalidated
// with If-None-Match / If-Modified-Since. Transport failures are retried
// with exponential backoff; the permit for the URL's host is held for
// the whole network exchange and released exactly once.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string, cacheTTL time.Duration, headers map[string]string) (*Result, error) {
	entry, _ := f.cache.Get(rawURL)
	if entry.Fresh(cacheTTL) {
		f.metrics.IncCacheHit()
		f.log.Debug("cache hit", "url", rawURL)
		return &Result{URL: rawURL, StatusCode: http.StatusOK, Body: entry.Body, FromCache: true}, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	host := parsed.Hostname()

	if err := f.limiter.Acquire(ctx, host); err != nil {
		return nil, err
	}
	defer f.limiter.Release(host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if entry != nil {
		if entry.ETag != "" {
			req.Header.Set("If-None-Match", entry.ETag)
		}
		if entry.LastModified != "" {
			req.Header.Set("If-Modified-Since", entry.LastModified)
		}
	}

	attempts := f.cfg.MaxRetries + 1
	backoff := f.cfg.BackoffInitial
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := f.attempt(req, entry)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		f.metrics.IncRetry()
		f.log.Warn("fetch failed, backing off",
			"url", rawURL, "attempt", attempt, "backoff", backoff, "error", err)
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		if f.cfg.BackoffMax > 0 && backoff > f.cfg.BackoffMax {
			backoff = f.cfg.BackoffMax
		}
	}

	f.metrics.IncFailure(errorTypeLabel(lastErr))
	return nil, ErrUnreachable{URL: rawURL, Attempts: attempts, Err: lastErr}
}

// attempt issues one request. Only transport failures come back as
// errors; every HTTP status is a successful attempt.
func (f *Fetcher) attempt(req *http.Request, stale *Entry) (*Result, error) {
	rawURL := req.URL.String()

	start := time.Now()
	f.networkRequests.Add(1)
	f.metrics.IncRequest("http")
	resp, err := f.client.Do(req)
	f.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNotModified:
		f.cache.Touch(rawURL)
		f.metrics.IncRevalidation()
		f.log.Debug("not modified, serving cached copy", "url", rawURL)
		var cachedBody []byte
		if stale != nil {
			cachedBody = stale.Body
		}
		return &Result{URL: rawURL, StatusCode: http.StatusNotModified, Body: cachedBody, Revalidated: true}, nil

	case http.StatusOK:
		f.cache.Put(rawURL, body, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"))
		return &Result{URL: rawURL, StatusCode: http.StatusOK, Body: body}, nil

	default:
		return &Result{URL: rawURL, StatusCode: resp.StatusCode, Body: body}, nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
