package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fortuna/ceres/internal/logging"
)

// Renderer fetches pages through headless Chrome for sources that build
// their DOM with JavaScript. It shares the fetcher's cache and domain
// permits, so rendered and plain fetches respect the same limits.
type Renderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	cache    *Cache
	limiter  *DomainLimiter
	cfg      Config
	metrics  *Metrics
	log      *logging.Logger

	renders atomic.Int64
}

// NewRenderer creates a renderer sharing the fetcher's cache and limiter.
// Chrome launches lazily on the first render.
func NewRenderer(cfg Config, f *Fetcher, log *logging.Logger) *Renderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.BrowserHeadless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	if log == nil {
		log = logging.Default()
	}
	return &Renderer{
		allocCtx: allocCtx,
		cancel:   cancel,
		cache:    f.Cache(),
		limiter:  f.Limiter(),
		cfg:      cfg,
		metrics:  f.metrics,
		log:      log.Named("render"),
	}
}

// Close shuts the browser down.
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Renders returns how many browser navigations actually ran.
func (r *Renderer) Renders() int64 {
	return r.renders.Load()
}

// FetchRendered returns the fully rendered HTML of a page. waitFor is an
// optional CSS selector to wait on; if that wait fails and the caller has
// not canceled, the page is re-rendered as a plain load with a settle
// delay instead of failing the fetch. Rendered pages are cached like
// plain fetches, keyed by URL.
func (r *Renderer) FetchRendered(ctx context.Context, rawURL, waitFor string, waitNetworkIdle bool, cacheTTL time.Duration) (*Result, error) {
	entry, _ := r.cache.Get(rawURL)
	if entry.Fresh(cacheTTL) {
		r.metrics.IncCacheHit()
		r.log.Debug("cache hit", "url", rawURL)
		return &Result{URL: rawURL, StatusCode: http.StatusOK, Body: entry.Body, FromCache: true}, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	host := parsed.Hostname()

	if err := r.limiter.Acquire(ctx, host); err != nil {
		return nil, err
	}
	defer r.limiter.Release(host)

	start := time.Now()
	html, err := r.render(ctx, rawURL, waitFor, waitNetworkIdle)
	if err != nil && waitFor != "" && ctx.Err() == nil {
		r.log.Warn("selector wait failed, falling back to plain load",
			"url", rawURL, "selector", waitFor, "error", err)
		html, err = r.render(ctx, rawURL, "", true)
	}
	r.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", rawURL, err)
	}

	body := []byte(html)
	r.cache.Put(rawURL, body, "", "")
	return &Result{URL: rawURL, StatusCode: http.StatusOK, Body: body}, nil
}

// render runs one browser navigation in a fresh tab context bounded by
// the browser timeout.
func (r *Renderer) render(ctx context.Context, rawURL, waitFor string, networkIdle bool) (string, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(r.allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, r.cfg.BrowserTimeout)
	defer cancelTimeout()

	// Caller cancellation tears the tab down.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(rawURL)}
	if waitFor != "" {
		actions = append(actions, chromedp.WaitVisible(waitFor, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady(`body`, chromedp.ByQuery))
	}
	if networkIdle {
		actions = append(actions, chromedp.Sleep(r.cfg.SettleDelay))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML(`html`, &html, chromedp.ByQuery))

	r.renders.Add(1)
	r.metrics.IncRequest("browser")
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", err
	}
	if html == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}
	return html, nil
}
