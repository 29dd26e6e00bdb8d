package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/fortuna/ceres/internal/logging"
)

func newTestFetcher(t *testing.T, cfg Config, transport *httpmock.MockTransport) *Fetcher {
	t.Helper()
	f, err := NewFetcherWithClient(cfg, &http.Client{Transport: transport}, NewMetrics(), logging.NewNop())
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	return f
}

func TestFetchTextServesFreshFromCache(t *testing.T) {
	const pageURL = "http://brackets.test/2024/boys/div1"

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL,
		httpmock.NewStringResponder(http.StatusOK, "<html>bracket</html>"))

	f := newTestFetcher(t, DefaultConfig(), transport)

	first, err := f.FetchText(context.Background(), pageURL, time.Minute, nil)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first fetch should hit the network")
	}

	second, err := f.FetchText(context.Background(), pageURL, time.Minute, nil)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second fetch within TTL should come from cache")
	}
	if got := f.NetworkRequests(); got != 1 {
		t.Fatalf("network requests = %d, want 1", got)
	}
	if string(second.Body) != string(first.Body) {
		t.Fatalf("cached body %q differs from fetched body %q", second.Body, first.Body)
	}
}

func TestFetchTextRevalidatesWith304(t *testing.T) {
	const (
		pageURL = "http://brackets.test/2024/boys/div2"
		body    = "<html>bracket v1</html>"
		etag    = `"v1"`
	)

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL, func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("If-None-Match") == etag {
			return httpmock.NewStringResponse(http.StatusNotModified, ""), nil
		}
		resp := httpmock.NewStringResponse(http.StatusOK, body)
		resp.Header.Set("ETag", etag)
		return resp, nil
	})

	f := newTestFetcher(t, DefaultConfig(), transport)

	first, err := f.FetchText(context.Background(), pageURL, 0, nil)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.StatusCode)
	}

	second, err := f.FetchText(context.Background(), pageURL, 0, nil)
	if err != nil {
		t.Fatalf("revalidation fetch: %v", err)
	}
	if second.StatusCode != http.StatusNotModified {
		t.Fatalf("revalidation status = %d, want 304", second.StatusCode)
	}
	if !second.Revalidated {
		t.Fatalf("revalidation result not marked")
	}
	if string(second.Body) != string(first.Body) {
		t.Fatalf("304 body %q is not identical to the original %q", second.Body, first.Body)
	}
}

func TestFetchTextDoesNotRetryHTTPStatuses(t *testing.T) {
	const pageURL = "http://brackets.test/2024/boys/div3"

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	cfg := DefaultConfig()
	cfg.MaxRetries = 3
	f := newTestFetcher(t, cfg, transport)

	result, err := f.FetchText(context.Background(), pageURL, time.Minute, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", result.StatusCode)
	}
	if got := f.NetworkRequests(); got != 1 {
		t.Fatalf("network requests = %d, want 1 (statuses are never retried here)", got)
	}

	// Error statuses must not populate the cache.
	if _, err := f.FetchText(context.Background(), pageURL, time.Minute, nil); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := f.NetworkRequests(); got != 2 {
		t.Fatalf("network requests = %d, want 2", got)
	}
}

func TestFetchTextRetryCeiling(t *testing.T) {
	const pageURL = "http://unreachable.test/bracket"

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.BackoffInitial = 10 * time.Millisecond
	cfg.BackoffMax = 40 * time.Millisecond
	f := newTestFetcher(t, cfg, transport)

	start := time.Now()
	_, err := f.FetchText(context.Background(), pageURL, time.Minute, nil)
	elapsed := time.Since(start)

	if !IsUnreachable(err) {
		t.Fatalf("error = %v, want ErrUnreachable", err)
	}
	if got := f.NetworkRequests(); got != int64(cfg.MaxRetries+1) {
		t.Fatalf("attempts = %d, want exactly %d", got, cfg.MaxRetries+1)
	}
	// Backoffs of 10ms then 20ms must have elapsed between attempts.
	if minimum := 30 * time.Millisecond; elapsed < minimum {
		t.Fatalf("elapsed %v, want at least %v of backoff", elapsed, minimum)
	}

	var unreachable ErrUnreachable
	if !errors.As(err, &unreachable) {
		t.Fatalf("error %v does not unwrap to ErrUnreachable", err)
	}
	if unreachable.Attempts != cfg.MaxRetries+1 {
		t.Fatalf("reported attempts = %d, want %d", unreachable.Attempts, cfg.MaxRetries+1)
	}
}

func TestFetchTextReleasesPermitOnEveryPath(t *testing.T) {
	const (
		okURL   = "http://brackets.test/ok"
		errURL  = "http://brackets.test/err"
		downURL = "http://down.test/bracket"
	)

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", okURL,
		httpmock.NewStringResponder(http.StatusOK, "fine"))
	transport.RegisterResponder("GET", errURL,
		httpmock.NewStringResponder(http.StatusForbidden, "no"))
	transport.RegisterResponder("GET", downURL,
		httpmock.NewErrorResponder(errors.New("connection reset")))

	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.BackoffInitial = time.Millisecond
	f := newTestFetcher(t, cfg, transport)

	for _, u := range []string{okURL, errURL, downURL} {
		f.FetchText(context.Background(), u, 0, nil)
	}

	for _, host := range []string{"brackets.test", "down.test"} {
		if got := f.Limiter().InFlight(host); got != 0 {
			t.Fatalf("host %s holds %d permits after fetches, want 0", host, got)
		}
	}
}

func TestFetchTextBackoffHonorsCancellation(t *testing.T) {
	const pageURL = "http://slow.test/bracket"

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	cfg := DefaultConfig()
	cfg.MaxRetries = 3
	cfg.BackoffInitial = time.Hour
	f := newTestFetcher(t, cfg, transport)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := f.FetchText(ctx, pageURL, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("cancellation took %v, backoff sleep is not context-aware", elapsed)
	}
}

func TestFetchTextSendsCallerHeaders(t *testing.T) {
	const pageURL = "http://brackets.test/headers"

	var gotAccept, gotAgent string
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", pageURL, func(req *http.Request) (*http.Response, error) {
		gotAccept = req.Header.Get("Accept")
		gotAgent = req.Header.Get("User-Agent")
		return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
	})

	f := newTestFetcher(t, DefaultConfig(), transport)

	_, err := f.FetchText(context.Background(), pageURL, 0, map[string]string{"Accept": "text/html"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotAccept != "text/html" {
		t.Fatalf("Accept header = %q, want text/html", gotAccept)
	}
	if gotAgent == "" {
		t.Fatalf("User-Agent header missing")
	}
}
