package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fortuna/ceres/internal/fetch"
	"github.com/fortuna/ceres/internal/logging"
)

// Mode selects where pages come from.
type Mode string

const (
	// ModeLive fetches pages from the network.
	ModeLive Mode = "LIVE"
	// ModeFixture serves pages from local snapshots only. No network
	// client is ever touched in this mode.
	ModeFixture Mode = "FIXTURE"
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIVE", "":
		return ModeLive, nil
	case "FIXTURE":
		return ModeFixture, nil
	default:
		return "", fmt.Errorf("unknown data mode %q (want LIVE or FIXTURE)", s)
	}
}

// Router hands page requests to the fetch layer or the fixture store
// depending on mode. Both paths answer with a fetch.Result, so callers
// apply the same status handling online and offline: a missing fixture
// reads as a 404, exactly like a bracket that is not posted yet.
type Router struct {
	mode     Mode
	fetcher  *fetch.Fetcher
	renderer *fetch.Renderer
	fixtures *FixtureStore
	log      *logging.Logger
}

// NewRouter wires a router. renderer may be nil, in which case rendered
// requests degrade to plain fetches. fixtures may be nil in LIVE mode.
func NewRouter(mode Mode, fetcher *fetch.Fetcher, renderer *fetch.Renderer, fixtures *FixtureStore, log *logging.Logger) *Router {
	if log == nil {
		log = logging.Default()
	}
	return &Router{
		mode:     mode,
		fetcher:  fetcher,
		renderer: renderer,
		fixtures: fixtures,
		log:      log.Named("source"),
	}
}

// Mode returns the router's data mode.
func (r *Router) Mode() Mode {
	return r.mode
}

// BracketPage returns the bracket HTML for one season slice.
func (r *Router) BracketPage(ctx context.Context, url string, year int, gender, division string, cacheTTL time.Duration) (*fetch.Result, error) {
	if r.mode == ModeFixture {
		body, err := r.fixtures.Load(year, gender, division)
		if err != nil {
			return nil, err
		}
		return fixtureResult(FixtureName(year, gender, division), body), nil
	}
	return r.fetcher.FetchText(ctx, url, cacheTTL, nil)
}

// LeadersPage returns the rendered leaderboard HTML. Live leaderboards
// need a browser because the tables arrive via script; waitFor names
// the selector that signals they landed.
func (r *Router) LeadersPage(ctx context.Context, url string, year int, gender, waitFor string, cacheTTL time.Duration) (*fetch.Result, error) {
	if r.mode == ModeFixture {
		body, err := r.fixtures.LoadNamed(LeadersFixtureName(year, gender))
		if err != nil {
			return nil, err
		}
		return fixtureResult(LeadersFixtureName(year, gender), body), nil
	}
	if r.renderer != nil {
		return r.renderer.FetchRendered(ctx, url, waitFor, true, cacheTTL)
	}
	return r.fetcher.FetchText(ctx, url, cacheTTL, nil)
}

// fixtureResult wraps fixture bytes as a fetch result: present reads as
// a 200, absent as a 404.
func fixtureResult(name string, body []byte) *fetch.Result {
	if body == nil {
		return &fetch.Result{URL: name, StatusCode: http.StatusNotFound, FromCache: true}
	}
	return &fetch.Result{URL: name, StatusCode: http.StatusOK, Body: body, FromCache: true}
}
