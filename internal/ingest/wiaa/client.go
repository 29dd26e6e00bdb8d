// Package wiaa harvests WIAA tournament brackets and stat leader pages.
// It layers a status-aware retry policy over the fetch stack: a 404
// bracket is a normal "not posted yet" outcome, a 403 is an anti-bot
// block worth retrying, and everything is tallied so an operator can
// tell "no data" apart from "we are being blocked".
package wiaa

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fortuna/ceres/internal/bracket"
	"github.com/fortuna/ceres/internal/fetch"
	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/model"
	"github.com/fortuna/ceres/internal/source"
)

// Config holds the bracket client's tunables.
type Config struct {
	BaseURL        string
	LeadersBaseURL string
	Retries        int
	BackoffInitial time.Duration
	CacheTTL       time.Duration
	LeadersWait    string
}

// DefaultConfig returns the production bracket-client settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:        BaseURL,
		LeadersBaseURL: LeadersBaseURL,
		Retries:        3,
		BackoffInitial: time.Second,
		CacheTTL:       15 * time.Minute,
		LeadersWait:    "table",
	}
}

// SeasonHarvest is the parsed outcome of one (year, gender, division)
// bracket page.
type SeasonHarvest struct {
	Year      int
	Gender    string
	Division  string
	SourceURL string
	Games     []model.Game
	Stats     bracket.Stats
}

// Client fetches bracket and leader pages through the data-mode router
// and turns bracket pages into games.
type Client struct {
	router *source.Router
	parser *bracket.Parser
	cfg    Config
	log    *logging.Logger

	requested   atomic.Int64
	successful  atomic.Int64
	notFound    atomic.Int64
	forbidden   atomic.Int64
	serverError atomic.Int64
	timeouts    atomic.Int64
	other       atomic.Int64
}

// NewClient wires a bracket client. A nil parser gets the default
// bracket parser; zero config fields fall back to defaults.
func NewClient(router *source.Router, parser *bracket.Parser, cfg Config, log *logging.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.LeadersBaseURL == "" {
		cfg.LeadersBaseURL = def.LeadersBaseURL
	}
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = def.BackoffInitial
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.LeadersWait == "" {
		cfg.LeadersWait = def.LeadersWait
	}
	if log == nil {
		log = logging.Default()
	}
	if parser == nil {
		parser = bracket.NewParser(bracket.DefaultConfig(), log)
	}
	return &Client{
		router: router,
		parser: parser,
		cfg:    cfg,
		log:    log.Named("wiaa"),
	}
}

// Mode reports the data mode the client's router runs in.
func (c *Client) Mode() source.Mode {
	return c.router.Mode()
}

// HarvestSeason fetches and parses one season slice. A bracket that is
// not available (404, blocked past retries, unreachable) yields a nil
// harvest with no error; only caller cancellation is an error.
func (c *Client) HarvestSeason(ctx context.Context, year int, gender, division string) (*SeasonHarvest, error) {
	page, err := c.FetchBracket(ctx, year, gender, division)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, nil
	}

	lines, err := BracketLines(page)
	if err != nil {
		return nil, err
	}

	sourceURL := BracketURL(c.cfg.BaseURL, year, gender, division)
	games, stats := c.parser.Parse(lines, year, gender, division, sourceURL)
	return &SeasonHarvest{
		Year:      year,
		Gender:    gender,
		Division:  division,
		SourceURL: sourceURL,
		Games:     games,
		Stats:     stats,
	}, nil
}

// FetchBracket fetches one bracket page. It returns (nil, nil) for
// every unavailable outcome; the counters record which one it was.
func (c *Client) FetchBracket(ctx context.Context, year int, gender, division string) ([]byte, error) {
	pageURL := BracketURL(c.cfg.BaseURL, year, gender, division)
	c.requested.Add(1)

	backoff := c.cfg.BackoffInitial
	for attempt := 1; ; attempt++ {
		res, err := c.router.BracketPage(ctx, pageURL, year, gender, division, c.cfg.CacheTTL)

		var reason string
		switch {
		case err == nil && (res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNotModified):
			c.successful.Add(1)
			return res.Body, nil

		case err == nil && res.StatusCode == http.StatusNotFound:
			c.notFound.Add(1)
			c.log.Debug("bracket not posted",
				"year", year, "gender", gender, "division", division)
			return nil, nil

		case err == nil && res.StatusCode == http.StatusForbidden:
			c.forbidden.Add(1)
			reason = "forbidden"

		case err == nil && res.StatusCode >= 500:
			c.serverError.Add(1)
			reason = fmt.Sprintf("status %d", res.StatusCode)

		case err == nil:
			c.other.Add(1)
			c.log.Warn("unexpected bracket status", "url", pageURL, "status", res.StatusCode)
			return nil, nil

		case fetch.IsUnreachable(err):
			if fetch.IsTimeout(err) {
				c.timeouts.Add(1)
				reason = "timeout"
			} else {
				c.other.Add(1)
				reason = "unreachable"
			}

		case ctx.Err() != nil:
			return nil, ctx.Err()

		default:
			c.other.Add(1)
			c.log.Warn("bracket fetch failed", "url", pageURL, "error", err)
			return nil, nil
		}

		if attempt > c.cfg.Retries {
			c.log.Warn("bracket retries exhausted",
				"url", pageURL, "reason", reason, "attempts", attempt)
			return nil, nil
		}
		c.log.Warn("bracket fetch blocked, backing off",
			"url", pageURL, "reason", reason, "attempt", attempt, "backoff", backoff)
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

// FetchLeaders fetches the rendered stat leaders page for a season.
// Unavailable pages return (nil, nil), matching FetchBracket.
func (c *Client) FetchLeaders(ctx context.Context, year int, gender string) ([]byte, error) {
	pageURL := LeadersURL(c.cfg.LeadersBaseURL, year, gender)

	res, err := c.router.LeadersPage(ctx, pageURL, year, gender, c.cfg.LeadersWait, c.cfg.CacheTTL)
	switch {
	case err == nil && (res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNotModified):
		return res.Body, nil
	case err == nil:
		c.log.Debug("leaders page unavailable", "url", pageURL, "status", res.StatusCode)
		return nil, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		c.log.Warn("leaders fetch failed", "url", pageURL, "error", err)
		return nil, nil
	}
}

// HealthSummary is a snapshot of the bracket fetch counters. Retried
// statuses count every occurrence, so forbidden or timeout can exceed
// requested when a slice is retried.
type HealthSummary struct {
	Requested   int64 `json:"requested"`
	Successful  int64 `json:"successful"`
	NotFound    int64 `json:"not_found"`
	Forbidden   int64 `json:"forbidden"`
	ServerError int64 `json:"server_error"`
	Timeout     int64 `json:"timeout"`
	Other       int64 `json:"other"`
}

// HealthSummary returns the current fetch counters.
func (c *Client) HealthSummary() HealthSummary {
	return HealthSummary{
		Requested:   c.requested.Load(),
		Successful:  c.successful.Load(),
		NotFound:    c.notFound.Load(),
		Forbidden:   c.forbidden.Load(),
		ServerError: c.serverError.Load(),
		Timeout:     c.timeouts.Load(),
		Other:       c.other.Load(),
	}
}

// LogHealth logs the counter snapshot, called at the end of a harvest
// pass.
func (c *Client) LogHealth() {
	s := c.HealthSummary()
	c.log.Info("bracket fetch health",
		"requested", s.Requested,
		"successful", s.Successful,
		"not_found", s.NotFound,
		"forbidden", s.Forbidden,
		"server_error", s.ServerError,
		"timeout", s.Timeout,
		"other", s.Other)
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
