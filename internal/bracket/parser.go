// Package bracket turns the text of a tournament bracket page into
// canonical games. The input is plain lines in page order; context
// (sectional, round, date, venue) arrives on its own lines and applies
// to every matchup that follows until the next context line.
package bracket

import (
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/model"
)

// DefaultRound labels games seen before any round header.
const DefaultRound = "Unknown Round"

// Config holds the parser's tunables.
type Config struct {
	MaxValidScore int
	SeedHome      SeedHomePolicy
}

// DefaultConfig returns the standard tournament settings.
func DefaultConfig() Config {
	return Config{
		MaxValidScore: 200,
		SeedHome:      LowerSeedHosts,
	}
}

// Parser classifies bracket lines and assembles games. Safe for
// concurrent use; all per-document state lives in the scan.
type Parser struct {
	cfg Config
	log *logging.Logger
}

// NewParser creates a parser, filling zero config fields with defaults.
func NewParser(cfg Config, log *logging.Logger) *Parser {
	if cfg.MaxValidScore <= 0 {
		cfg.MaxValidScore = 200
	}
	if cfg.SeedHome == nil {
		cfg.SeedHome = LowerSeedHosts
	}
	if log == nil {
		log = logging.Default()
	}
	return &Parser{cfg: cfg, log: log.Named("bracket")}
}

// pendingTeam is a seeded team waiting for its score line.
type pendingTeam struct {
	Seed int
	Name string
}

// scan is the per-document state machine.
type scan struct {
	p         *Parser
	year      int
	gender    string
	division  string
	sourceURL string

	round     string
	sectional string
	date      *time.Time
	gameTime  string
	location  string
	pending   []pendingTeam
	seen      map[string]bool

	games []model.Game
	stats Stats
}

// Parse walks the lines of one bracket document. Each line is offered
// to the handlers in priority order and the first match consumes it;
// unmatched lines are skipped. A malformed line never aborts the
// document.
func (p *Parser) Parse(lines []string, year int, gender, division, sourceURL string) ([]model.Game, Stats) {
	s := &scan{
		p:         p,
		year:      year,
		gender:    gender,
		division:  division,
		sourceURL: sourceURL,
		round:     DefaultRound,
		seen:      make(map[string]bool),
	}

	handlers := []struct {
		name string
		fn   func(string) bool
	}{
		{"sectional", s.sectionalLine},
		{"round", s.roundLine},
		{"date", s.dateLine},
		{"time", s.timeLine},
		{"location", s.locationLine},
		{"team", s.teamLine},
		{"score", s.scoreLine},
	}

	for _, raw := range lines {
		s.stats.TotalLines++
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, h := range handlers {
			if h.fn(line) {
				break
			}
		}
	}

	s.stats.GamesFound = len(s.games)
	p.log.Debug("parsed bracket text",
		"source", sourceURL,
		"lines", s.stats.TotalLines,
		"games", s.stats.GamesFound,
		"skipped", s.stats.Skipped())
	return s.games, s.stats
}

func (s *scan) sectionalLine(line string) bool {
	m := sectionalRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	s.sectional = "Sectional " + m[1]
	return true
}

func (s *scan) roundLine(line string) bool {
	name := matchRound(line)
	if name == "" {
		return false
	}
	s.round = name
	s.stats.addRound(name)
	return true
}

func (s *scan) dateLine(line string) bool {
	m := dateRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	d, ok := parseDate(m, s.year)
	if !ok {
		// Word-plus-number lines that are not dates fall through to
		// the remaining handlers.
		return false
	}
	s.date = &d
	return true
}

func (s *scan) timeLine(line string) bool {
	if !timeRe.MatchString(line) {
		return false
	}
	s.gameTime = line
	return true
}

func (s *scan) locationLine(line string) bool {
	if !strings.HasPrefix(line, "@") {
		return false
	}
	s.location = strings.TrimSpace(strings.TrimPrefix(line, "@"))
	return true
}

func (s *scan) teamLine(line string) bool {
	m := seedTeamRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	seed, _ := strconv.Atoi(m[1])
	name := NormalizeTeamName(m[2])
	if name == "" {
		return false
	}

	s.pending = append(s.pending, pendingTeam{Seed: seed, Name: name})
	// A third seeded line before any score keeps the two most recent.
	if len(s.pending) > 2 {
		s.pending = s.pending[len(s.pending)-2:]
	}
	return true
}
