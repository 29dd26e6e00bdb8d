// Package model holds the canonical records the harvest pipeline produces.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Game is one tournament matchup extracted from a bracket page.
type Game struct {
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeSeed  int    `json:"home_seed"`
	AwaySeed  int    `json:"away_seed"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`

	Round     string `json:"round"`
	Sectional string `json:"sectional,omitempty"`
	Division  string `json:"division"`
	Gender    string `json:"gender"`
	Year      int    `json:"year"`

	GameDate        *time.Time `json:"game_date,omitempty"`
	GameTime        string     `json:"game_time,omitempty"`
	Location        string     `json:"location,omitempty"`
	OvertimePeriods int        `json:"overtime_periods,omitempty"`

	SourceURL string `json:"source_url,omitempty"`
}

// Signature identifies a matchup independent of team order: the same two
// teams with the same two scores hash identically whichever side was
// listed first.
func (g *Game) Signature() string {
	names := []string{strings.ToLower(g.HomeTeam), strings.ToLower(g.AwayTeam)}
	sort.Strings(names)

	scores := []int{g.HomeScore, g.AwayScore}
	sort.Ints(scores)

	return fmt.Sprintf("%s|%s|%d-%d", names[0], names[1], scores[0], scores[1])
}

// Winner returns the winning team name, or "" on a tie.
func (g *Game) Winner() string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeam
	case g.AwayScore > g.HomeScore:
		return g.AwayTeam
	default:
		return ""
	}
}

// ExternalID is the stable identity used for store upserts: season context
// plus the order-independent matchup signature.
func (g *Game) ExternalID() string {
	return fmt.Sprintf("%d_%s_%s_%s", g.Year, g.Gender, g.Division, g.Signature())
}
