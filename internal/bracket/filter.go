package bracket

import (
	"strconv"

	"github.com/fortuna/ceres/internal/model"
)

// ScoredTeam pairs a pending team with the score it posted.
type ScoredTeam struct {
	Seed  int
	Name  string
	Score int
}

// SeedHomePolicy decides which of the two listed teams hosted. Sources
// differ on listing conventions, so the policy is configurable per
// source.
type SeedHomePolicy func(first, second ScoredTeam) (home, away ScoredTeam)

// LowerSeedHosts is the default policy: the better (lower) seed is the
// home side. Equal seeds keep listing order.
func LowerSeedHosts(first, second ScoredTeam) (ScoredTeam, ScoredTeam) {
	if second.Seed < first.Seed {
		return second, first
	}
	return first, second
}

// ListedFirstHosts keeps the page's listing order: first team hosted.
func ListedFirstHosts(first, second ScoredTeam) (ScoredTeam, ScoredTeam) {
	return first, second
}

// scoreLine finalizes a matchup. The pending buffer never survives a
// score line, accepted or skipped.
func (s *scan) scoreLine(line string) bool {
	m := scoreRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	pending := s.pending
	s.pending = nil

	if len(pending) != 2 {
		s.stats.SkippedIncompleteMatchups++
		s.p.log.Debug("score without a full matchup",
			"line", line, "pending_teams", len(pending), "source", s.sourceURL)
		return true
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	overtime := parseOvertime(m[3], m[4])

	if first > s.p.cfg.MaxValidScore || second > s.p.cfg.MaxValidScore {
		s.stats.SkippedInvalidScores++
		s.p.log.Debug("implausible score",
			"line", line, "max", s.p.cfg.MaxValidScore, "source", s.sourceURL)
		return true
	}

	if sameTeam(pending[0].Name, pending[1].Name) {
		s.stats.SkippedSelfGames++
		s.p.log.Debug("team paired with itself",
			"team", pending[0].Name, "source", s.sourceURL)
		return true
	}

	home, away := s.p.cfg.SeedHome(
		ScoredTeam{Seed: pending[0].Seed, Name: pending[0].Name, Score: first},
		ScoredTeam{Seed: pending[1].Seed, Name: pending[1].Name, Score: second},
	)

	game := model.Game{
		HomeTeam:        home.Name,
		AwayTeam:        away.Name,
		HomeSeed:        home.Seed,
		AwaySeed:        away.Seed,
		HomeScore:       home.Score,
		AwayScore:       away.Score,
		Round:           s.round,
		Sectional:       s.sectional,
		Division:        s.division,
		Gender:          s.gender,
		Year:            s.year,
		GameDate:        s.date,
		GameTime:        s.gameTime,
		Location:        s.location,
		OvertimePeriods: overtime,
		SourceURL:       s.sourceURL,
	}

	sig := game.Signature()
	if s.seen[sig] {
		s.stats.SkippedDuplicates++
		return true
	}
	s.seen[sig] = true
	s.games = append(s.games, game)
	return true
}
