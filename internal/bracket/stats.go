package bracket

// Stats reports what one parse pass saw and why lines were skipped.
// Callers decide what to do with them; the parser only counts.
type Stats struct {
	TotalLines                int      `json:"total_lines"`
	GamesFound                int      `json:"games_found"`
	SkippedSelfGames          int      `json:"skipped_self_games"`
	SkippedDuplicates         int      `json:"skipped_duplicates"`
	SkippedInvalidScores      int      `json:"skipped_invalid_scores"`
	SkippedIncompleteMatchups int      `json:"skipped_incomplete_matchups"`
	RoundsDetected            []string `json:"rounds_detected"`
}

// Skipped totals every dropped matchup across all skip reasons.
func (s *Stats) Skipped() int {
	return s.SkippedSelfGames + s.SkippedDuplicates + s.SkippedInvalidScores + s.SkippedIncompleteMatchups
}

func (s *Stats) addRound(name string) {
	for _, seen := range s.RoundsDetected {
		if seen == name {
			return
		}
	}
	s.RoundsDetected = append(s.RoundsDetected, name)
}
