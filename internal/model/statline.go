package model

// StatCategory names one leaderboard table.
type StatCategory string

const (
	CategoryPoints   StatCategory = "points"
	CategoryRebounds StatCategory = "rebounds"
	CategoryAssists  StatCategory = "assists"
	CategorySteals   StatCategory = "steals"
	CategoryBlocks   StatCategory = "blocks"
)

// Categories lists every leaderboard category in display order.
var Categories = []StatCategory{
	CategoryPoints,
	CategoryRebounds,
	CategoryAssists,
	CategorySteals,
	CategoryBlocks,
}

// Valid reports whether c is one of the known categories.
func (c StatCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// StatLine is one player's value in one leaderboard category.
type StatLine struct {
	Player   string       `json:"player"`
	School   string       `json:"school,omitempty"`
	Category StatCategory `json:"category"`
	Value    float64      `json:"value"`
	Rank     int          `json:"rank,omitempty"`
}
