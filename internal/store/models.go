package store

import (
	"database/sql"
	"time"

	"github.com/fortuna/ceres/internal/model"
)

// Game is a tournament game row.
type Game struct {
	GameID          int            `json:"game_id" db:"game_id"`
	ExternalID      string         `json:"external_id" db:"external_id"`
	Year            int            `json:"year" db:"year"`
	Gender          string         `json:"gender" db:"gender"`
	Division        string         `json:"division" db:"division"`
	Sectional       sql.NullString `json:"sectional,omitempty" db:"sectional"`
	Round           string         `json:"round" db:"round"`
	HomeTeam        string         `json:"home_team" db:"home_team"`
	AwayTeam        string         `json:"away_team" db:"away_team"`
	HomeSeed        sql.NullInt32  `json:"home_seed,omitempty" db:"home_seed"`
	AwaySeed        sql.NullInt32  `json:"away_seed,omitempty" db:"away_seed"`
	HomeScore       int            `json:"home_score" db:"home_score"`
	AwayScore       int            `json:"away_score" db:"away_score"`
	GameDate        sql.NullTime   `json:"game_date,omitempty" db:"game_date"`
	GameTime        sql.NullString `json:"game_time,omitempty" db:"game_time"`
	Location        sql.NullString `json:"location,omitempty" db:"location"`
	OvertimePeriods int            `json:"overtime_periods" db:"overtime_periods"`
	SourceURL       sql.NullString `json:"source_url,omitempty" db:"source_url"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// HarvestRun records one harvesting pass over a set of season slices.
type HarvestRun struct {
	RunID           int            `json:"run_id" db:"run_id"`
	Mode            string         `json:"mode" db:"mode"`
	Years           string         `json:"years" db:"years"`
	Genders         string         `json:"genders" db:"genders"`
	Divisions       string         `json:"divisions" db:"divisions"`
	Status          string         `json:"status" db:"status"`
	SlicesRequested int            `json:"slices_requested" db:"slices_requested"`
	SlicesWithData  int            `json:"slices_with_data" db:"slices_with_data"`
	GamesFound      int            `json:"games_found" db:"games_found"`
	GamesUpserted   int            `json:"games_upserted" db:"games_upserted"`
	Error           sql.NullString `json:"error,omitempty" db:"error"`
	StartedAt       time.Time      `json:"started_at" db:"started_at"`
	FinishedAt      sql.NullTime   `json:"finished_at,omitempty" db:"finished_at"`
}

// Harvest run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// NewGameRecord converts a parsed tournament game into its database row.
func NewGameRecord(m model.Game) *Game {
	rec := &Game{
		ExternalID:      m.ExternalID(),
		Year:            m.Year,
		Gender:          m.Gender,
		Division:        m.Division,
		Round:           m.Round,
		HomeTeam:        m.HomeTeam,
		AwayTeam:        m.AwayTeam,
		HomeScore:       m.HomeScore,
		AwayScore:       m.AwayScore,
		OvertimePeriods: m.OvertimePeriods,
	}
	if m.Sectional != "" {
		rec.Sectional = sql.NullString{String: m.Sectional, Valid: true}
	}
	if m.HomeSeed > 0 {
		rec.HomeSeed = sql.NullInt32{Int32: int32(m.HomeSeed), Valid: true}
	}
	if m.AwaySeed > 0 {
		rec.AwaySeed = sql.NullInt32{Int32: int32(m.AwaySeed), Valid: true}
	}
	if m.GameDate != nil {
		rec.GameDate = sql.NullTime{Time: *m.GameDate, Valid: true}
	}
	if m.GameTime != "" {
		rec.GameTime = sql.NullString{String: m.GameTime, Valid: true}
	}
	if m.Location != "" {
		rec.Location = sql.NullString{String: m.Location, Valid: true}
	}
	if m.SourceURL != "" {
		rec.SourceURL = sql.NullString{String: m.SourceURL, Valid: true}
	}
	return rec
}
