package store

import (
	"testing"
	"time"

	"github.com/fortuna/ceres/internal/model"
)

func TestNewGameRecord(t *testing.T) {
	date := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	m := model.Game{
		HomeTeam:        "Arrowhead",
		AwayTeam:        "Marquette",
		HomeSeed:        1,
		AwaySeed:        3,
		HomeScore:       70,
		AwayScore:       68,
		Round:           "Regional Finals",
		Sectional:       "Sectional 1",
		Division:        "Div1",
		Gender:          "Boys",
		Year:            2024,
		GameDate:        &date,
		GameTime:        "7:00 PM",
		Location:        "Kohl Center",
		OvertimePeriods: 1,
		SourceURL:       "https://halftime.wiaawi.org/Brackets",
	}

	rec := NewGameRecord(m)

	if rec.ExternalID != m.ExternalID() {
		t.Errorf("ExternalID = %q, want %q", rec.ExternalID, m.ExternalID())
	}
	if rec.HomeTeam != "Arrowhead" || rec.AwayTeam != "Marquette" {
		t.Errorf("teams = %q vs %q", rec.HomeTeam, rec.AwayTeam)
	}
	if !rec.HomeSeed.Valid || rec.HomeSeed.Int32 != 1 {
		t.Errorf("HomeSeed = %+v, want valid 1", rec.HomeSeed)
	}
	if !rec.GameDate.Valid || !rec.GameDate.Time.Equal(date) {
		t.Errorf("GameDate = %+v, want valid %v", rec.GameDate, date)
	}
	if !rec.Location.Valid || rec.Location.String != "Kohl Center" {
		t.Errorf("Location = %+v", rec.Location)
	}
	if rec.OvertimePeriods != 1 {
		t.Errorf("OvertimePeriods = %d, want 1", rec.OvertimePeriods)
	}
}

func TestNewGameRecordLeavesAbsentFieldsNull(t *testing.T) {
	m := model.Game{
		HomeTeam:  "Kimberly",
		AwayTeam:  "Neenah",
		HomeScore: 55,
		AwayScore: 40,
		Round:     "Unknown Round",
		Division:  "Div1",
		Gender:    "Girls",
		Year:      2023,
	}

	rec := NewGameRecord(m)

	if rec.Sectional.Valid {
		t.Errorf("Sectional = %+v, want null", rec.Sectional)
	}
	if rec.HomeSeed.Valid || rec.AwaySeed.Valid {
		t.Errorf("seeds = %+v / %+v, want null", rec.HomeSeed, rec.AwaySeed)
	}
	if rec.GameDate.Valid || rec.GameTime.Valid || rec.Location.Valid {
		t.Error("date, time, and location should be null when unset")
	}
	if rec.SourceURL.Valid {
		t.Errorf("SourceURL = %+v, want null", rec.SourceURL)
	}
}
