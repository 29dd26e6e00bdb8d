// Package repository holds the data-access layer over the store.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/ceres/internal/store"
)

const gameColumns = `game_id, external_id, year, gender, division, sectional, round,
		home_team, away_team, home_seed, away_seed, home_score, away_score,
		game_date, game_time, location, overtime_periods, source_url,
		created_at, updated_at`

// GameRepository handles tournament game data access.
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// GetByID finds a game by its database ID.
func (r *GameRepository) GetByID(ctx context.Context, gameID int) (*store.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE game_id = $1`, gameColumns)

	game, err := r.scanGame(r.db.DB().QueryRowContext(ctx, query, gameID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game not found: %d", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return game, nil
}

// GetByExternalID finds a game by its stable external identity.
func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (*store.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE external_id = $1`, gameColumns)

	game, err := r.scanGame(r.db.DB().QueryRowContext(ctx, query, externalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game not found: %s", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return game, nil
}

// GetBySeason returns all games for one tournament year and gender.
func (r *GameRepository) GetBySeason(ctx context.Context, year int, gender string) ([]*store.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE year = $1 AND gender = $2
		ORDER BY division, sectional, round, home_team`, gameColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, year, gender)
	if err != nil {
		return nil, fmt.Errorf("querying season games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetByDivision returns all games for one season slice.
func (r *GameRepository) GetByDivision(ctx context.Context, year int, gender, division string) ([]*store.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE year = $1 AND gender = $2 AND division = $3
		ORDER BY sectional, round, home_team`, gameColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, year, gender, division)
	if err != nil {
		return nil, fmt.Errorf("querying division games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetRecent returns the most recently updated games.
func (r *GameRepository) GetRecent(ctx context.Context, limit int) ([]*store.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		ORDER BY updated_at DESC
		LIMIT $1`, gameColumns)

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// Upsert inserts or updates a game keyed by external ID. It reports
// whether the row was newly inserted.
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) (bool, error) {
	query := `
		INSERT INTO games (external_id, year, gender, division, sectional, round,
			home_team, away_team, home_seed, away_seed, home_score, away_score,
			game_date, game_time, location, overtime_periods, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (external_id) DO UPDATE SET
			sectional = EXCLUDED.sectional,
			round = EXCLUDED.round,
			home_seed = EXCLUDED.home_seed,
			away_seed = EXCLUDED.away_seed,
			game_date = EXCLUDED.game_date,
			game_time = EXCLUDED.game_time,
			location = EXCLUDED.location,
			overtime_periods = EXCLUDED.overtime_periods,
			source_url = EXCLUDED.source_url,
			updated_at = NOW()
		RETURNING game_id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.DB().QueryRowContext(ctx, query,
		game.ExternalID, game.Year, game.Gender, game.Division, game.Sectional, game.Round,
		game.HomeTeam, game.AwayTeam, game.HomeSeed, game.AwaySeed, game.HomeScore, game.AwayScore,
		game.GameDate, game.GameTime, game.Location, game.OvertimePeriods, game.SourceURL,
	).Scan(&game.GameID, &inserted)
	if err != nil {
		return false, fmt.Errorf("upserting game: %w", err)
	}
	return inserted, nil
}

// CountBySeason returns how many games are stored for a season slice.
func (r *GameRepository) CountBySeason(ctx context.Context, year int, gender, division string) (int, error) {
	query := `SELECT COUNT(*) FROM games WHERE year = $1 AND gender = $2 AND division = $3`

	var count int
	if err := r.db.DB().QueryRowContext(ctx, query, year, gender, division).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting games: %w", err)
	}
	return count, nil
}

func (r *GameRepository) scanGame(row *sql.Row) (*store.Game, error) {
	game := &store.Game{}
	err := row.Scan(
		&game.GameID, &game.ExternalID, &game.Year, &game.Gender, &game.Division,
		&game.Sectional, &game.Round, &game.HomeTeam, &game.AwayTeam,
		&game.HomeSeed, &game.AwaySeed, &game.HomeScore, &game.AwayScore,
		&game.GameDate, &game.GameTime, &game.Location, &game.OvertimePeriods,
		&game.SourceURL, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// scanGames scans multiple game rows.
func (r *GameRepository) scanGames(rows *sql.Rows) ([]*store.Game, error) {
	var games []*store.Game
	for rows.Next() {
		game := &store.Game{}
		err := rows.Scan(
			&game.GameID, &game.ExternalID, &game.Year, &game.Gender, &game.Division,
			&game.Sectional, &game.Round, &game.HomeTeam, &game.AwayTeam,
			&game.HomeSeed, &game.AwaySeed, &game.HomeScore, &game.AwayScore,
			&game.GameDate, &game.GameTime, &game.Location, &game.OvertimePeriods,
			&game.SourceURL, &game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
