package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/bbref/internal/store"
)

const playerColumns = `
	id, name, team, position, height, weight, birth_date, birth_country, experience, college, url,
	season, games, games_started, minutes_per_game,
	field_goals, field_goal_attempts, field_goal_percentage,
	three_pointers, three_point_attempts, three_point_percentage,
	two_pointers, two_point_attempts, two_point_percentage, effective_fg_percentage,
	free_throws, free_throw_attempts, free_throw_percentage,
	offensive_rebounds, defensive_rebounds, total_rebounds,
	assists, steals, blocks, turnovers, personal_fouls, points_per_game
`

// naturalKeyMatch compares the nine identity columns. Nullable columns compare
// through COALESCE so a missing value matches another missing value.
const naturalKeyMatch = `
	name = ? AND team = ?
	AND COALESCE(position, '') = COALESCE(CAST(? AS TEXT), '')
	AND COALESCE(height, '') = COALESCE(CAST(? AS TEXT), '')
	AND weight = ?
	AND COALESCE(birth_date, '') = COALESCE(CAST(? AS TEXT), '')
	AND COALESCE(birth_country, '') = COALESCE(CAST(? AS TEXT), '')
	AND COALESCE(experience, '') = COALESCE(CAST(? AS TEXT), '')
	AND COALESCE(college, '') = COALESCE(CAST(? AS TEXT), '')
`

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
	q  store.Querier
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db, q: db.DB()}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PlayerRepository) WithTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{db: r.db, q: tx}
}

func keyArgs(p *store.Player) []interface{} {
	return []interface{}{
		p.Name, p.Team, p.Position, p.Height, p.Weight,
		p.BirthDate, p.BirthCountry, p.Experience, p.College,
	}
}

// Exists reports whether a player with the same natural key is stored.
func (r *PlayerRepository) Exists(ctx context.Context, p *store.Player) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM players WHERE ` + naturalKeyMatch)

	var count int
	if err := r.q.QueryRowContext(ctx, query, keyArgs(p)...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking player %q: %w", p.Name, err)
	}
	return count > 0, nil
}

// Insert stores a roster entry unless its natural key is already present.
// The first write wins; a duplicate returns false without error.
func (r *PlayerRepository) Insert(ctx context.Context, p *store.Player) (bool, error) {
	exists, err := r.Exists(ctx, p)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	query := r.db.Rebind(`
		INSERT INTO players (
			name, team, position, height, weight, birth_date, birth_country, experience, college, url
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	args := append(keyArgs(p), p.URL)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("inserting player %q: %w", p.Name, err)
	}
	return true, nil
}

// AssignedURLs returns every profile URL already given to a player.
func (r *PlayerRepository) AssignedURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT url FROM players WHERE url IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("querying assigned urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning url: %w", err)
		}
		urls[url] = struct{}{}
	}
	return urls, rows.Err()
}

// ListWithoutURL returns players still waiting for a profile URL, oldest first.
func (r *PlayerRepository) ListWithoutURL(ctx context.Context) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE url IS NULL ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying players without url: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// ListWithURL returns players that have a profile URL, oldest first.
func (r *PlayerRepository) ListWithURL(ctx context.Context) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE url IS NOT NULL ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying players with url: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// AssignURL sets a player's profile URL. A URL is only ever written once, so a
// player that already has one is left untouched and false is returned.
func (r *PlayerRepository) AssignURL(ctx context.Context, id int64, url string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE players
		SET url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND url IS NULL
	`)

	res, err := r.q.ExecContext(ctx, query, url, id)
	if err != nil {
		return false, fmt.Errorf("assigning url to player %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assigning url to player %d: %w", id, err)
	}
	return n > 0, nil
}

// UpdateSeasonStats overwrites the season snapshot of every player with the given URL.
func (r *PlayerRepository) UpdateSeasonStats(ctx context.Context, url string, s store.SeasonStats) (int64, error) {
	query := r.db.Rebind(`
		UPDATE players SET
			season = ?, games = ?, games_started = ?, minutes_per_game = ?,
			field_goals = ?, field_goal_attempts = ?, field_goal_percentage = ?,
			three_pointers = ?, three_point_attempts = ?, three_point_percentage = ?,
			two_pointers = ?, two_point_attempts = ?, two_point_percentage = ?,
			effective_fg_percentage = ?,
			free_throws = ?, free_throw_attempts = ?, free_throw_percentage = ?,
			offensive_rebounds = ?, defensive_rebounds = ?, total_rebounds = ?,
			assists = ?, steals = ?, blocks = ?, turnovers = ?, personal_fouls = ?,
			points_per_game = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE url = ?
	`)

	res, err := r.q.ExecContext(ctx, query,
		s.Season, s.Games, s.GamesStarted, s.MinutesPerGame,
		s.FieldGoals, s.FieldGoalAttempts, s.FieldGoalPercentage,
		s.ThreePointers, s.ThreePointAttempts, s.ThreePointPercentage,
		s.TwoPointers, s.TwoPointAttempts, s.TwoPointPercentage,
		s.EffectiveFGPercentage,
		s.FreeThrows, s.FreeThrowAttempts, s.FreeThrowPercentage,
		s.OffensiveRebounds, s.DefensiveRebounds, s.TotalRebounds,
		s.Assists, s.Steals, s.Blocks, s.Turnovers, s.PersonalFouls,
		s.PointsPerGame,
		url,
	)
	if err != nil {
		return 0, fmt.Errorf("updating season stats for %s: %w", url, err)
	}
	return res.RowsAffected()
}

// List returns players ordered by id, optionally filtered by team.
// A non-positive limit returns every row.
func (r *PlayerRepository) List(ctx context.Context, team string, limit int) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players`
	var args []interface{}
	if team != "" {
		query += ` WHERE team = ?`
		args = append(args, team)
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// GetByURL finds a player by profile URL
func (r *PlayerRepository) GetByURL(ctx context.Context, url string) (*store.Player, error) {
	query := r.db.Rebind(`SELECT ` + playerColumns + ` FROM players WHERE url = ?`)

	rows, err := r.q.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	defer rows.Close()

	players, err := r.scanPlayers(rows)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("player not found: %s", url)
	}
	return players[0], nil
}

// Count returns the number of stored players.
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return n, nil
}

// RemoveDuplicates deletes players that share a natural key with an older row,
// keeping the lowest id of each group.
func (r *PlayerRepository) RemoveDuplicates(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM players
		WHERE id NOT IN (
			SELECT MIN(id) FROM players
			GROUP BY name, team, COALESCE(position, ''), COALESCE(height, ''), weight,
				COALESCE(birth_date, ''), COALESCE(birth_country, ''),
				COALESCE(experience, ''), COALESCE(college, '')
		)
	`

	res, err := r.q.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("removing duplicate players: %w", err)
	}
	return res.RowsAffected()
}

// scanPlayers is a helper to scan multiple player rows
func (r *PlayerRepository) scanPlayers(rows *sql.Rows) ([]*store.Player, error) {
	var players []*store.Player

	for rows.Next() {
		p := &store.Player{}
		s := &p.SeasonStats
		err := rows.Scan(
			&p.ID, &p.Name, &p.Team, &p.Position, &p.Height, &p.Weight,
			&p.BirthDate, &p.BirthCountry, &p.Experience, &p.College, &p.URL,
			&s.Season, &s.Games, &s.GamesStarted, &s.MinutesPerGame,
			&s.FieldGoals, &s.FieldGoalAttempts, &s.FieldGoalPercentage,
			&s.ThreePointers, &s.ThreePointAttempts, &s.ThreePointPercentage,
			&s.TwoPointers, &s.TwoPointAttempts, &s.TwoPointPercentage, &s.EffectiveFGPercentage,
			&s.FreeThrows, &s.FreeThrowAttempts, &s.FreeThrowPercentage,
			&s.OffensiveRebounds, &s.DefensiveRebounds, &s.TotalRebounds,
			&s.Assists, &s.Steals, &s.Blocks, &s.Turnovers, &s.PersonalFouls, &s.PointsPerGame,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}
