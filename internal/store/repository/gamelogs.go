package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/bbref/internal/store"
)

// GameLogFilter narrows a gamelog listing. Zero values disable a filter.
type GameLogFilter struct {
	Season int
	Team   string
	Limit  int
}

// GameLogRepository handles schedule rows
type GameLogRepository struct {
	db *store.Database
	q  store.Querier
}

// NewGameLogRepository creates a new gamelog repository
func NewGameLogRepository(db *store.Database) *GameLogRepository {
	return &GameLogRepository{db: db, q: db.DB()}
}

// WithTx returns a copy of the repository bound to tx.
func (r *GameLogRepository) WithTx(tx *sql.Tx) *GameLogRepository {
	return &GameLogRepository{db: r.db, q: tx}
}

// Insert stores a game unless (game_date, visitor_team, home_team) already exists.
// Returns false when the row was a duplicate.
func (r *GameLogRepository) Insert(ctx context.Context, g *store.GameLog) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO gamelogs (
			season_year, month, game_date, start_et, visitor_team, visitor_pts,
			home_team, home_pts, box_score_link, overtime, attendance, notes
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_date, visitor_team, home_team) DO NOTHING
	`)

	res, err := r.q.ExecContext(ctx, query,
		g.SeasonYear, g.Month, g.GameDate, g.StartET, g.VisitorTeam, g.VisitorPts,
		g.HomeTeam, g.HomePts, g.BoxScoreLink, g.Overtime, g.Attendance, g.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("inserting gamelog %s %s@%s: %w", g.GameDate, g.VisitorTeam, g.HomeTeam, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting gamelog: %w", err)
	}
	return n > 0, nil
}

// BoxScoreLinks returns the distinct box-score links recorded in the schedule.
func (r *GameLogRepository) BoxScoreLinks(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT box_score_link
		FROM gamelogs
		WHERE box_score_link IS NOT NULL AND box_score_link <> ''
		ORDER BY box_score_link
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying box score links: %w", err)
	}
	defer rows.Close()

	var links []string
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scanning box score link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// List returns gamelogs in insertion order
func (r *GameLogRepository) List(ctx context.Context, f GameLogFilter) ([]*store.GameLog, error) {
	query := `
		SELECT id, season_year, month, game_date, start_et, visitor_team, visitor_pts,
			home_team, home_pts, box_score_link, overtime, attendance, notes
		FROM gamelogs
		WHERE 1 = 1
	`
	var args []interface{}
	if f.Season > 0 {
		query += ` AND season_year = ?`
		args = append(args, f.Season)
	}
	if f.Team != "" {
		query += ` AND (visitor_team = ? OR home_team = ?)`
		args = append(args, f.Team, f.Team)
	}
	query += ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.q.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying gamelogs: %w", err)
	}
	defer rows.Close()

	var games []*store.GameLog
	for rows.Next() {
		g := &store.GameLog{}
		err := rows.Scan(
			&g.ID, &g.SeasonYear, &g.Month, &g.GameDate, &g.StartET, &g.VisitorTeam, &g.VisitorPts,
			&g.HomeTeam, &g.HomePts, &g.BoxScoreLink, &g.Overtime, &g.Attendance, &g.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning gamelog: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Count returns the number of stored gamelogs.
func (r *GameLogRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM gamelogs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting gamelogs: %w", err)
	}
	return n, nil
}
