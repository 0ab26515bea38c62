package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/bbref/internal/store"
)

// BoxScoreRepository handles basic and advanced per-game player lines
type BoxScoreRepository struct {
	db *store.Database
	q  store.Querier
}

// NewBoxScoreRepository creates a new box score repository
func NewBoxScoreRepository(db *store.Database) *BoxScoreRepository {
	return &BoxScoreRepository{db: db, q: db.DB()}
}

// WithTx returns a copy of the repository bound to tx.
func (r *BoxScoreRepository) WithTx(tx *sql.Tx) *BoxScoreRepository {
	return &BoxScoreRepository{db: r.db, q: tx}
}

// InsertBasic stores a basic line unless (box_score_link, team, player_name) exists.
func (r *BoxScoreRepository) InsertBasic(ctx context.Context, l *store.BoxScoreLine) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO box_scores_per_game (
			box_score_link, team, player_name, starter, mp,
			fg, fga, fg_pct, threep, threepa, threep_pct, ft, fta, ft_pct,
			orb, drb, trb, ast, stl, blk, tov, pf, pts, plus_minus
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (box_score_link, team, player_name) DO NOTHING
	`)

	res, err := r.q.ExecContext(ctx, query,
		l.BoxScoreLink, l.Team, l.PlayerName, l.Starter, l.MP,
		l.FG, l.FGA, l.FGPct, l.ThreeP, l.ThreePA, l.ThreePPct, l.FT, l.FTA, l.FTPct,
		l.ORB, l.DRB, l.TRB, l.AST, l.STL, l.BLK, l.TOV, l.PF, l.PTS, l.PlusMinus,
	)
	if err != nil {
		return false, fmt.Errorf("inserting box score line for %s: %w", l.PlayerName, err)
	}
	return affected(res)
}

// InsertAdvanced stores an advanced line unless (box_score_link, team, player_name) exists.
func (r *BoxScoreRepository) InsertAdvanced(ctx context.Context, l *store.AdvancedBoxScoreLine) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO advanced_box_scores_per_game (
			box_score_link, team, player_name, starter, mp,
			ts_pct, efg_pct, threepar, ftr, orb_pct, drb_pct, trb_pct,
			ast_pct, stl_pct, blk_pct, tov_pct, usg_pct, ortg, drtg, bpm
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (box_score_link, team, player_name) DO NOTHING
	`)

	res, err := r.q.ExecContext(ctx, query,
		l.BoxScoreLink, l.Team, l.PlayerName, l.Starter, l.MP,
		l.TSPct, l.EFGPct, l.ThreePAr, l.FTr, l.ORBPct, l.DRBPct, l.TRBPct,
		l.ASTPct, l.STLPct, l.BLKPct, l.TOVPct, l.USGPct, l.ORtg, l.DRtg, l.BPM,
	)
	if err != nil {
		return false, fmt.Errorf("inserting advanced line for %s: %w", l.PlayerName, err)
	}
	return affected(res)
}

// ListBasic returns the basic lines of one game in insertion order
func (r *BoxScoreRepository) ListBasic(ctx context.Context, link string) ([]*store.BoxScoreLine, error) {
	query := r.db.Rebind(`
		SELECT id, box_score_link, team, player_name, starter, mp,
			fg, fga, fg_pct, threep, threepa, threep_pct, ft, fta, ft_pct,
			orb, drb, trb, ast, stl, blk, tov, pf, pts, plus_minus
		FROM box_scores_per_game
		WHERE box_score_link = ?
		ORDER BY id
	`)

	rows, err := r.q.QueryContext(ctx, query, link)
	if err != nil {
		return nil, fmt.Errorf("querying box score lines: %w", err)
	}
	defer rows.Close()

	var lines []*store.BoxScoreLine
	for rows.Next() {
		l := &store.BoxScoreLine{}
		err := rows.Scan(
			&l.ID, &l.BoxScoreLink, &l.Team, &l.PlayerName, &l.Starter, &l.MP,
			&l.FG, &l.FGA, &l.FGPct, &l.ThreeP, &l.ThreePA, &l.ThreePPct, &l.FT, &l.FTA, &l.FTPct,
			&l.ORB, &l.DRB, &l.TRB, &l.AST, &l.STL, &l.BLK, &l.TOV, &l.PF, &l.PTS, &l.PlusMinus,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning box score line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ListAdvanced returns the advanced lines of one game in insertion order
func (r *BoxScoreRepository) ListAdvanced(ctx context.Context, link string) ([]*store.AdvancedBoxScoreLine, error) {
	query := r.db.Rebind(`
		SELECT id, box_score_link, team, player_name, starter, mp,
			ts_pct, efg_pct, threepar, ftr, orb_pct, drb_pct, trb_pct,
			ast_pct, stl_pct, blk_pct, tov_pct, usg_pct, ortg, drtg, bpm
		FROM advanced_box_scores_per_game
		WHERE box_score_link = ?
		ORDER BY id
	`)

	rows, err := r.q.QueryContext(ctx, query, link)
	if err != nil {
		return nil, fmt.Errorf("querying advanced lines: %w", err)
	}
	defer rows.Close()

	var lines []*store.AdvancedBoxScoreLine
	for rows.Next() {
		l := &store.AdvancedBoxScoreLine{}
		err := rows.Scan(
			&l.ID, &l.BoxScoreLink, &l.Team, &l.PlayerName, &l.Starter, &l.MP,
			&l.TSPct, &l.EFGPct, &l.ThreePAr, &l.FTr, &l.ORBPct, &l.DRBPct, &l.TRBPct,
			&l.ASTPct, &l.STLPct, &l.BLKPct, &l.TOVPct, &l.USGPct, &l.ORtg, &l.DRtg, &l.BPM,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning advanced line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// CountBasic returns the number of stored basic lines.
func (r *BoxScoreRepository) CountBasic(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM box_scores_per_game`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting box score lines: %w", err)
	}
	return n, nil
}

// CountAdvanced returns the number of stored advanced lines.
func (r *BoxScoreRepository) CountAdvanced(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM advanced_box_scores_per_game`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting advanced lines: %w", err)
	}
	return n, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
