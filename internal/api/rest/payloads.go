package rest

import (
	"github.com/fortuna/bbref/internal/store"
)

// The payload types shadow the sql.Null* columns of the embedded models so
// they encode as plain strings or null.

type playerPayload struct {
	*store.Player
	Position     *string `json:"position"`
	Height       *string `json:"height"`
	BirthDate    *string `json:"birth_date"`
	BirthCountry *string `json:"birth_country"`
	Experience   *string `json:"experience"`
	College      *string `json:"college"`
	URL          *string `json:"url"`
	Season       *string `json:"season"`
}

func newPlayerPayload(p *store.Player) playerPayload {
	return playerPayload{
		Player:       p,
		Position:     nullable(p.Position),
		Height:       nullable(p.Height),
		BirthDate:    nullable(p.BirthDate),
		BirthCountry: nullable(p.BirthCountry),
		Experience:   nullable(p.Experience),
		College:      nullable(p.College),
		URL:          nullable(p.URL),
		Season:       nullable(p.Season),
	}
}

type gameLogPayload struct {
	*store.GameLog
	StartET      *string `json:"start_et"`
	BoxScoreLink *string `json:"box_score_link"`
	Overtime     *string `json:"overtime"`
	Attendance   *string `json:"attendance"`
	Notes        *string `json:"notes"`
}

func newGameLogPayload(g *store.GameLog) gameLogPayload {
	return gameLogPayload{
		GameLog:      g,
		StartET:      nullable(g.StartET),
		BoxScoreLink: nullable(g.BoxScoreLink),
		Overtime:     nullable(g.Overtime),
		Attendance:   nullable(g.Attendance),
		Notes:        nullable(g.Notes),
	}
}

type boxScorePayload struct {
	*store.BoxScoreLine
	MP *string `json:"mp"`
}

type advancedBoxScorePayload struct {
	*store.AdvancedBoxScoreLine
	MP *string `json:"mp"`
}

func runPayload(run *store.IngestRun) map[string]interface{} {
	payload := map[string]interface{}{
		"id":             run.ID,
		"job":            run.Job,
		"status":         run.Status,
		"items_total":    run.ItemsTotal,
		"ingested":       run.Ingested,
		"skipped":        run.Skipped,
		"rows_inserted":  run.RowsInserted,
		"rows_duplicate": run.RowsDuplicate,
		"rows_rejected":  run.RowsRejected,
		"started_at":     run.StartedAt,
	}
	if run.FinishedAt.Valid {
		payload["finished_at"] = run.FinishedAt.Time
	}
	if run.LastError.Valid {
		payload["last_error"] = run.LastError.String
	}
	return payload
}
