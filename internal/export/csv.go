package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/fortuna/bbref/internal/scrape"
	"github.com/fortuna/bbref/internal/store"
)

// Header is the column row of the player export.
var Header = []string{"Player", "Pos", "Ht", "Wt", "Birth Date", "Birth", "Exp", "College", "Team", "URL"}

// PlayerLister is the read side of the player repository.
type PlayerLister interface {
	List(ctx context.Context, team string, limit int) ([]*store.Player, error)
}

// Players writes every stored player of team (all teams when empty) as CSV
// and returns the number of data rows written.
func Players(ctx context.Context, src PlayerLister, team string, w io.Writer) (int, error) {
	players, err := src.List(ctx, team, 0)
	if err != nil {
		return 0, err
	}
	if err := WritePlayers(w, players); err != nil {
		return 0, err
	}
	return len(players), nil
}

// WritePlayers writes the header and one row per player. Null columns are empty.
func WritePlayers(w io.Writer, players []*store.Player) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range players {
		record := []string{
			p.Name,
			nullable(p.Position),
			nullable(p.Height),
			scrape.FormatFloat(p.Weight),
			nullable(p.BirthDate),
			nullable(p.BirthCountry),
			nullable(p.Experience),
			nullable(p.College),
			p.Team,
			nullable(p.URL),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func nullable(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}
