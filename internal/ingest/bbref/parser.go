package bbref

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/bbref/internal/scrape"
	"github.com/fortuna/bbref/internal/store"
)

// Parsed holds the rows decoded from one page and the rows dropped because a
// present cell was malformed.
type Parsed[T any] struct {
	Rows     []T
	Rejected []error
}

// decodeTable locates, binds, extracts and decodes the first table matching spec.
func decodeTable(doc *goquery.Document, spec *scrape.TableSpec, base *url.URL) ([]scrape.Record, []error, error) {
	table, ok := scrape.Locate(doc, spec.Match)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", scrape.ErrTableNotFound, spec.Match)
	}
	recs, rejected := decodeRows(scrape.Extract(table, scrape.Bind(spec, table)), base)
	return recs, rejected, nil
}

func decodeRows(rows []scrape.Row, base *url.URL) ([]scrape.Record, []error) {
	var (
		recs     []scrape.Record
		rejected []error
	)
	for _, row := range rows {
		rec, err := row.Decode(base)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("row %q: %w", row.Identity(), err))
			continue
		}
		recs = append(recs, rec)
	}
	return recs, rejected
}

func nullText(rec scrape.Record, name string) sql.NullString {
	s, ok := rec.Text(name)
	return sql.NullString{String: s, Valid: ok}
}

func textOf(rec scrape.Record, name string) string {
	s, _ := rec.Text(name)
	return strings.TrimSpace(s)
}

// ParseRoster reads the roster table of a team page.
func ParseRoster(doc *goquery.Document, team string) (Parsed[*store.Player], error) {
	recs, rejected, err := decodeTable(doc, RosterTable, nil)
	if err != nil {
		return Parsed[*store.Player]{}, err
	}

	out := Parsed[*store.Player]{Rejected: rejected}
	for _, rec := range recs {
		out.Rows = append(out.Rows, &store.Player{
			Name:         textOf(rec, "name"),
			Team:         team,
			Position:     nullText(rec, "position"),
			Height:       nullText(rec, "height"),
			Weight:       rec.Float("weight"),
			BirthDate:    nullText(rec, "birth_date"),
			BirthCountry: nullText(rec, "birth_country"),
			Experience:   nullText(rec, "experience"),
			College:      nullText(rec, "college"),
		})
	}
	return out, nil
}

// ParseSeasonStats returns the latest regular season line of a player page:
// the last row whose season label is not a career or playoffs row.
func ParseSeasonStats(doc *goquery.Document) (store.SeasonStats, error) {
	table, ok := scrape.Locate(doc, PerGameTable.Match)
	if !ok {
		return store.SeasonStats{}, fmt.Errorf("%w: %s", scrape.ErrTableNotFound, PerGameTable.Match)
	}

	rows := scrape.Extract(table, scrape.Bind(PerGameTable, table))
	for i := len(rows) - 1; i >= 0; i-- {
		label := strings.ToLower(rows[i].Identity())
		if strings.Contains(label, "career") || strings.Contains(label, "playoffs") {
			continue
		}

		rec, err := rows[i].Decode(nil)
		if err != nil {
			return store.SeasonStats{}, fmt.Errorf("season %q: %w", rows[i].Identity(), err)
		}
		return seasonStats(rec), nil
	}
	return store.SeasonStats{}, ErrNoSeason
}

func seasonStats(rec scrape.Record) store.SeasonStats {
	return store.SeasonStats{
		Season:                nullText(rec, "season"),
		Games:                 rec.Float("games"),
		GamesStarted:          rec.Float("games_started"),
		MinutesPerGame:        rec.Float("minutes_per_game"),
		FieldGoals:            rec.Float("field_goals"),
		FieldGoalAttempts:     rec.Float("field_goal_attempts"),
		FieldGoalPercentage:   rec.Float("field_goal_percentage"),
		ThreePointers:         rec.Float("three_pointers"),
		ThreePointAttempts:    rec.Float("three_point_attempts"),
		ThreePointPercentage:  rec.Float("three_point_percentage"),
		TwoPointers:           rec.Float("two_pointers"),
		TwoPointAttempts:      rec.Float("two_point_attempts"),
		TwoPointPercentage:    rec.Float("two_point_percentage"),
		EffectiveFGPercentage: rec.Float("effective_fg_percentage"),
		FreeThrows:            rec.Float("free_throws"),
		FreeThrowAttempts:     rec.Float("free_throw_attempts"),
		FreeThrowPercentage:   rec.Float("free_throw_percentage"),
		OffensiveRebounds:     rec.Float("offensive_rebounds"),
		DefensiveRebounds:     rec.Float("defensive_rebounds"),
		TotalRebounds:         rec.Float("total_rebounds"),
		Assists:               rec.Float("assists"),
		Steals:                rec.Float("steals"),
		Blocks:                rec.Float("blocks"),
		Turnovers:             rec.Float("turnovers"),
		PersonalFouls:         rec.Float("personal_fouls"),
		PointsPerGame:         rec.Float("points_per_game"),
	}
}

// ParseSchedule reads a monthly schedule page. Box-score links are made
// absolute against base.
func ParseSchedule(doc *goquery.Document, season int, month string, base *url.URL) (Parsed[*store.GameLog], error) {
	recs, rejected, err := decodeTable(doc, ScheduleTable, base)
	if err != nil {
		return Parsed[*store.GameLog]{}, err
	}

	out := Parsed[*store.GameLog]{Rejected: rejected}
	for _, rec := range recs {
		out.Rows = append(out.Rows, &store.GameLog{
			SeasonYear:   season,
			Month:        capitalize(month),
			GameDate:     textOf(rec, "game_date"),
			StartET:      nullText(rec, "start_et"),
			VisitorTeam:  textOf(rec, "visitor_team"),
			VisitorPts:   rec.Int("visitor_pts"),
			HomeTeam:     textOf(rec, "home_team"),
			HomePts:      rec.Int("home_pts"),
			BoxScoreLink: nullText(rec, "box_score_link"),
			Overtime:     nullText(rec, "overtime"),
			Attendance:   nullText(rec, "attendance"),
			Notes:        nullText(rec, "notes"),
		})
	}
	return out, nil
}

// teamTables decodes every table matching spec, labelling rows with the team
// taken from each table's caption.
func teamTables(doc *goquery.Document, spec *scrape.TableSpec, fn func(team string, rec scrape.Record)) ([]error, error) {
	found := scrape.LocateAll(doc, spec)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", scrape.ErrTableNotFound, spec.Match)
	}

	var rejected []error
	for _, t := range found {
		recs, bad := decodeRows(scrape.Extract(t.Table, scrape.Bind(spec, t.Table)), nil)
		rejected = append(rejected, bad...)
		for _, rec := range recs {
			fn(t.Label, rec)
		}
	}
	return rejected, nil
}

// ParseBoxScores reads the basic box score of both teams.
func ParseBoxScores(doc *goquery.Document, link string) (Parsed[*store.BoxScoreLine], error) {
	var out Parsed[*store.BoxScoreLine]
	rejected, err := teamTables(doc, BasicBoxTable, func(team string, rec scrape.Record) {
		out.Rows = append(out.Rows, &store.BoxScoreLine{
			BoxScoreLink: link,
			Team:         team,
			PlayerName:   textOf(rec, "player"),
			Starter:      rec.Starter,
			MP:           nullText(rec, "mp"),
			FG:           rec.Int("fg"),
			FGA:          rec.Int("fga"),
			FGPct:        rec.Float("fg_pct"),
			ThreeP:       rec.Int("fg3"),
			ThreePA:      rec.Int("fg3a"),
			ThreePPct:    rec.Float("fg3_pct"),
			FT:           rec.Int("ft"),
			FTA:          rec.Int("fta"),
			FTPct:        rec.Float("ft_pct"),
			ORB:          rec.Int("orb"),
			DRB:          rec.Int("drb"),
			TRB:          rec.Int("trb"),
			AST:          rec.Int("ast"),
			STL:          rec.Int("stl"),
			BLK:          rec.Int("blk"),
			TOV:          rec.Int("tov"),
			PF:           rec.Int("pf"),
			PTS:          rec.Int("pts"),
			PlusMinus:    rec.Int("plus_minus"),
		})
	})
	out.Rejected = rejected
	return out, err
}

// ParseAdvancedBoxScores reads the advanced box score of both teams.
func ParseAdvancedBoxScores(doc *goquery.Document, link string) (Parsed[*store.AdvancedBoxScoreLine], error) {
	var out Parsed[*store.AdvancedBoxScoreLine]
	rejected, err := teamTables(doc, AdvancedBoxTable, func(team string, rec scrape.Record) {
		out.Rows = append(out.Rows, &store.AdvancedBoxScoreLine{
			BoxScoreLink: link,
			Team:         team,
			PlayerName:   textOf(rec, "player"),
			Starter:      rec.Starter,
			MP:           nullText(rec, "mp"),
			TSPct:        rec.Float("ts_pct"),
			EFGPct:       rec.Float("efg_pct"),
			ThreePAr:     rec.Float("fg3a_per_fga_pct"),
			FTr:          rec.Float("fta_per_fga_pct"),
			ORBPct:       rec.Float("orb_pct"),
			DRBPct:       rec.Float("drb_pct"),
			TRBPct:       rec.Float("trb_pct"),
			ASTPct:       rec.Float("ast_pct"),
			STLPct:       rec.Float("stl_pct"),
			BLKPct:       rec.Float("blk_pct"),
			TOVPct:       rec.Float("tov_pct"),
			USGPct:       rec.Float("usg_pct"),
			ORtg:         rec.Int("off_rtg"),
			DRtg:         rec.Int("def_rtg"),
			BPM:          rec.Float("bpm"),
		})
	})
	out.Rejected = rejected
	return out, err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
