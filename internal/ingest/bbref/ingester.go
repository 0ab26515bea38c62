package bbref

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/events"
	"github.com/fortuna/bbref/internal/scrape"
	"github.com/fortuna/bbref/internal/store"
	"github.com/fortuna/bbref/internal/store/repository"
)

// Pipeline names, also used as politeness policy keys.
const (
	JobRoster      = "roster"
	JobURLs        = "urls"
	JobPlayerStats = "player_stats"
	JobSchedule    = "schedule"
	JobBoxScores   = "boxscores"
	JobAdvanced    = "advanced"
)

// ErrNoSeason means a player page has no regular season row.
var ErrNoSeason = errors.New("no regular season row")

// StoreError wraps a store failure. It aborts the run instead of skipping an item.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "store: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Ingester runs the fetch, extract and upsert pipelines against one store.
type Ingester struct {
	db       *store.Database
	players  *repository.PlayerRepository
	games    *repository.GameLogRepository
	boxes    *repository.BoxScoreRepository
	client   *Client
	policies map[string]Policy
	reporter events.Reporter
	logger   *zap.Logger
}

// NewIngester creates an ingester. policies is keyed by pipeline name; a
// missing entry means no delay.
func NewIngester(db *store.Database, client *Client, policies map[string]Policy, reporter events.Reporter, logger *zap.Logger) *Ingester {
	if reporter == nil {
		reporter = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		db:       db,
		players:  repository.NewPlayerRepository(db),
		games:    repository.NewGameLogRepository(db),
		boxes:    repository.NewBoxScoreRepository(db),
		client:   client,
		policies: policies,
		reporter: reporter,
		logger:   logger,
	}
}

// WithReporter returns a copy of the ingester that reports to r.
func (in *Ingester) WithReporter(r events.Reporter) *Ingester {
	cpy := *in
	cpy.reporter = r
	return &cpy
}

func (in *Ingester) pacer(job string) *Pacer {
	return NewPacer(in.policies[job])
}

type itemFunc func(ctx context.Context, index int, ev *events.Event) error

// run drives one pipeline over its work list. A failing item is reported as
// skipped and the loop moves on; only a StoreError or cancellation ends the run.
func (in *Ingester) run(ctx context.Context, job string, items []string, pacer *Pacer, fn itemFunc) (events.Summary, error) {
	sum := events.Summary{Job: job, Items: len(items)}
	in.reporter.OnJobStart(job, len(items))

	if len(items) > 0 {
		if err := pacer.StartBatch(ctx); err != nil {
			return sum, in.fail(job, err)
		}
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return sum, in.fail(job, err)
		}

		ev := events.Event{Job: job, Item: item, Index: i + 1, Total: len(items)}
		err := fn(ctx, i, &ev)

		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return sum, in.fail(job, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return sum, in.fail(job, ctxErr)
		}

		ev.Outcome = events.OutcomeIngested
		if err != nil {
			ev.Outcome = events.OutcomeSkipped
			ev.Reason = err.Error()
		}
		ev.Time = time.Now().UTC()

		sum.Record(ev)
		in.reporter.OnItem(ev)
	}

	in.reporter.OnJobComplete(sum)
	return sum, nil
}

func (in *Ingester) fail(job string, err error) error {
	in.reporter.OnJobError(job, err)
	return fmt.Errorf("%s: %w", job, err)
}

// write runs fn in its own transaction and marks any failure as a store error.
func (in *Ingester) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := in.db.WithTx(ctx, fn); err != nil {
		return &StoreError{Err: err}
	}
	return nil
}

func (in *Ingester) noteRejected(ev *events.Event, rejected []error) {
	ev.Rejected += len(rejected)
	for _, err := range rejected {
		in.logger.Warn("row rejected",
			zap.String("job", ev.Job),
			zap.String("item", ev.Item),
			zap.Error(err),
		)
	}
}

func count(ev *events.Event, inserted bool) {
	if inserted {
		ev.Inserted++
	} else {
		ev.Duplicates++
	}
}

// IngestRosters stores every roster entry of the given teams for a season.
// Entries whose natural key is already stored are left alone.
func (in *Ingester) IngestRosters(ctx context.Context, teams []string, season int) (events.Summary, error) {
	pacer := in.pacer(JobRoster)

	return in.run(ctx, JobRoster, teams, pacer, func(ctx context.Context, i int, ev *events.Event) error {
		team := teams[i]
		doc, err := in.client.Document(ctx, RosterURL(in.client.BaseURL(), team, season), pacer)
		if err != nil {
			return err
		}
		parsed, err := ParseRoster(doc, team)
		if err != nil {
			return err
		}
		in.noteRejected(ev, parsed.Rejected)

		return in.write(ctx, func(tx *sql.Tx) error {
			repo := in.players.WithTx(tx)
			for _, p := range parsed.Rows {
				inserted, err := repo.Insert(ctx, p)
				if err != nil {
					return err
				}
				if !inserted {
					in.logger.Debug("duplicate player skipped",
						zap.String("name", p.Name),
						zap.String("team", p.Team),
					)
				}
				count(ev, inserted)
			}
			return nil
		})
	})
}

// AssignPlayerURLs gives every player without a profile URL a unique one.
// A name that cannot form a URL, or whose counters are exhausted, is skipped.
func (in *Ingester) AssignPlayerURLs(ctx context.Context) (events.Summary, error) {
	pending, err := in.players.ListWithoutURL(ctx)
	if err != nil {
		return events.Summary{Job: JobURLs}, in.fail(JobURLs, &StoreError{Err: err})
	}
	taken, err := in.players.AssignedURLs(ctx)
	if err != nil {
		return events.Summary{Job: JobURLs}, in.fail(JobURLs, &StoreError{Err: err})
	}

	names := make([]string, len(pending))
	for i, p := range pending {
		names[i] = p.Name
	}

	return in.run(ctx, JobURLs, names, nil, func(ctx context.Context, i int, ev *events.Event) error {
		p := pending[i]
		u, err := ProfileURL(in.client.BaseURL(), p.Name, taken)
		if err != nil {
			return fmt.Errorf("player %d %q: %w", p.ID, p.Name, err)
		}

		var assigned bool
		err = in.write(ctx, func(tx *sql.Tx) error {
			assigned, err = in.players.WithTx(tx).AssignURL(ctx, p.ID, u)
			return err
		})
		if err != nil {
			return err
		}

		taken[u] = struct{}{}
		ev.Item = p.Name + " " + u
		count(ev, assigned)
		return nil
	})
}

// IngestPlayerStats refreshes the season snapshot of every player with a URL.
func (in *Ingester) IngestPlayerStats(ctx context.Context) (events.Summary, error) {
	players, err := in.players.ListWithURL(ctx)
	if err != nil {
		return events.Summary{Job: JobPlayerStats}, in.fail(JobPlayerStats, &StoreError{Err: err})
	}

	urls := make([]string, len(players))
	for i, p := range players {
		urls[i] = p.URL.String
	}

	pacer := in.pacer(JobPlayerStats)
	return in.run(ctx, JobPlayerStats, urls, pacer, func(ctx context.Context, i int, ev *events.Event) error {
		doc, err := in.client.Document(ctx, urls[i], pacer)
		if err != nil {
			return err
		}
		stats, err := ParseSeasonStats(doc)
		if errors.Is(err, scrape.ErrMalformedCell) {
			in.noteRejected(ev, []error{err})
		}
		if err != nil {
			return err
		}

		return in.write(ctx, func(tx *sql.Tx) error {
			n, err := in.players.WithTx(tx).UpdateSeasonStats(ctx, urls[i], stats)
			ev.Inserted += int(n)
			return err
		})
	})
}

type monthPage struct {
	season int
	month  string
}

// IngestSchedule stores the games of every season and month page.
func (in *Ingester) IngestSchedule(ctx context.Context, seasons []int, months []string) (events.Summary, error) {
	var (
		pages []monthPage
		items []string
	)
	for _, season := range seasons {
		for _, month := range months {
			pages = append(pages, monthPage{season: season, month: month})
			items = append(items, fmt.Sprintf("%d-%s", season, month))
		}
	}

	pacer := in.pacer(JobSchedule)
	base := in.client.BaseURL()
	return in.run(ctx, JobSchedule, items, pacer, func(ctx context.Context, i int, ev *events.Event) error {
		page := pages[i]
		doc, err := in.client.Document(ctx, ScheduleURL(base, page.season, page.month), pacer)
		if err != nil {
			return err
		}
		parsed, err := ParseSchedule(doc, page.season, page.month, base)
		if err != nil {
			return err
		}
		in.noteRejected(ev, parsed.Rejected)

		return in.write(ctx, func(tx *sql.Tx) error {
			repo := in.games.WithTx(tx)
			for _, g := range parsed.Rows {
				inserted, err := repo.Insert(ctx, g)
				if err != nil {
					return err
				}
				count(ev, inserted)
			}
			return nil
		})
	})
}

// IngestBoxScores stores the basic box score of every game linked from the schedule.
func (in *Ingester) IngestBoxScores(ctx context.Context) (events.Summary, error) {
	links, err := in.games.BoxScoreLinks(ctx)
	if err != nil {
		return events.Summary{Job: JobBoxScores}, in.fail(JobBoxScores, &StoreError{Err: err})
	}

	pacer := in.pacer(JobBoxScores)
	return in.run(ctx, JobBoxScores, links, pacer, func(ctx context.Context, i int, ev *events.Event) error {
		doc, err := in.client.Document(ctx, links[i], pacer)
		if err != nil {
			return err
		}
		parsed, err := ParseBoxScores(doc, links[i])
		if err != nil {
			return err
		}
		in.noteRejected(ev, parsed.Rejected)

		return in.write(ctx, func(tx *sql.Tx) error {
			repo := in.boxes.WithTx(tx)
			for _, line := range parsed.Rows {
				inserted, err := repo.InsertBasic(ctx, line)
				if err != nil {
					return err
				}
				count(ev, inserted)
			}
			return nil
		})
	})
}

// IngestAdvancedBoxScores stores the advanced box score of every game linked
// from the schedule.
func (in *Ingester) IngestAdvancedBoxScores(ctx context.Context) (events.Summary, error) {
	links, err := in.games.BoxScoreLinks(ctx)
	if err != nil {
		return events.Summary{Job: JobAdvanced}, in.fail(JobAdvanced, &StoreError{Err: err})
	}

	pacer := in.pacer(JobAdvanced)
	return in.run(ctx, JobAdvanced, links, pacer, func(ctx context.Context, i int, ev *events.Event) error {
		doc, err := in.client.Document(ctx, links[i], pacer)
		if err != nil {
			return err
		}
		parsed, err := ParseAdvancedBoxScores(doc, links[i])
		if err != nil {
			return err
		}
		in.noteRejected(ev, parsed.Rejected)

		return in.write(ctx, func(tx *sql.Tx) error {
			repo := in.boxes.WithTx(tx)
			for _, line := range parsed.Rows {
				inserted, err := repo.InsertAdvanced(ctx, line)
				if err != nil {
					return err
				}
				count(ev, inserted)
			}
			return nil
		})
	})
}
