package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/runner"
)

var (
	teams     []string
	season    int
	startYear int
	endYear   int
	months    []string
)

func init() {
	for _, job := range []struct {
		use, short string
		typ        runner.JobType
	}{
		{"roster", "Scrape the roster of every team for one season.", runner.JobTypeRoster},
		{"urls", "Allocate profile URLs for players that have none.", runner.JobTypeURLs},
		{"player-stats", "Refresh the latest season averages of every player with a URL.", runner.JobTypePlayerStats},
		{"schedule", "Scrape the monthly schedule pages of a season range.", runner.JobTypeSchedule},
		{"boxscores", "Scrape the basic box score of every scheduled game.", runner.JobTypeBoxScores},
		{"advanced", "Scrape the advanced box score of every scheduled game.", runner.JobTypeAdvanced},
		{"all", "Run every pipeline in order.", runner.JobTypeAll},
	} {
		cmd := &cobra.Command{
			Use:   job.use,
			Short: job.short,
			Args:  cobra.NoArgs,
			RunE:  withApp(runJob(job.typ)),
		}
		addJobFlags(cmd, job.typ)
		rootCmd.AddCommand(cmd)
	}
}

func addJobFlags(cmd *cobra.Command, typ runner.JobType) {
	flags := cmd.Flags()
	if typ == runner.JobTypeRoster || typ == runner.JobTypeAll {
		flags.StringSliceVar(&teams, "teams", nil, "Team abbreviations (default: all 30)")
		flags.IntVar(&season, "season", 0, "Season end year, overrides season")
	}
	if typ == runner.JobTypeSchedule || typ == runner.JobTypeAll {
		flags.IntVar(&startYear, "start-year", 0, "First season, overrides schedule.start_year")
		flags.IntVar(&endYear, "end-year", 0, "Last season, overrides schedule.end_year")
		flags.StringSliceVar(&months, "months", nil, "Schedule months, overrides schedule.months")
	}
}

// jobSpec merges command-line overrides into the configured defaults.
func jobSpec(a *app, typ runner.JobType) runner.JobSpec {
	cfg := *a.cfg
	if season > 0 {
		cfg.Season = season
	}
	if startYear > 0 {
		cfg.Schedule.StartYear = startYear
	}
	if endYear > 0 {
		cfg.Schedule.EndYear = endYear
	}
	if len(months) > 0 {
		cfg.Schedule.Months = months
	}

	upper := make([]string, len(teams))
	for i, t := range teams {
		upper[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	return runner.JobSpec{
		Type:    typ,
		Teams:   upper,
		Season:  cfg.Season,
		Seasons: cfg.Seasons(),
		Months:  cfg.Schedule.Months,
	}
}

func runJob(typ runner.JobType) func(*cobra.Command, []string, *app) error {
	return func(cmd *cobra.Command, _ []string, a *app) error {
		r, err := a.runner()
		if err != nil {
			return err
		}

		runs, err := r.Run(cmd.Context(), jobSpec(a, typ))
		for _, run := range runs {
			a.logger.Info("run finished",
				zap.String("run_id", run.ID),
				zap.String("job", run.Job),
				zap.String("status", run.Status),
				zap.Int("ingested", run.Ingested),
				zap.Int("skipped", run.Skipped),
				zap.Int("rows_inserted", run.RowsInserted),
				zap.Int("rows_duplicate", run.RowsDuplicate),
				zap.Int("rows_rejected", run.RowsRejected),
			)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", typ, err)
		}
		return nil
	}
}
