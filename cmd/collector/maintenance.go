package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/export"
	"github.com/fortuna/bbref/internal/runner"
	"github.com/fortuna/bbref/internal/store/repository"
)

var (
	exportOut  string
	exportTeam string
	fetchOut   string
	runsLimit  int
)

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			// setup already applied them
			a.logger.Info("migrations applied", zap.String("dialect", string(a.db.Dialect())))
			return nil
		}),
	}

	dedupeCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Delete players that duplicate an older row.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			n, err := repository.NewPlayerRepository(a.db).RemoveDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("duplicate players removed", zap.Int64("rows", n))
			return nil
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export [--out player_info.csv]",
		Short: "Write the players table to a CSV file.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			n, err := export.Players(cmd.Context(), repository.NewPlayerRepository(a.db), exportTeam, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.logger.Info("players exported", zap.String("file", exportOut), zap.Int("players", n))
			return nil
		}),
	}
	exportCmd.Flags().StringVar(&exportOut, "out", "player_info.csv", "Output file")
	exportCmd.Flags().StringVar(&exportTeam, "team", "", "Only export one team")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print table counts and recent runs.",
		Args:  cobra.NoArgs,
		RunE:  withApp(printSummary),
	}
	summaryCmd.Flags().IntVar(&runsLimit, "runs", 10, "Number of recent runs to list")

	fetchCmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download one page through the page cache, for building fixtures.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			body, err := client.Fetch(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			if fetchOut == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return os.WriteFile(fetchOut, []byte(body), 0o644)
		}),
	}
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "Write the page to a file instead of stdout")

	rootCmd.AddCommand(migrateCmd, dedupeCmd, exportCmd, summaryCmd, fetchCmd)
}

func printSummary(cmd *cobra.Command, _ []string, a *app) error {
	ctx := cmd.Context()
	players := repository.NewPlayerRepository(a.db)
	games := repository.NewGameLogRepository(a.db)
	boxes := repository.NewBoxScoreRepository(a.db)

	counts := []struct {
		name string
		fn   func() (int, error)
	}{
		{"players", func() (int, error) { return players.Count(ctx) }},
		{"game_logs", func() (int, error) { return games.Count(ctx) }},
		{"box_scores", func() (int, error) { return boxes.CountBasic(ctx) }},
		{"advanced_box_scores", func() (int, error) { return boxes.CountAdvanced(ctx) }},
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Table", "Rows"})
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{c.name, n})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	runs, err := runner.NewRepository(a.db).ListRecent(ctx, runsLimit)
	if err != nil {
		return err
	}

	rt := table.NewWriter()
	rt.SetOutputMirror(cmd.OutOrStdout())
	rt.AppendHeader(table.Row{"Run", "Job", "Status", "Items", "Ingested", "Skipped", "Inserted", "Duplicate", "Rejected", "Started", "Took"})
	for _, r := range runs {
		took := "-"
		if r.FinishedAt.Valid {
			took = r.FinishedAt.Time.Sub(r.StartedAt).Round(time.Second).String()
		}
		rt.AppendRow(table.Row{
			shortID(r.ID), r.Job, r.Status, r.ItemsTotal, r.Ingested, r.Skipped,
			r.RowsInserted, r.RowsDuplicate, r.RowsRejected,
			r.StartedAt.Local().Format("2006-01-02 15:04"), took,
		})
	}
	rt.SetStyle(table.StyleRounded)
	rt.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
