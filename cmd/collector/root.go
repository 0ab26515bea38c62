package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/cache"
	"github.com/fortuna/bbref/internal/config"
	"github.com/fortuna/bbref/internal/events"
	"github.com/fortuna/bbref/internal/ingest/bbref"
	"github.com/fortuna/bbref/internal/logger"
	"github.com/fortuna/bbref/internal/publisher"
	"github.com/fortuna/bbref/internal/runner"
	"github.com/fortuna/bbref/internal/store"
)

var (
	configFile string
	envDir     string
	dsn        string
	debug      bool
	noDelay    bool
)

var rootCmd = &cobra.Command{
	Use:           "collector",
	Short:         "collector scrapes basketball-reference.com into a local database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file (default: ./config.yaml if present)")
	flags.StringVar(&envDir, "env-dir", ".", "Directory holding .env and .env.local")
	flags.StringVar(&dsn, "dsn", "", "Database DSN, overrides database.dsn")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&noDelay, "no-delay", false, "Disable politeness delays (only for local mirrors)")
}

// app holds everything a subcommand needs. close releases it in reverse order.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *store.Database
	redis   *cache.RedisCache
	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// setup loads configuration and opens the database. Migrations are applied
// and runs left running by a crashed process are marked failed.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFile, envDir)
	if err != nil {
		return nil, err
	}
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	if debug {
		cfg.Debug = true
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &app{cfg: cfg, logger: log}

	db, err := store.NewDatabase(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	if err := db.RunMigrations(ctx); err != nil {
		a.close()
		return nil, err
	}

	if n, err := runner.NewRepository(db).ResetStuck(ctx); err != nil {
		a.close()
		return nil, err
	} else if n > 0 {
		log.Warn("marked interrupted runs as failed", zap.Int64("runs", n))
	}

	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.PageTTL)
		if err != nil {
			// the cache and the event stream are optional
			log.Warn("redis unavailable, continuing without page cache and event stream", zap.Error(err))
		} else {
			a.redis = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	return a, nil
}

// client builds the page fetcher, backed by redis when it is reachable.
func (a *app) client() (*bbref.Client, error) {
	var pages bbref.PageCache
	if a.redis != nil {
		pages = a.redis
	}
	return bbref.NewClient(a.cfg.ClientConfig(), pages, a.logger)
}

// runner wires the ingester, the reporters and the run history together.
func (a *app) runner() (*runner.Runner, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	reporter := events.Multi{events.NewLogReporter(a.logger)}
	if a.redis != nil {
		reporter = append(reporter, publisher.NewRedisStreamPublisher(a.redis.Client(), a.cfg.Redis.Stream, a.logger))
	}

	policies := a.cfg.Policies(noDelay)
	if noDelay {
		a.logger.Warn("politeness delays disabled")
	}

	ingester := bbref.NewIngester(a.db, client, policies, reporter, a.logger)
	return runner.NewRunner(a.db, ingester, reporter, a.logger), nil
}

// withApp adapts a subcommand body to cobra, handling setup and teardown.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}
