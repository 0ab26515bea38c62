package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/api/rest"
	"github.com/fortuna/bbref/internal/api/websocket"
	"github.com/fortuna/bbref/internal/cache"
	"github.com/fortuna/bbref/internal/config"
	"github.com/fortuna/bbref/internal/logger"
	"github.com/fortuna/bbref/internal/store"
)

const (
	serviceName    = "bbref-api"
	serviceVersion = "1.0.0"
)

func main() {
	var (
		configFile = flag.String("config", "", "YAML config file (default: ./config.yaml if present)")
		envDir     = flag.String("env-dir", ".", "Directory holding .env and .env.local")
		port       = flag.Int("port", 0, "Listen port, overrides server.port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile, *envDir)
	if err != nil {
		logger.Must(false).Fatal("failed to load config", zap.Error(err))
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.Must(cfg.Debug)
	defer log.Sync()

	log.Info("starting", zap.String("service", serviceName), zap.String("version", serviceVersion))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDatabase(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal("failed to run database migrations", zap.Error(err))
	}
	log.Info("database ready", zap.String("dialect", string(db.Dialect())))

	// The progress feed needs redis; without it the API serves stored data only.
	var feed http.Handler
	hub := websocket.NewHub()
	defer hub.Close()

	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.PageTTL)
		if err != nil {
			log.Warn("redis unavailable, progress feed disabled", zap.Error(err))
		} else {
			defer rc.Close()
			feed = websocket.NewServer(hub, log)
			go func() {
				if err := websocket.Relay(ctx, rc.Client(), cfg.Redis.Stream, hub, log); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("event relay stopped", zap.Error(err))
				}
			}()
			log.Info("progress feed enabled", zap.String("stream", cfg.Redis.Stream))
		}
	}

	server := rest.NewServer(cfg.Server.Port, rest.NewHandler(db, log), feed, log)
	go func() {
		log.Info("REST API listening", zap.Int("port", cfg.Server.Port))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("REST server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("REST server shutdown error", zap.Error(err))
	}
	log.Info("stopped")
}
