package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PratikDhanave/lexie-analytics/internal/config"
	"github.com/PratikDhanave/lexie-analytics/internal/handlers"
	"github.com/PratikDhanave/lexie-analytics/internal/httpserver"
	"github.com/PratikDhanave/lexie-analytics/internal/ingest"
	"github.com/PratikDhanave/lexie-analytics/internal/logger"
	"github.com/PratikDhanave/lexie-analytics/internal/report"
	"github.com/PratikDhanave/lexie-analytics/internal/store"
)

// main boots the service: config → logger → store → schema → HTTP server.
func main() {
	// Load runtime config from environment (DB_URL, STORE_DRIVER, ...).
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	lg := logger.Init(cfg.LogLevel, cfg.LogFormat)

	st, err := openStore(cfg)
	if err != nil {
		lg.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer st.Close()

	renderer, err := report.New()
	if err != nil {
		lg.Fatal().Err(err).Msg("parse report templates")
	}

	svc := ingest.NewService(st, lg, cfg.IngestConcurrency)
	pages := handlers.NewPages(st, renderer, lg, cfg.ReadTimeout, cfg.FeedbackListLimit)

	// Build HTTP router (public ingestion + key-gated pages).
	router := httpserver.NewRouter(cfg, st, svc, pages, lg)

	lg.Info().Str("addr", cfg.HTTPAddr).Str("driver", cfg.StoreDriver).Msg("server started")
	if err := router.Run(cfg.HTTPAddr); err != nil {
		lg.Error().Err(err).Msg("server stopped")
		st.Close()
		os.Exit(1)
	}
}

// openStore connects the configured driver. Postgres tables are created on
// boot so a fresh database works out-of-the-box.
func openStore(cfg config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return store.NewMemoryStore(), nil
	}

	pg, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
