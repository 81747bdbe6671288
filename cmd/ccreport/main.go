package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aevon-lab/cc-reporting/internal/aggregation"
	corecfg "github.com/aevon-lab/cc-reporting/internal/core/config"
	"github.com/aevon-lab/cc-reporting/internal/core/storage/postgres"
	"github.com/aevon-lab/cc-reporting/internal/ingestion"
	"github.com/aevon-lab/cc-reporting/internal/migrations"
	"github.com/aevon-lab/cc-reporting/internal/nlquery"
	"github.com/aevon-lab/cc-reporting/internal/server"
	"github.com/aevon-lab/cc-reporting/internal/upstream"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg.String())

	// 2. Initialize Storage (PostgreSQL)
	db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		db.Close()
		os.Exit(1)
	}

	store, err := postgres.NewAdapter(db)
	if err != nil {
		slog.Error("Failed to initialize record store", "error", err)
		db.Close()
		os.Exit(1)
	}
	defer store.Close()

	// 3. Initialize Upstream Client
	client := upstream.NewClient(cfg.Upstream.BaseURL, upstream.Options{
		PageSize: cfg.Upstream.PageSize,
		MaxPages: cfg.Upstream.MaxPages,
		Timeout:  cfg.Upstream.Timeout,
	})

	// 4. Initialize Sync Manager
	manager := ingestion.NewManager(store, client, store, ingestion.Options{
		Coalesce: cfg.Sync.Coalesce,
	})

	// 5. Initialize Aggregation (report API)
	reports := aggregation.NewService(store.DB(), manager, store)

	// 6. Initialize NL Query Planner
	planner := nlquery.NewPlanner(
		nlquery.NewOpenAICompleter(cfg.Assistant.APIKey, cfg.Assistant.BaseURL, cfg.Assistant.Model),
		store.DB(),
		nlquery.Options{
			MaxRows:          cfg.Assistant.MaxRows,
			AssistantTimeout: cfg.Assistant.Timeout,
		},
	)
	if cfg.Assistant.APIKey == "" {
		slog.Warn("No assistant API key configured, natural-language reports will return 503")
	}

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store.DB(), cfg.Server.Mode, cfg.Server.MaxBodySizeMB)
	manager.RegisterRoutes(srv.API)
	reports.RegisterRoutes(srv.API)
	planner.RegisterRoutes(srv.API)

	// 8. Start Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Sync.DirectoryRefreshInterval > 0 {
		scheduler := ingestion.NewScheduler(cfg.Sync.DirectoryRefreshInterval, cfg.Sync.ServiceCallerID, manager)
		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		slog.Info("Agent directory scheduler disabled by config")
	}

	// HTTP server blocks until the context is cancelled.
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
