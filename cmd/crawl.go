package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/api"
	"github.com/TheBoringBakery/MoonCaker/internal/config"
	"github.com/TheBoringBakery/MoonCaker/internal/crawler"
	"github.com/TheBoringBakery/MoonCaker/internal/keygate"
	"github.com/TheBoringBakery/MoonCaker/internal/logging"
	"github.com/TheBoringBakery/MoonCaker/internal/riot"
	"github.com/TheBoringBakery/MoonCaker/internal/store"
	"github.com/TheBoringBakery/MoonCaker/internal/store/memory"
	"github.com/TheBoringBakery/MoonCaker/internal/store/postgres"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs the
// crawl loop until interrupted.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Starts the ranked match crawl",
		Long: `Walks every configured region/tier/division partition page by page,
storing the matches it discovers. The loop restarts from the first partition
once all of them are exhausted and runs until interrupted.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	if dryRun {
		// Config reads the environment, so the flag folds into the same
		// MOONCAKER_* channel the rest of the knobs use.
		if err := os.Setenv("MOONCAKER_CRAWL_DRY_RUN", "true"); err != nil {
			return err
		}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	key, err := cfg.Riot.ResolveAPIKey()
	if err != nil {
		return err
	}
	gate := keygate.New(key)
	gate.OnRequest(func() {
		logger.Warn("upstream rejected the API credential; supply a fresh one via POST /api/key")
	})

	transport := riot.NewTransport(riot.TransportConfig{
		Key:               gate.Current,
		RequestsPerSecond: cfg.Riot.RequestsPerSecond,
		Timeout:           cfg.Riot.Timeout(),
	})
	client := riot.NewClient(transport, gate, logger)

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewServer(gate, st, logger).Handler(),
	}
	go func() {
		logger.Info("ops server listening", zap.String("addr", httpSrv.Addr))
		if serr := httpSrv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			logger.Error("ops server failed", zap.Error(serr))
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("ops server shutdown failed", zap.Error(serr))
		}
	}()

	engine := crawler.New(client, st, crawler.Config{
		Regions:   cfg.Crawl.Regions,
		Tiers:     cfg.Crawl.Tiers,
		Divisions: cfg.Crawl.Divisions,
		BatchSize: cfg.Crawl.BatchSize,
	}, logger)

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}

	logger.Info("crawl stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.Crawl.DryRun {
		logger.Info("dry run enabled, using in-memory store")
		return memory.New(), func() {}, nil
	}

	pg, err := postgres.New(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pg, pg.Close, nil
}
