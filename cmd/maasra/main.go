package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/maasra-erp/maasra/cmd/maasra/cli"
	"github.com/maasra-erp/maasra/internal/app"
	"github.com/maasra-erp/maasra/internal/ledger"
	"github.com/maasra-erp/maasra/internal/observability"
	"github.com/maasra-erp/maasra/internal/platform/cache"
	"github.com/maasra-erp/maasra/internal/platform/db"
	"github.com/maasra-erp/maasra/internal/shared"
	"github.com/maasra-erp/maasra/internal/snapshot"
	"github.com/maasra-erp/maasra/jobs"
)

// versionGauge exposes the last persisted ledger version as a metric.
type versionGauge struct {
	metrics *observability.Metrics
}

func (g versionGauge) Publish(_ context.Context, snap snapshot.Snapshot) error {
	g.metrics.SetSnapshotVersion(snap.Version)
	return nil
}

// archiveEnqueuer returns nil when no bucket is configured; the worker only
// registers the archive handler in that case.
func archiveEnqueuer(s3 snapshot.S3Config, client *jobs.Client) jobs.ArchiveEnqueuer {
	if !s3.Enabled() || client == nil {
		return nil
	}
	return client
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		if err := runCLI(ctx, cfg, os.Args[1:]); err != nil {
			logger.Error("command failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.Postgres("api"))
	if err != nil {
		return err
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	repo := snapshot.NewPostgresRepository(dbpool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	store := ledger.NewStore(
		ledger.WithSettings(cfg.LedgerSettings()),
		ledger.WithRecorder(metrics),
	)
	publisher := snapshot.Fanout{snapshot.NewRedisMirror(redisClient), versionGauge{metrics: metrics}}
	syncer := snapshot.NewSyncer(store, repo, publisher, logger, cfg.SnapshotSyncInterval)
	if err := syncer.Restore(ctx); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	inspector := asynq.NewInspector(cfg.Redis().Asynq())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(cfg.Redis().Asynq())
	if err != nil {
		return err
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: ledger.NewHandler(logger, store),
		JobHandler:    jobs.NewHandler(inspector, archiveEnqueuer(cfg.S3(), jobClient), logger),
		Metrics:       metrics,
		Idempotency:   shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL),
		Version:       store.Version,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.Int64("ledger_version", store.Version()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return syncer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runCLI(ctx context.Context, cfg *app.Config, args []string) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.Redis().Asynq())
	if err != nil {
		return err
	}
	defer func() { _ = jobsCLI.Close() }()
	return jobsCLI.Run(ctx, args, os.Stdout)
}
