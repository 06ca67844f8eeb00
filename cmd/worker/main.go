package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/maasra-erp/maasra/internal/app"
	jobmetrics "github.com/maasra-erp/maasra/internal/jobs"
	"github.com/maasra-erp/maasra/internal/platform/cache"
	"github.com/maasra-erp/maasra/internal/platform/db"
	"github.com/maasra-erp/maasra/internal/snapshot"
	"github.com/maasra-erp/maasra/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.Postgres("worker"))
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)
	repo := snapshot.NewPostgresRepository(pool)
	mirror := snapshot.NewRedisMirror(redisClient)

	pruneJob := jobs.NewSnapshotPruneJob(repo, logger, metrics)
	republishJob := jobs.NewSnapshotRepublishJob(repo, mirror, logger, metrics)

	pruneTask, err := jobs.NewSnapshotPruneTask(cfg.SnapshotRetain)
	if err != nil {
		logger.Error("build prune task", slog.Any("error", err))
		os.Exit(1)
	}
	republishTask, err := jobs.NewSnapshotRepublishTask()
	if err != nil {
		logger.Error("build republish task", slog.Any("error", err))
		os.Exit(1)
	}

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskSnapshotPrune, Handler: pruneJob.Handle},
		{Type: jobs.TaskSnapshotRepublish, Handler: republishJob.Handle},
	}
	cron := []jobs.CronRegistration{
		{Spec: "0 * * * *", Task: pruneTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		{Spec: "*/10 * * * *", Task: republishTask},
	}

	if s3cfg := cfg.S3(); s3cfg.Enabled() {
		s3Client, err := snapshot.NewS3Client(ctx, s3cfg)
		if err != nil {
			logger.Error("init s3 client", slog.Any("error", err))
			os.Exit(1)
		}
		archiveJob := jobs.NewSnapshotArchiveJob(repo, snapshot.NewArchiver(s3Client, s3cfg.Bucket), logger, metrics)
		archiveTask, err := jobs.NewSnapshotArchiveTask("nightly")
		if err != nil {
			logger.Error("build archive task", slog.Any("error", err))
			os.Exit(1)
		}
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskSnapshotArchive, Handler: archiveJob.Handle})
		cron = append(cron, jobs.CronRegistration{Spec: "30 2 * * *", Task: archiveTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	} else {
		logger.Info("s3 archive disabled, snapshot:archive tasks will not be handled")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.Redis().Asynq(),
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
