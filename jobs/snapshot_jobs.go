package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/maasra-erp/maasra/internal/jobs"
	"github.com/maasra-erp/maasra/internal/snapshot"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotPruner removes old snapshot versions.
type SnapshotPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// SnapshotReader returns the newest durable snapshot.
type SnapshotReader interface {
	Latest(ctx context.Context) (snapshot.Snapshot, error)
}

// SnapshotArchiver stores a snapshot in object storage.
type SnapshotArchiver interface {
	Archive(ctx context.Context, snap snapshot.Snapshot) (string, error)
}

// SnapshotPruneJob applies snapshot retention.
type SnapshotPruneJob struct {
	Repo    SnapshotPruner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSnapshotPruneJob constructs the retention handler.
func NewSnapshotPruneJob(repo SnapshotPruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotPruneJob {
	return &SnapshotPruneJob{Repo: repo, Logger: logger, Metrics: metrics}
}

// Handle executes the prune job.
func (j *SnapshotPruneJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("snapshot prune: dependencies not configured")
	}
	var payload SnapshotPrunePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Keep <= 0 {
		payload.Keep = DefaultSnapshotRetain
	}

	tracker := j.metrics().Track(TaskSnapshotPrune)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	removed, err := j.Repo.Prune(ctx, payload.Keep)
	if err != nil {
		resultErr = err
		jobLogger(j.Logger, TaskSnapshotPrune).Error("prune snapshots", slog.Int("keep", payload.Keep), slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddPruned(removed)
	jobLogger(j.Logger, TaskSnapshotPrune).Info("pruned snapshots", slog.Int("keep", payload.Keep), slog.Int64("removed", removed))
	return resultErr
}

func (j *SnapshotPruneJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// SnapshotArchiveJob uploads the latest snapshot.
type SnapshotArchiveJob struct {
	Repo     SnapshotReader
	Archiver SnapshotArchiver
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewSnapshotArchiveJob constructs the archive handler.
func NewSnapshotArchiveJob(repo SnapshotReader, archiver SnapshotArchiver, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotArchiveJob {
	return &SnapshotArchiveJob{Repo: repo, Archiver: archiver, Logger: logger, Metrics: metrics}
}

// Handle executes the archive job.
func (j *SnapshotArchiveJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Repo == nil || j.Archiver == nil {
		return errors.New("snapshot archive: dependencies not configured")
	}
	var payload SnapshotArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskSnapshotArchive)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskSnapshotArchive).With(slog.String("reason", payload.Reason))
	snap, err := j.Repo.Latest(ctx)
	if snapshot.IsMissing(err) {
		logger.Info("no snapshot to archive")
		return resultErr
	}
	if err != nil {
		resultErr = err
		logger.Error("load latest snapshot", slog.Any("error", err))
		return resultErr
	}

	start := time.Now()
	key, err := j.Archiver.Archive(ctx, snap)
	if err != nil {
		resultErr = err
		logger.Error("archive snapshot", slog.Int64("version", snap.Version), slog.Any("error", err))
		return resultErr
	}
	j.metrics().IncArchived()
	logger.Info("archived snapshot", slog.Int64("version", snap.Version), slog.String("key", key), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *SnapshotArchiveJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// SnapshotRepublishJob restores the Redis mirror from the durable store.
type SnapshotRepublishJob struct {
	Repo    SnapshotReader
	Mirror  snapshot.Publisher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSnapshotRepublishJob constructs the republish handler.
func NewSnapshotRepublishJob(repo SnapshotReader, mirror snapshot.Publisher, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotRepublishJob {
	return &SnapshotRepublishJob{Repo: repo, Mirror: mirror, Logger: logger, Metrics: metrics}
}

// Handle executes the republish job.
func (j *SnapshotRepublishJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Repo == nil || j.Mirror == nil {
		return errors.New("snapshot republish: dependencies not configured")
	}
	var payload SnapshotRepublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskSnapshotRepublish)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskSnapshotRepublish)
	snap, err := j.Repo.Latest(ctx)
	if snapshot.IsMissing(err) {
		return resultErr
	}
	if err != nil {
		resultErr = err
		logger.Error("load latest snapshot", slog.Any("error", err))
		return resultErr
	}
	if err := j.Mirror.Publish(ctx, snap); err != nil {
		resultErr = err
		logger.Error("publish snapshot", slog.Int64("version", snap.Version), slog.Any("error", err))
		return resultErr
	}
	logger.Debug("republished snapshot", slog.Int64("version", snap.Version))
	return resultErr
}

func (j *SnapshotRepublishJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}
