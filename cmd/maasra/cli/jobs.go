package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/maasra-erp/maasra/jobs"
)

// ErrUsage is returned for unknown or incomplete commands.
var ErrUsage = errors.New("usage: maasra jobs trigger <snapshot:prune|snapshot:archive|snapshot:republish> [keep] | jobs stats | jobs scheduled [size]")

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers against the given Redis.
func NewJobsCLI(opts asynq.RedisClientOpt) (*JobsCLI, error) {
	client := asynq.NewClient(opts)
	inspector := asynq.NewInspector(opts)
	return &JobsCLI{client: client, inspector: inspector}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Run dispatches "jobs <subcommand>" arguments and writes JSON results to w.
func (c *JobsCLI) Run(ctx context.Context, args []string, w io.Writer) error {
	if len(args) < 2 || args[0] != "jobs" {
		return ErrUsage
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	switch args[1] {
	case "trigger":
		if len(args) < 3 {
			return ErrUsage
		}
		keep := 0
		if len(args) > 3 {
			n, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("jobs cli: keep %q: %w", args[3], err)
			}
			keep = n
		}
		info, err := c.Trigger(ctx, args[2], keep)
		if err != nil {
			return err
		}
		return enc.Encode(map[string]string{"task_id": info.ID, "type": info.Type, "queue": info.Queue})
	case "stats":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(stats)
	case "scheduled":
		size := 0
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("jobs cli: size %q: %w", args[2], err)
			}
			size = n
		}
		tasks, err := c.ListScheduled(ctx, size)
		if err != nil {
			return err
		}
		out := make([]map[string]string, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, map[string]string{"task_id": t.ID, "type": t.Type, "next_process_at": t.NextProcessAt.UTC().Format("2006-01-02T15:04:05Z")})
		}
		return enc.Encode(out)
	default:
		return ErrUsage
	}
}

// BuildTask prepares the task for a supported job name. keep only applies to
// snapshot:prune.
func BuildTask(name string, keep int) (*asynq.Task, error) {
	switch name {
	case jobs.TaskSnapshotPrune:
		return jobs.NewSnapshotPruneTask(keep)
	case jobs.TaskSnapshotArchive:
		return jobs.NewSnapshotArchiveTask("cli")
	case jobs.TaskSnapshotRepublish:
		return jobs.NewSnapshotRepublishTask()
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string, keep int) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := BuildTask(name, keep)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// ListScheduled returns scheduled task infos for observability.
func (c *JobsCLI) ListScheduled(ctx context.Context, size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}
