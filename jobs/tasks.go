package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotPrune trims old ledger snapshots.
	TaskSnapshotPrune = "snapshot:prune"
	// TaskSnapshotArchive uploads the latest ledger snapshot to object storage.
	TaskSnapshotArchive = "snapshot:archive"
	// TaskSnapshotRepublish rewrites the Redis mirror from the durable snapshot.
	TaskSnapshotRepublish = "snapshot:republish"

	// DefaultSnapshotRetain is how many snapshots prune keeps when the payload
	// leaves it unset.
	DefaultSnapshotRetain = 50
)

// SnapshotPrunePayload configures the retention job.
type SnapshotPrunePayload struct {
	Keep int `json:"keep"`
}

// SnapshotArchivePayload tags an archive request with its trigger.
type SnapshotArchivePayload struct {
	Reason string `json:"reason"`
}

// SnapshotRepublishPayload is empty; the job always republishes the latest
// snapshot.
type SnapshotRepublishPayload struct{}

// NewSnapshotPruneTask creates the retention task.
func NewSnapshotPruneTask(keep int) (*asynq.Task, error) {
	if keep <= 0 {
		keep = DefaultSnapshotRetain
	}
	return newTask(TaskSnapshotPrune, SnapshotPrunePayload{Keep: keep}, asynq.MaxRetry(3))
}

// NewSnapshotArchiveTask creates an archive task.
func NewSnapshotArchiveTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = "scheduled"
	}
	return newTask(TaskSnapshotArchive, SnapshotArchivePayload{Reason: reason}, asynq.MaxRetry(5))
}

// NewSnapshotRepublishTask creates a mirror republish task.
func NewSnapshotRepublishTask() (*asynq.Task, error) {
	return newTask(TaskSnapshotRepublish, SnapshotRepublishPayload{}, asynq.MaxRetry(1))
}

func newTask(typ string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts = append(opts, asynq.Queue(QueueDefault))
	return asynq.NewTask(typ, body, opts...), nil
}
