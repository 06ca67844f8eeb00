package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	reasons []string
	err     error
}

func (e *stubEnqueuer) EnqueueSnapshotArchive(_ context.Context, reason string) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.reasons = append(e.reasons, reason)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func jobsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := httptest.NewRecorder()
	jobsRouter(NewHandler(nil, nil, discardLogger())).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body queueHealth
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, QueueDefault, body.Queue)
	require.Zero(t, body.Pending)
}

func TestArchiveEndpointEnqueues(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	router := jobsRouter(NewHandler(nil, enqueuer, discardLogger()))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/snapshot-archive", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)

	var body enqueued
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "task-1", body.TaskID)
	require.Equal(t, []string{"manual"}, enqueuer.reasons)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/snapshot-archive?reason=end-of-day", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, []string{"manual", "end-of-day"}, enqueuer.reasons)
}

func TestArchiveEndpointFailures(t *testing.T) {
	rr := httptest.NewRecorder()
	jobsRouter(NewHandler(nil, nil, discardLogger())).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/snapshot-archive", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	jobsRouter(NewHandler(nil, &stubEnqueuer{err: errors.New("redis down")}, discardLogger())).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/snapshot-archive", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestTaskConstructorsDefaults(t *testing.T) {
	task, err := NewSnapshotPruneTask(0)
	require.NoError(t, err)
	require.Equal(t, TaskSnapshotPrune, task.Type())
	var prune SnapshotPrunePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &prune))
	require.Equal(t, DefaultSnapshotRetain, prune.Keep)

	task, err = NewSnapshotArchiveTask("")
	require.NoError(t, err)
	var archive SnapshotArchivePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &archive))
	require.Equal(t, "scheduled", archive.Reason)
}
