package pages_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/api"
	"zimage/internal/app/api/apitest"
	"zimage/internal/app/pages"
	"zimage/internal/pkg/errs"
)

func TestJobTrackerFollowsUntilTerminal(t *testing.T) {
	statuses := []api.JobStatus{api.JobQueued, api.JobRunning, api.JobDone}
	var n atomic.Int32
	client, backend := newAPI(t, func(r chi.Router) {
		r.Get("/api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
			i := min(int(n.Add(1))-1, len(statuses)-1)
			apitest.JSON(w, http.StatusOK, api.Job{ID: chi.URLParam(r, "id"), Status: statuses[i]})
		})
	})

	tracker := pages.NewJobTracker(client.Jobs, 5*time.Millisecond)
	var seen []api.JobStatus
	final, err := tracker.Track(context.Background(), &api.Job{ID: "j1", Status: api.JobQueued}, func(j *api.Job) {
		seen = append(seen, j.Status)
	})

	require.NoError(t, err)
	assert.Equal(t, api.JobDone, final.Status)
	assert.Equal(t, statuses, seen)
	assert.Equal(t, 3, backend.Count(http.MethodGet, "/api/jobs/j1"))
}

func TestJobTrackerTerminalJobIsNotPolled(t *testing.T) {
	client, backend := newAPI(t, func(chi.Router) {})
	tracker := pages.NewJobTracker(client.Jobs, time.Millisecond)

	final, err := tracker.Track(context.Background(), &api.Job{ID: "j1", Status: api.JobFailed}, nil)
	require.NoError(t, err)
	assert.Equal(t, api.JobFailed, final.Status)
	assert.Empty(t, backend.Requests())
}

func TestJobTrackerStopsOnRejection(t *testing.T) {
	client, backend := newAPI(t, func(r chi.Router) {
		r.Get("/api/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
			apitest.Detail(w, http.StatusNotFound, "job not found")
		})
	})
	tracker := pages.NewJobTracker(client.Jobs, 5*time.Millisecond)

	start := &api.Job{ID: "gone", Status: api.JobRunning}
	final, err := tracker.Track(context.Background(), start, nil)
	assert.True(t, errs.Is(err, errs.ErrNotFound))
	assert.Same(t, start, final)
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/api/jobs/gone"))
}

func TestJobTrackerRetriesServerErrorsUntilCancelled(t *testing.T) {
	client, backend := newAPI(t, func(r chi.Router) {
		r.Get("/api/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
	})
	tracker := pages.NewJobTracker(client.Jobs, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := tracker.Track(ctx, &api.Job{ID: "j1", Status: api.JobQueued}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, backend.Count(http.MethodGet, "/api/jobs/j1"), 1)
}
