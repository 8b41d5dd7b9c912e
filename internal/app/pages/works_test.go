package pages_test

import (
	"context"
	"encoding/json"
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
	"zimage/internal/pkg/confirm"
	"zimage/internal/pkg/errs"
)

func worksBackend(t *testing.T, jobs func() []api.Job) (*api.Client, *apitest.Backend) {
	return newAPI(t, func(r chi.Router) {
		r.Get("/api/jobs", func(w http.ResponseWriter, _ *http.Request) {
			apitest.JSON(w, http.StatusOK, api.JobList{Jobs: jobs(), Total: 2, Page: 1, Limit: 18, TotalPages: 1})
		})
		r.Post("/api/jobs/{id}/publish", apitest.Handler(http.StatusOK, apitest.Success))
		r.Post("/api/jobs/{id}/unpublish", apitest.Handler(http.StatusOK, apitest.Success))
		r.Post("/api/jobs/{id}/cancel", apitest.Handler(http.StatusOK, apitest.Success))
		r.Delete("/api/jobs/{id}", apitest.Handler(http.StatusOK, apitest.Success))
	})
}

func twoJobs() []api.Job {
	return []api.Job{
		{ID: "j1", Status: api.JobDone, Prompt: "a lighthouse"},
		{ID: "j2", Status: api.JobQueued, Prompt: "a forest"},
	}
}

func TestWorksPublishUpdatesLocally(t *testing.T) {
	client, backend := worksBackend(t, twoJobs)
	w := pages.NewWorks(client.Jobs, confirm.Always(true))

	_, err := w.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.Publish(context.Background(), "j1", true))

	job := w.Jobs()[0]
	assert.True(t, job.IsPublic)
	assert.True(t, job.IsAnonymous)
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/api/jobs"), "publishing does not reload")

	var reqs []*http.Request
	for _, r := range backend.Requests() {
		if r.Method == http.MethodPost {
			reqs = append(reqs, r)
		}
	}
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/jobs/j1/publish", reqs[0].URL.Path)
}

func TestWorksDeclinedActionsSendNothing(t *testing.T) {
	client, backend := worksBackend(t, twoJobs)
	w := pages.NewWorks(client.Jobs, confirm.Always(false))
	ctx := context.Background()

	_, err := w.Load(ctx)
	require.NoError(t, err)

	for name, action := range map[string]func() error{
		"unpublish": func() error { return w.Unpublish(ctx, "j1") },
		"cancel":    func() error { return w.Cancel(ctx, "j2") },
		"delete":    func() error { return w.Delete(ctx, "j1") },
	} {
		err := action()
		assert.True(t, errs.Is(err, errs.ErrActionCancelled), name)
	}

	assert.Len(t, backend.Requests(), 1)
	assert.Len(t, w.Jobs(), 2)
}

func TestWorksConfirmedActions(t *testing.T) {
	client, _ := worksBackend(t, twoJobs)
	w := pages.NewWorks(client.Jobs, confirm.Always(true))
	ctx := context.Background()

	_, err := w.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Cancel(ctx, "j2"))
	assert.Equal(t, api.JobCancelled, w.Jobs()[1].Status)
	assert.False(t, w.HasPending())

	require.NoError(t, w.Delete(ctx, "j1"))
	jobs := w.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "j2", jobs[0].ID)
}

func TestWorksWatchRefreshesWhilePending(t *testing.T) {
	var calls atomic.Int32
	jobs := func() []api.Job {
		if calls.Add(1) >= 3 {
			return []api.Job{{ID: "j2", Status: api.JobDone}}
		}
		return twoJobs()
	}
	client, backend := worksBackend(t, jobs)
	w := pages.NewWorks(client.Jobs, confirm.Always(true))

	_, err := w.Load(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	refreshed := make(chan []api.Job, 10)
	w.Watch(ctx, 10*time.Millisecond, func(jobs []api.Job) { refreshed <- jobs })

	assert.Equal(t, 3, backend.Count(http.MethodGet, "/api/jobs"), "polling stops once nothing is pending")
	assert.Len(t, refreshed, 2)
	assert.False(t, w.HasPending())
}

func TestWorksPublishBody(t *testing.T) {
	var body map[string]any
	client, _ := newAPI(t, func(r chi.Router) {
		r.Post("/api/jobs/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			apitest.JSON(w, http.StatusOK, apitest.Success)
		})
	})
	w := pages.NewWorks(client.Jobs, confirm.Always(true))

	require.NoError(t, w.Publish(context.Background(), "j9", false))
	assert.Equal(t, map[string]any{"is_anonymous": false}, body)
}
