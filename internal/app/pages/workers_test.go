package pages_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/api"
	"zimage/internal/app/api/apitest"
	"zimage/internal/app/pages"
	"zimage/internal/pkg/confirm"
	"zimage/internal/pkg/errs"
)

func fleet() []api.Worker {
	return []api.Worker{
		{ID: "w1", Status: "online", IsBusy: true},
		{ID: "w2", Status: "online"},
		{ID: "w3", Status: "online"},
		{ID: "w4", Status: "offline", IsBusy: true},
	}
}

func TestCountWorkers(t *testing.T) {
	assert.Equal(t, pages.WorkerCounts{Total: 4, Online: 3, Busy: 1, Idle: 2}, pages.CountWorkers(fleet()))
	assert.Equal(t, pages.WorkerCounts{}, pages.CountWorkers(nil))
}

func TestWorkersDelete(t *testing.T) {
	client, backend := newAPI(t, func(r chi.Router) {
		r.Get("/api/workers", apitest.Handler(http.StatusOK, api.WorkerList{Workers: fleet(), OnlineCount: 3, TotalCount: 4}))
		r.Delete("/api/workers/{id}", apitest.Handler(http.StatusOK, apitest.Success))
	})
	ctx := context.Background()

	declined := pages.NewWorkers(client.Workers, confirm.Always(false))
	_, err := declined.Load(ctx)
	require.NoError(t, err)
	assert.True(t, errs.Is(declined.Delete(ctx, "w2"), errs.ErrActionCancelled))
	assert.Zero(t, backend.Count(http.MethodDelete, "/api/workers/w2"))

	w := pages.NewWorkers(client.Workers, confirm.Always(true))
	_, err = w.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Delete(ctx, "w2"))

	assert.Equal(t, 1, backend.Count(http.MethodDelete, "/api/workers/w2"))
	assert.Len(t, w.List(), 3)
	assert.Equal(t, pages.WorkerCounts{Total: 3, Online: 2, Busy: 1, Idle: 1}, w.Counts())
}
