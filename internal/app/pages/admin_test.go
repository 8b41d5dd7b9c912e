package pages_test

import (
	"context"
	"fmt"
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

func adminUsers() []api.AdminUser {
	return []api.AdminUser{
		{ID: 1, Username: "alice", Nickname: "Wonder", TrustLevel: 2, IsActive: true, TodayUsedCount: 5, CreatedAt: "2025-01-03T00:00:00Z"},
		{ID: 2, Username: "bob", TrustLevel: 0, IsActive: false, TodayUsedCount: 9, CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: 3, Username: "carol", TrustLevel: 3, IsActive: true, TodayUsedCount: 1, CreatedAt: "2025-01-02T00:00:00Z"},
	}
}

func adminBackend(t *testing.T, statsStatus int) (*api.Client, *apitest.Backend) {
	return newAPI(t, func(r chi.Router) {
		r.Get("/api/admin/stats", func(w http.ResponseWriter, _ *http.Request) {
			if statsStatus != http.StatusOK {
				apitest.Detail(w, statsStatus, "stats unavailable")
				return
			}
			apitest.JSON(w, http.StatusOK, api.AdminStats{TotalUsers: 3, TotalJobs: 10})
		})
		r.Get("/api/admin/users", apitest.Handler(http.StatusOK, api.AdminUserList{Users: adminUsers(), Total: 3, Page: 1, TotalPages: 1}))
		r.Get("/api/admin/workers", apitest.Handler(http.StatusOK, map[string]any{"workers": fleet()}))
		r.Get("/api/admin/jobs", apitest.Handler(http.StatusOK, api.AdminJobList{
			Jobs:       []api.AdminJob{{ID: "j1", Status: api.JobRunning, IsPublic: true}, {ID: "j2", Status: api.JobFailed}},
			Total:      40,
			Page:       1,
			TotalPages: 3,
		}))
		r.Post("/api/admin/users/{id}/{action}", apitest.Handler(http.StatusOK, apitest.Success))
		r.Post("/api/admin/jobs/{id}/{action}", apitest.Handler(http.StatusOK, apitest.Success))
	})
}

func TestAdminOverviewToleratesPartialFailure(t *testing.T) {
	client, backend := adminBackend(t, http.StatusInternalServerError)
	a := pages.NewAdmin(client.Admin, confirm.Always(true))

	ov, err := a.LoadOverview(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ov.Stats)
	assert.Len(t, ov.Users, 3)
	assert.Len(t, ov.Workers, 4)
	assert.Contains(t, ov.Errors, "stats")

	users := backend.Requests()[1]
	assert.Equal(t, "/api/admin/users", users.URL.Path)
	assert.Equal(t, "10000", users.URL.Query().Get("limit"))
}

func TestFilterUsers(t *testing.T) {
	table := pages.FilterUsers(adminUsers(), pages.UserFilter{Search: "WOND"})
	require.Len(t, table.Users, 1)
	assert.Equal(t, int64(1), table.Users[0].ID)

	ids := func(tb pages.UserTable) []int64 {
		var out []int64
		for _, u := range tb.Users {
			out = append(out, u.ID)
		}
		return out
	}

	assert.Equal(t, []int64{3, 1, 2}, ids(pages.FilterUsers(adminUsers(), pages.UserFilter{SortBy: pages.SortTrustLevel, Desc: true})))
	assert.Equal(t, []int64{3, 1, 2}, ids(pages.FilterUsers(adminUsers(), pages.UserFilter{SortBy: pages.SortTodayUsed})))
	assert.Equal(t, []int64{2, 3, 1}, ids(pages.FilterUsers(adminUsers(), pages.UserFilter{SortBy: pages.SortCreatedAt})))
	assert.Equal(t, []int64{2, 1, 3}, ids(pages.FilterUsers(adminUsers(), pages.UserFilter{SortBy: pages.SortIsActive})))
}

func TestFilterUsersPaginatesLocally(t *testing.T) {
	var many []api.AdminUser
	for i := 0; i < 45; i++ {
		many = append(many, api.AdminUser{ID: int64(i + 1), Username: fmt.Sprintf("user%02d", i)})
	}

	table := pages.FilterUsers(many, pages.UserFilter{Page: 3})
	assert.Equal(t, 3, table.TotalPages)
	assert.Equal(t, 3, table.Page)
	assert.Len(t, table.Users, 5)
	assert.Equal(t, 45, table.Matched)

	table = pages.FilterUsers(many, pages.UserFilter{Page: 9})
	assert.Equal(t, 3, table.Page)

	table = pages.FilterUsers(nil, pages.UserFilter{})
	assert.Equal(t, 1, table.TotalPages)
	assert.Empty(t, table.Users)
}

func TestAdminLoadJobsQuery(t *testing.T) {
	client, backend := adminBackend(t, http.StatusOK)
	a := pages.NewAdmin(client.Admin, confirm.Always(true))

	require.NoError(t, a.SetJobQuery(api.JobQuery{Status: api.JobFailed, Search: "cat", SortBy: "finished_at", SortOrder: "asc"}))
	_, err := a.LoadJobs(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.GotoJobs(2))
	_, err = a.LoadJobs(context.Background())
	require.NoError(t, err)

	q := backend.Requests()[1].URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "18", q.Get("limit"))
	assert.Equal(t, "failed", q.Get("status"))
	assert.Equal(t, "cat", q.Get("search"))
	assert.Equal(t, "finished_at", q.Get("sort_by"))
	assert.Equal(t, "asc", q.Get("sort_order"))

	assert.True(t, errs.Is(a.SetJobQuery(api.JobQuery{SortBy: "prompt"}), errs.ErrInvalidParams))
	assert.True(t, errs.Is(a.GotoJobs(4), errs.ErrPageOutOfRange))
}

func TestAdminSeekJobsLoadsOnce(t *testing.T) {
	client, backend := adminBackend(t, http.StatusOK)
	a := pages.NewAdmin(client.Admin, confirm.Always(true))

	a.SeekJobs(2)
	_, err := a.LoadJobs(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, backend.Count(http.MethodGet, "/api/admin/jobs"))
	assert.Equal(t, "2", backend.Requests()[0].URL.Query().Get("page"))
	assert.Equal(t, 2, a.JobsPager().Page)
}

func TestAdminActions(t *testing.T) {
	client, backend := adminBackend(t, http.StatusOK)
	ctx := context.Background()

	declined := pages.NewAdmin(client.Admin, confirm.Always(false))
	assert.True(t, errs.Is(declined.Ban(ctx, 1), errs.ErrActionCancelled))
	assert.True(t, errs.Is(declined.Cancel(ctx, "j1"), errs.ErrActionCancelled))
	assert.True(t, errs.Is(declined.Unpublish(ctx, "j1"), errs.ErrActionCancelled))
	assert.Empty(t, backend.Requests())

	a := pages.NewAdmin(client.Admin, confirm.Always(true))
	_, err := a.LoadOverview(ctx)
	require.NoError(t, err)
	_, err = a.LoadJobs(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Ban(ctx, 1))
	require.NoError(t, a.Unban(ctx, 2))
	users := a.Overview().Users
	assert.False(t, users[0].IsActive)
	assert.True(t, users[1].IsActive)

	require.NoError(t, a.Unpublish(ctx, "j1"))
	require.NoError(t, a.Cancel(ctx, "j1"))
	require.NoError(t, a.Retry(ctx, "j2"))
	jobs := a.Jobs()
	assert.False(t, jobs[0].IsPublic)
	assert.Equal(t, api.JobCancelled, jobs[0].Status)
	assert.Equal(t, api.JobQueued, jobs[1].Status)

	for _, path := range []string{
		"/api/admin/users/1/ban",
		"/api/admin/users/2/unban",
		"/api/admin/jobs/j1/unpublish",
		"/api/admin/jobs/j1/cancel",
		"/api/admin/jobs/j2/retry",
	} {
		assert.Equal(t, 1, backend.Count(http.MethodPost, path), path)
	}
}
