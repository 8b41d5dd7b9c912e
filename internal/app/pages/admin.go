package pages

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"zimage/internal/app/api"
	"zimage/internal/pkg/confirm"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

const (
	// AdminJobsLimit is the page size of the admin job listing.
	AdminJobsLimit = 18

	// AdminUsersPerPage is the page size of the locally paginated user table.
	AdminUsersPerPage = 20

	// adminUsersFetch is large enough to load every account in one request.
	adminUsersFetch = 10000
)

// AdminAPI is the subset of the admin endpoints the dashboard uses.
type AdminAPI interface {
	Stats(ctx context.Context) (*api.AdminStats, error)
	Users(ctx context.Context, page, limit int) (*api.AdminUserList, error)
	Ban(ctx context.Context, userID int64) (*api.ActionResult, error)
	Unban(ctx context.Context, userID int64) (*api.ActionResult, error)
	UserJobs(ctx context.Context, userID int64, page, limit int) (*api.UserJobs, error)
	Jobs(ctx context.Context, q api.JobQuery) (*api.AdminJobList, error)
	Workers(ctx context.Context) ([]api.Worker, error)
	RetryJob(ctx context.Context, jobID string) (*api.ActionResult, error)
	CancelJob(ctx context.Context, jobID string) (*api.ActionResult, error)
	UnpublishJob(ctx context.Context, jobID string) (*api.ActionResult, error)
}

// Overview is the dashboard's first screen. A part that failed to load stays nil and its
// error is kept in Errors under the part's name.
type Overview struct {
	Stats   *api.AdminStats
	Users   []api.AdminUser
	Workers []api.Worker
	Errors  map[string]error
}

// UserSortKey is a column the user table can be ordered by.
type UserSortKey string

const (
	SortTrustLevel       UserSortKey = "trust_level"
	SortIsActive         UserSortKey = "is_active"
	SortTodayUsed        UserSortKey = "today_used"
	SortTotalGenerations UserSortKey = "total_generations"
	SortCreatedAt        UserSortKey = "created_at"
)

// Valid reports whether k names a sortable column.
func (k UserSortKey) Valid() bool {
	switch k {
	case SortTrustLevel, SortIsActive, SortTodayUsed, SortTotalGenerations, SortCreatedAt:
		return true
	}
	return false
}

// UserFilter selects, orders and pages the user table. An empty SortBy keeps backend order.
type UserFilter struct {
	Search string
	SortBy UserSortKey
	Desc   bool
	Page   int
}

// UserTable is one page of the filtered user table.
type UserTable struct {
	Users      []api.AdminUser
	Matched    int
	Page       int
	TotalPages int
}

// FilterUsers applies f to users without modifying them. The page is clamped into range.
func FilterUsers(users []api.AdminUser, f UserFilter) UserTable {
	q := strings.ToLower(strings.TrimSpace(f.Search))

	rows := make([]api.AdminUser, 0, len(users))
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Nickname), q) {
			rows = append(rows, u)
		}
	}

	if f.SortBy != "" {
		slices.SortStableFunc(rows, func(a, b api.AdminUser) int {
			c := compareUsers(a, b, f.SortBy)
			if f.Desc {
				return -c
			}
			return c
		})
	}

	pager := Pager{Page: f.Page}
	pager.SetTotal((len(rows) + AdminUsersPerPage - 1) / AdminUsersPerPage)

	start := min((pager.Page-1)*AdminUsersPerPage, len(rows))
	end := min(start+AdminUsersPerPage, len(rows))
	return UserTable{
		Users:      rows[start:end],
		Matched:    len(rows),
		Page:       pager.Page,
		TotalPages: pager.Last(),
	}
}

func compareUsers(a, b api.AdminUser, key UserSortKey) int {
	switch key {
	case SortTrustLevel:
		return cmp.Compare(a.TrustLevel, b.TrustLevel)
	case SortIsActive:
		return cmp.Compare(boolRank(a.IsActive), boolRank(b.IsActive))
	case SortTodayUsed:
		return cmp.Compare(a.TodayUsedCount, b.TodayUsedCount)
	case SortTotalGenerations:
		return cmp.Compare(a.TotalGenerations, b.TotalGenerations)
	case SortCreatedAt:
		ta, _ := api.ParseTime(a.CreatedAt)
		tb, _ := api.ParseTime(b.CreatedAt)
		return ta.Compare(tb)
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Admin is the moderation dashboard.
type Admin struct {
	svc     AdminAPI
	confirm confirm.Confirmer

	mu       sync.Mutex
	overview Overview
	jobs     []api.AdminJob
	jobQuery api.JobQuery
	jobPager Pager
}

// NewAdmin starts the job listing on page 1, newest first.
func NewAdmin(svc AdminAPI, c confirm.Confirmer) *Admin {
	return &Admin{
		svc:      svc,
		confirm:  c,
		jobQuery: api.JobQuery{SortBy: "created_at", SortOrder: "desc"},
		jobPager: NewPager(),
	}
}

// LoadOverview fetches stats, users and workers. Each part loads on its own so one failing
// endpoint does not blank the others; the returned error is non-nil only if all three failed.
func (a *Admin) LoadOverview(ctx context.Context) (Overview, error) {
	ov := Overview{Errors: map[string]error{}}

	if stats, err := a.svc.Stats(ctx); err != nil {
		ov.Errors["stats"] = err
	} else {
		ov.Stats = stats
	}

	if users, err := a.svc.Users(ctx, 1, adminUsersFetch); err != nil {
		ov.Errors["users"] = err
	} else {
		ov.Users = users.Users
	}

	if workers, err := a.svc.Workers(ctx); err != nil {
		ov.Errors["workers"] = err
	} else {
		ov.Workers = workers
	}

	for part, err := range ov.Errors {
		logx.Warn("Admin overview part failed", "part", part, "error", err.Error())
	}

	a.mu.Lock()
	a.overview = ov
	a.mu.Unlock()

	if len(ov.Errors) == 3 {
		return ov, ov.Errors["stats"]
	}
	return ov, nil
}

// Overview returns the last loaded overview with local updates applied.
func (a *Admin) Overview() Overview {
	a.mu.Lock()
	defer a.mu.Unlock()
	ov := a.overview
	ov.Users = slices.Clone(ov.Users)
	ov.Workers = slices.Clone(ov.Workers)
	return ov
}

// Users filters the loaded accounts; see FilterUsers.
func (a *Admin) Users(f UserFilter) UserTable {
	a.mu.Lock()
	users := slices.Clone(a.overview.Users)
	a.mu.Unlock()
	return FilterUsers(users, f)
}

// SetJobQuery replaces the job filters and goes back to page 1. Page and Limit in q are ignored.
func (a *Admin) SetJobQuery(q api.JobQuery) error {
	if q.SortBy != "" && q.SortBy != "created_at" && q.SortBy != "finished_at" {
		return errs.NewError(errs.ErrInvalidParams, "sort_by must be created_at or finished_at")
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return errs.NewError(errs.ErrInvalidParams, "sort_order must be asc or desc")
	}

	a.mu.Lock()
	a.jobQuery = q
	a.jobPager.Page = 1
	a.mu.Unlock()
	return nil
}

// GotoJobs selects a page of the job listing; see Pager.Goto.
func (a *Admin) GotoJobs(page int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.jobPager.Goto(page)
}

// SeekJobs selects the page the next LoadJobs requests; see Pager.Seek.
func (a *Admin) SeekJobs(page int) {
	a.mu.Lock()
	a.jobPager.Seek(page)
	a.mu.Unlock()
}

// JobsPager returns the job listing's pagination after the last LoadJobs.
func (a *Admin) JobsPager() Pager {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.jobPager
}

// LoadJobs fetches the current page of the job listing with the current filters.
func (a *Admin) LoadJobs(ctx context.Context) (*api.AdminJobList, error) {
	a.mu.Lock()
	q := a.jobQuery
	q.Page = a.jobPager.Page
	q.Limit = AdminJobsLimit
	a.mu.Unlock()

	res, err := a.svc.Jobs(ctx, q)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.jobPager.SetTotal(res.TotalPages)
	a.jobs = slices.Clone(res.Jobs)
	a.mu.Unlock()
	return res, nil
}

// Jobs returns the jobs from the last LoadJobs with local updates applied.
func (a *Admin) Jobs() []api.AdminJob {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.jobs)
}

// UserJobs fetches one page of an account's jobs.
func (a *Admin) UserJobs(ctx context.Context, userID int64, page int) (*api.UserJobs, error) {
	return a.svc.UserJobs(ctx, userID, max(1, page), AdminJobsLimit)
}

// Retry requeues a failed or cancelled job.
func (a *Admin) Retry(ctx context.Context, jobID string) error {
	if _, err := a.svc.RetryJob(ctx, jobID); err != nil {
		return err
	}
	a.updateJob(jobID, func(j *api.AdminJob) { j.Status = api.JobQueued })
	return nil
}

// Cancel stops any account's job after confirmation.
func (a *Admin) Cancel(ctx context.Context, jobID string) error {
	if err := confirm.Require(ctx, a.confirm, "Cancel job "+jobID+"?"); err != nil {
		return err
	}
	if _, err := a.svc.CancelJob(ctx, jobID); err != nil {
		return err
	}
	a.updateJob(jobID, func(j *api.AdminJob) { j.Status = api.JobCancelled })
	return nil
}

// Unpublish removes any account's job from the gallery after confirmation.
func (a *Admin) Unpublish(ctx context.Context, jobID string) error {
	if err := confirm.Require(ctx, a.confirm, "Remove job "+jobID+" from the gallery?"); err != nil {
		return err
	}
	if _, err := a.svc.UnpublishJob(ctx, jobID); err != nil {
		return err
	}
	a.updateJob(jobID, func(j *api.AdminJob) { j.IsPublic = false })
	return nil
}

// Ban deactivates an account after confirmation.
func (a *Admin) Ban(ctx context.Context, userID int64) error {
	if err := confirm.Require(ctx, a.confirm, fmt.Sprintf("Ban user %d?", userID)); err != nil {
		return err
	}
	if _, err := a.svc.Ban(ctx, userID); err != nil {
		return err
	}
	a.setActive(userID, false)
	return nil
}

// Unban reactivates an account.
func (a *Admin) Unban(ctx context.Context, userID int64) error {
	if _, err := a.svc.Unban(ctx, userID); err != nil {
		return err
	}
	a.setActive(userID, true)
	return nil
}

// Watch reloads the overview every interval until ctx ends.
func (a *Admin) Watch(ctx context.Context, interval time.Duration, onRefresh func(Overview)) {
	Poll(ctx, interval, func(ctx context.Context) error {
		ov, err := a.LoadOverview(ctx)
		if err != nil {
			return err
		}
		if onRefresh != nil {
			onRefresh(ov)
		}
		return nil
	})
}

func (a *Admin) setActive(userID int64, active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.overview.Users {
		if a.overview.Users[i].ID == userID {
			a.overview.Users[i].IsActive = active
		}
	}
}

func (a *Admin) updateJob(id string, fn func(j *api.AdminJob)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.jobs {
		if a.jobs[i].ID == id {
			fn(&a.jobs[i])
		}
	}
}
