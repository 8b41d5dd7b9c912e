package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"zimage/internal/pkg/req"
)

// AdminService covers the moderation endpoints. Every call requires an admin token.
type AdminService struct{ c *Client }

func adminUserPath(userID int64, suffix string) string {
	return "/api/admin/users/" + strconv.FormatInt(userID, 10) + "/" + suffix
}

func adminJobPath(jobID, suffix string) string {
	return "/api/admin/jobs/" + url.PathEscape(jobID) + "/" + suffix
}

// Stats returns the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	if err := s.c.Do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users returns one page of accounts, newest first.
func (s *AdminService) Users(ctx context.Context, page, limit int) (*AdminUserList, error) {
	query := req.NewQuery().Int("page", page).Int("limit", limit).Values()

	var out AdminUserList
	if err := s.c.Do(ctx, http.MethodGet, "/api/admin/users", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ban deactivates an account.
func (s *AdminService) Ban(ctx context.Context, userID int64) (*ActionResult, error) {
	return s.action(ctx, adminUserPath(userID, "ban"))
}

// Unban reactivates an account.
func (s *AdminService) Unban(ctx context.Context, userID int64) (*ActionResult, error) {
	return s.action(ctx, adminUserPath(userID, "unban"))
}

// UserJobs returns one page of an account's jobs.
func (s *AdminService) UserJobs(ctx context.Context, userID int64, page, limit int) (*UserJobs, error) {
	query := req.NewQuery().Int("page", page).Int("limit", limit).Values()

	var out UserJobs
	if err := s.c.Do(ctx, http.MethodGet, adminUserPath(userID, "jobs"), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Jobs searches every account's jobs.
func (s *AdminService) Jobs(ctx context.Context, q JobQuery) (*AdminJobList, error) {
	query := req.NewQuery().
		Int("page", q.Page).
		Int("limit", q.Limit).
		Str("status", string(q.Status)).
		Str("search", q.Search).
		Str("sort_by", q.SortBy).
		Str("sort_order", q.SortOrder).
		Values()

	var out AdminJobList
	if err := s.c.Do(ctx, http.MethodGet, "/api/admin/jobs", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Workers returns the fleet including offline workers, most recently seen first.
func (s *AdminService) Workers(ctx context.Context) ([]Worker, error) {
	var out struct {
		Workers []Worker `json:"workers"`
	}
	if err := s.c.Do(ctx, http.MethodGet, "/api/admin/workers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Workers, nil
}

// RetryJob puts a failed or cancelled job back in the queue.
func (s *AdminService) RetryJob(ctx context.Context, jobID string) (*ActionResult, error) {
	return s.action(ctx, adminJobPath(jobID, "retry"))
}

// CancelJob stops any account's queued or running job.
func (s *AdminService) CancelJob(ctx context.Context, jobID string) (*ActionResult, error) {
	return s.action(ctx, adminJobPath(jobID, "cancel"))
}

// UnpublishJob removes any account's job from the gallery.
func (s *AdminService) UnpublishJob(ctx context.Context, jobID string) (*ActionResult, error) {
	return s.action(ctx, adminJobPath(jobID, "unpublish"))
}

func (s *AdminService) action(ctx context.Context, path string) (*ActionResult, error) {
	var out ActionResult
	if err := s.c.Do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
