package api

import (
	"context"
	"net/http"
	"net/url"

	"zimage/internal/pkg/req"
)

// JobsService covers the caller's own generation jobs.
type JobsService struct{ c *Client }

func jobPath(id string, suffix ...string) string {
	p := "/api/jobs/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// Create submits a generation job.
func (s *JobsService) Create(ctx context.Context, in CreateJobRequest) (*Job, error) {
	var out Job
	if err := s.c.Do(ctx, http.MethodPost, "/api/jobs", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one job.
func (s *JobsService) Get(ctx context.Context, id string) (*Job, error) {
	var out Job
	if err := s.c.Do(ctx, http.MethodGet, jobPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of the caller's jobs, newest first.
func (s *JobsService) List(ctx context.Context, page, limit int) (*JobList, error) {
	query := req.NewQuery().Int("page", page).Int("limit", limit).Values()

	var out JobList
	if err := s.c.Do(ctx, http.MethodGet, "/api/jobs", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Publish adds a finished job to the public gallery, optionally without the author's name.
func (s *JobsService) Publish(ctx context.Context, id string, anonymous bool) (*ActionResult, error) {
	body := struct {
		IsAnonymous bool `json:"is_anonymous"`
	}{anonymous}

	var out ActionResult
	if err := s.c.Do(ctx, http.MethodPost, jobPath(id, "publish"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unpublish removes a job from the public gallery.
func (s *JobsService) Unpublish(ctx context.Context, id string) (*ActionResult, error) {
	return s.action(ctx, http.MethodPost, jobPath(id, "unpublish"))
}

// Cancel stops a queued or running job.
func (s *JobsService) Cancel(ctx context.Context, id string) (*ActionResult, error) {
	return s.action(ctx, http.MethodPost, jobPath(id, "cancel"))
}

// Delete hides a job from the caller's list.
func (s *JobsService) Delete(ctx context.Context, id string) (*ActionResult, error) {
	return s.action(ctx, http.MethodDelete, jobPath(id))
}

// Image downloads the generated image of a finished job.
func (s *JobsService) Image(ctx context.Context, id string) ([]byte, string, error) {
	return s.c.Download(ctx, jobPath(id, "image"))
}

func (s *JobsService) action(ctx context.Context, method, path string) (*ActionResult, error) {
	var out ActionResult
	if err := s.c.Do(ctx, method, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
