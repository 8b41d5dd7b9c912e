package api

import (
	"context"
	"net/http"
	"net/url"
)

// WorkersService covers the public fleet listing and worker removal.
type WorkersService struct{ c *Client }

// List returns every registered worker with the online count.
func (s *WorkersService) List(ctx context.Context) (*WorkerList, error) {
	var out WorkerList
	if err := s.c.Do(ctx, http.MethodGet, "/api/workers", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete unregisters a worker. Admin only.
func (s *WorkersService) Delete(ctx context.Context, id string) (*ActionResult, error) {
	var out ActionResult
	if err := s.c.Do(ctx, http.MethodDelete, "/api/workers/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
