package api

import (
	"context"
	"net/http"

	"zimage/internal/pkg/req"
)

// GalleryService covers the public feed of published jobs.
type GalleryService struct{ c *Client }

// List returns one page of the gallery in the given order.
func (s *GalleryService) List(ctx context.Context, page, limit int, sort GallerySort) (*GalleryPage, error) {
	query := req.NewQuery().
		Int("page", page).
		Int("limit", limit).
		Str("sort_by", string(sort)).
		Values()

	var out GalleryPage
	if err := s.c.Do(ctx, http.MethodGet, "/api/gallery", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the gallery counters.
func (s *GalleryService) Stats(ctx context.Context) (*GalleryStats, error) {
	var out GalleryStats
	if err := s.c.Do(ctx, http.MethodGet, "/api/gallery/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
