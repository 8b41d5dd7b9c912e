package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"zimage/internal/pkg/req"
)

// SocialService covers likes and comments on published jobs.
type SocialService struct{ c *Client }

func socialJobPath(jobID, suffix string) string {
	return "/api/social/jobs/" + url.PathEscape(jobID) + "/" + suffix
}

// ToggleLike likes the job, or removes the caller's like.
func (s *SocialService) ToggleLike(ctx context.Context, jobID string) (*LikeStatus, error) {
	var out LikeStatus
	if err := s.c.Do(ctx, http.MethodPost, socialJobPath(jobID, "like"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikeStatus returns whether the caller likes the job.
func (s *SocialService) LikeStatus(ctx context.Context, jobID string) (*LikeStatus, error) {
	var out LikeStatus
	if err := s.c.Do(ctx, http.MethodGet, socialJobPath(jobID, "like-status"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Comments returns one page of the job's comments.
func (s *SocialService) Comments(ctx context.Context, jobID string, page, limit int) (*CommentList, error) {
	query := req.NewQuery().Int("page", page).Int("limit", limit).Values()

	var out CommentList
	if err := s.c.Do(ctx, http.MethodGet, socialJobPath(jobID, "comments"), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateComment posts a comment on the job.
func (s *SocialService) CreateComment(ctx context.Context, jobID, content string) (*Comment, error) {
	body := struct {
		Content string `json:"content"`
	}{content}

	var out Comment
	if err := s.c.Do(ctx, http.MethodPost, socialJobPath(jobID, "comments"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment removes one of the caller's comments.
func (s *SocialService) DeleteComment(ctx context.Context, commentID int64) error {
	path := "/api/social/comments/" + strconv.FormatInt(commentID, 10)
	return s.c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}
