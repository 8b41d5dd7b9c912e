package api

import (
	"context"
	"net/http"

	"zimage/internal/app/user"
	"zimage/internal/pkg/req"
)

// AuthService covers sign-in and identity lookup.
type AuthService struct{ c *Client }

// DevLogin signs in with a username and optional password. It is only enabled on
// development backends and for the admin account.
func (s *AuthService) DevLogin(ctx context.Context, username, password string) (*TokenResponse, error) {
	query := req.NewQuery().Str("username", username).Str("password", password).Values()

	var out TokenResponse
	if err := s.c.Do(ctx, http.MethodPost, "/api/auth/dev-login", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the token's owner.
func (s *AuthService) Me(ctx context.Context) (*user.User, error) {
	var out user.User
	if err := s.c.Do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginURL is the OAuth entry point to open in a browser.
func (s *AuthService) LoginURL() string {
	return req.BuildURL(s.c.base, "/api/auth/login", nil)
}
