package req

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	q := NewQuery().Int("page", 2).Int("limit", 18).Str("sort_by", "likes").Str("search", "").Values()

	assert.Equal(t,
		"http://api.example.com/api/gallery?limit=18&page=2&sort_by=likes",
		BuildURL("http://api.example.com/", "/api/gallery", q))
	assert.Equal(t, "http://api.example.com/api/auth/me", BuildURL("http://api.example.com", "api/auth/me", nil))
}

func TestNewJSONRequest(t *testing.T) {
	r, err := NewJSONRequest(context.Background(), http.MethodPost, "http://x/api/jobs/1/publish", map[string]bool{"is_anonymous": true})
	require.NoError(t, err)

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_anonymous":true}`, string(body))
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

	r, err = NewJSONRequest(context.Background(), http.MethodGet, "http://x/api/auth/me", nil)
	require.NoError(t, err)
	assert.Nil(t, r.Body)
	assert.Empty(t, r.Header.Get("Content-Type"))

	_, err = NewJSONRequest(context.Background(), http.MethodPost, "http://x", make(chan int))
	require.Error(t, err)
}
