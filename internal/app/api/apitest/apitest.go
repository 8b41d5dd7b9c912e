// Package apitest runs in-process fake backends for tests that talk to the REST API.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Backend is a chi-routed httptest server that records every request it serves.
type Backend struct {
	*httptest.Server
	Router chi.Router

	mu       sync.Mutex
	requests []*http.Request
}

// New starts a backend with the routes registered by setup and closes it when t ends.
func New(t testing.TB, setup func(r chi.Router)) *Backend {
	t.Helper()

	b := &Backend{}
	r := chi.NewRouter()
	r.Use(b.record)
	setup(r)
	b.Router = r

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(r.Context()))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Requests returns the requests served so far, in arrival order.
func (b *Backend) Requests() []*http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Request(nil), b.requests...)
}

// Count returns how many requests hit method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.URL.Path == path {
			n++
		}
	}
	return n
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Detail writes a FastAPI-style error body.
func Detail(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, map[string]string{"detail": detail})
}

// Handler always answers with status and v.
func Handler(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { JSON(w, status, v) }
}

// Success is the acknowledgement most mutating endpoints return.
var Success = map[string]any{"success": true}
