/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains an http.RoundTripper that logs every outbound backend request with its
method, path, response status and latency. Credentials carried in query strings are
masked before they reach the log.
*/
package logx

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// sensitiveParams are query parameters whose values must never be logged.
var sensitiveParams = []string{"token", "password"}

// redactURL returns the URL without userinfo and with sensitive query values masked.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clean := *u
	clean.User = nil

	q := clean.Query()
	changed := false
	for _, key := range sensitiveParams {
		if q.Has(key) {
			q.Set(key, "***")
			changed = true
		}
	}
	if changed {
		clean.RawQuery = q.Encode()
	}

	return clean.String()
}

type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

// NewTransport wraps next (http.DefaultTransport when nil) with request logging.
// Status >= 500 and transport failures log at Error, >= 400 at Warn, everything else at Debug.
func NewTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &loggingTransport{
		next:   next,
		logger: Component("http"),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	logger := t.logger.With().
		Str("request_id", r.Header.Get(RequestIDHeader)).
		Str("request_method", r.Method).
		Str("request_url", redactURL(r.URL)).
		Logger()

	t1 := time.Now()
	res, err := t.next.RoundTrip(r)
	latency := time.Since(t1)

	if err != nil {
		logger.Error().Err(err).Dur("latency", latency).Msg("Request failed")
		return nil, err
	}

	logEvent := logger.Debug()
	if res.StatusCode >= 500 {
		logEvent = logger.Error()
	} else if res.StatusCode >= 400 {
		logEvent = logger.Warn()
	}

	logEvent.
		Int("status", res.StatusCode).
		Int64("bytes", res.ContentLength).
		Dur("latency", latency).
		Msg("Request completed")

	return res, nil
}
