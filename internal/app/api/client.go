/*
Package api is the REST client for the image generation backend.

Every request carries a request ID and the JSON content type, and is paced per host and logged
by the underlying transport. Requests to the backend's own origin also carry the bearer token
from the credential store; absolute URLs on other hosts, such as a CDN image_url, never do.
A 401 from any backend endpoint clears the stored session and sends the user to the login
entry point before the error is returned; every other failure is returned to the caller
unchanged.
*/
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"zimage/internal/pkg/auth/jwt"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/limiter"
	"zimage/internal/pkg/logx"
	"zimage/internal/pkg/randx"
	"zimage/internal/pkg/req"
	"zimage/internal/pkg/resp"
)

// maxImageBytes bounds a downloaded image.
const maxImageBytes = 32 << 20

// Credentials is the session state the client reads the token from and clears on 401.
type Credentials interface {
	Token() string
	Clear(ctx context.Context) error
}

// Navigator moves the user to the login entry point.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// ToLogin calls f.
func (f NavigatorFunc) ToLogin() { f() }

// Client is the backend REST client. The endpoint groups share one Client.
type Client struct {
	base   string
	origin *url.URL
	http   *http.Client
	creds  Credentials
	nav    Navigator
	logger zerolog.Logger

	Auth    *AuthService
	Jobs    *JobsService
	Workers *WorkersService
	Gallery *GalleryService
	Social  *SocialService
	Admin   *AdminService
	Chat    *ChatService
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNavigator sets what happens after a 401.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

// WithTransport builds the default HTTP client over a paced, logged transport.
func WithTransport(timeout time.Duration, r float64, burst int) Option {
	return func(c *Client) {
		hosts := limiter.NewHostRateLimiter(rate.Limit(r), burst)
		c.http = &http.Client{
			Timeout:   timeout,
			Transport: hosts.Transport(logx.NewTransport(http.DefaultTransport)),
		}
	}
}

// New creates a client for the backend at base.
func New(base string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		base:   base,
		creds:  creds,
		nav:    NavigatorFunc(func() {}),
		logger: logx.Component("api"),
	}
	if u, err := url.Parse(base); err == nil {
		c.origin = u
	}
	WithTransport(30*time.Second, 10, 20)(c)

	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Jobs = &JobsService{c: c}
	c.Workers = &WorkersService{c: c}
	c.Gallery = &GalleryService{c: c}
	c.Social = &SocialService{c: c}
	c.Admin = &AdminService{c: c}
	c.Chat = &ChatService{c: c}
	return c
}

// Base returns the backend base URL.
func (c *Client) Base() string {
	return c.base
}

// URL resolves a backend path, such as a job's image_url, into an absolute URL.
func (c *Client) URL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return req.BuildURL(c.base, path, nil)
}

// Do sends a JSON request and decodes a 2xx response body into out (which may be nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	res, err := c.send(ctx, method, req.BuildURL(c.base, path, query), body)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return resp.DecodeJSON(res.Body, out)
}

// Download fetches raw bytes, such as a generated image, and its content type.
func (c *Client) Download(ctx context.Context, path string) ([]byte, string, error) {
	res, err := c.send(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxImageBytes))
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrNetwork, err)
	}
	return data, res.Header.Get("Content-Type"), nil
}

// send performs the round trip and turns every non-2xx status into an error.
// On success the caller owns the response body.
func (c *Client) send(ctx context.Context, method, rawURL string, body any) (*http.Response, error) {
	r, err := req.NewJSONRequest(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set(logx.RequestIDHeader, randx.RequestID())
	trusted := c.sameOrigin(r.URL)
	if c.creds != nil && trusted {
		jwt.SetBearer(r, c.creds.Token())
	}

	res, err := c.http.Do(r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, errs.Wrap(errs.ErrNetwork, err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return res, nil
	}
	defer res.Body.Close()

	apiErr := resp.ErrorFrom(res)
	if res.StatusCode == http.StatusUnauthorized && trusted {
		c.unauthorized(ctx)
	}
	return nil, apiErr
}

// sameOrigin reports whether u points at the backend itself.
func (c *Client) sameOrigin(u *url.URL) bool {
	if c.origin == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.origin.Scheme) && strings.EqualFold(u.Host, c.origin.Host)
}

// unauthorized is the single cross-cutting 401 policy: drop the session and go to login.
func (c *Client) unauthorized(ctx context.Context) {
	c.logger.Warn().Msg("Backend rejected the credentials, signing out")

	if c.creds != nil {
		if err := c.creds.Clear(context.WithoutCancel(ctx)); err != nil {
			c.logger.Error().Err(err).Msg("Failed to clear the stored session")
		}
	}
	c.nav.ToLogin()
}
