/*
Package session holds the signed-in state: the bearer token, the user profile and a
hydration signal that closes once persisted state has been read.

Consumers must wait for hydration before treating a missing user as "signed out"; a
returning user would otherwise be sent to the login flow during the window before the
stored credentials are loaded. The store is created once by the composition root and
passed to whoever needs it.
*/
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zimage/internal/app/user"
	"zimage/internal/pkg/auth/jwt"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

const (
	// StorageKey holds the serialized {token, user} session.
	StorageKey = "auth-storage"

	// TokenKey mirrors the bare token.
	TokenKey = "token"
)

// KV is the durable storage the store persists into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// persisted is the JSON shape written under StorageKey.
type persisted struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Store is the process-wide auth state.
type Store struct {
	kv     KV
	now    func() time.Time
	logger zerolog.Logger

	mu    sync.RWMutex
	token string
	user  *user.User

	hydrateOnce sync.Once
	hydrated    chan struct{}
	hydrateErr  error
}

// NewStore creates an unhydrated store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{
		kv:       kv,
		now:      time.Now,
		logger:   logx.Component("session"),
		hydrated: make(chan struct{}),
	}
}

// Hydrate reads persisted state once. Tokens whose expiry has passed are discarded and
// cleared from storage. The hydration signal closes even when reading fails, so waiters
// never hang; the failure is returned to the first caller and recorded for later ones.
func (s *Store) Hydrate(ctx context.Context) error {
	s.hydrateOnce.Do(func() {
		defer close(s.hydrated)
		s.hydrateErr = s.load(ctx)
	})
	return s.hydrateErr
}

func (s *Store) load(ctx context.Context) error {
	var state persisted

	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("failed to read persisted session: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			s.logger.Warn().Err(err).Msg("Discarding unreadable persisted session")
			state = persisted{}
		}
	}

	if state.Token == "" {
		token, ok, err := s.kv.Get(ctx, TokenKey)
		if err != nil {
			return fmt.Errorf("failed to read persisted token: %w", err)
		}
		if ok {
			state.Token = token
		}
	}

	if state.Token != "" && jwt.Expired(state.Token, s.now()) {
		s.logger.Info().Msg("Persisted session token has expired, clearing it")
		if err := s.kv.Delete(ctx, StorageKey, TokenKey); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
		state = persisted{}
	}

	s.mu.Lock()
	s.token = state.Token
	s.user = state.User
	s.mu.Unlock()

	return nil
}

// Hydrated returns a channel that is closed once Hydrate has finished.
func (s *Store) Hydrated() <-chan struct{} {
	return s.hydrated
}

// IsHydrated reports whether Hydrate has finished.
func (s *Store) IsHydrated() bool {
	select {
	case <-s.hydrated:
		return true
	default:
		return false
	}
}

// WaitHydrated blocks until hydration has finished or ctx is done.
func (s *Store) WaitHydrated(ctx context.Context) error {
	select {
	case <-s.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current profile, or nil when signed out.
func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// RequireUser waits for hydration and then returns the current user or an ErrLoginRequired error.
func (s *Store) RequireUser(ctx context.Context) (*user.User, error) {
	if err := s.WaitHydrated(ctx); err != nil {
		return nil, err
	}
	u := s.User()
	if u == nil {
		return nil, errs.NewError(errs.ErrLoginRequired)
	}
	return u, nil
}

// SetAuth replaces the session with token and u and persists both keys.
func (s *Store) SetAuth(ctx context.Context, token string, u *user.User) error {
	s.mu.Lock()
	s.token = token
	s.user = cloneUser(u)
	state := persisted{Token: s.token, User: s.user}
	s.mu.Unlock()

	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}
	return s.persist(ctx, state)
}

// UpdateUser replaces the profile and keeps the token.
func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	s.user = cloneUser(u)
	state := persisted{Token: s.token, User: s.user}
	s.mu.Unlock()

	return s.persist(ctx, state)
}

// Logout clears the in-memory session and both persisted keys.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey, TokenKey); err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}
	return nil
}

// Clear is the teardown the API client runs after a 401.
func (s *Store) Clear(ctx context.Context) error {
	s.logger.Info().Msg("Clearing session after the backend rejected the credentials")
	return s.Logout(ctx)
}

func (s *Store) persist(ctx context.Context, state persisted) error {
	buf, err := json.Marshal(state)
	if err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(buf)); err != nil {
		return errs.Wrap(errs.ErrStorage, err)
	}
	return nil
}

func cloneUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
