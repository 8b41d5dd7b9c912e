/*
Package chat contains the client side of the realtime chatroom.

This file defines the Session struct, which owns the single chat connection. It dials after a
short settle delay, re-dials once per unexpected drop after a fixed delay, and tears the
connection down synchronously whenever a new connect or disconnect supersedes it. Every dial
is stamped with an epoch; results and timers that belong to an older epoch are discarded, so
two live handles can never coexist.
*/
package chat

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zimage/internal/configs"
	"zimage/internal/pkg/logx"
	"zimage/internal/pkg/randx"
	"zimage/internal/pkg/req"
)

// wsPath is the chat endpoint below the WebSocket base URL.
const wsPath = "/api/chat/ws"

// TokenSource supplies the bearer token sent at connect time.
type TokenSource interface {
	Token() string
}

// Config tunes a Session. Zero delays fall back to the package defaults.
type Config struct {
	WSBase         string
	ReconnectDelay time.Duration
	SettleDelay    time.Duration

	// Nickname generates the guest name for anonymous connections.
	Nickname func() (string, error)
}

// State is a snapshot of the session and its feed.
type State struct {
	FeedState

	Status    Status
	Anonymous bool
}

// handle is one connection attempt and, once dialed, its connection.
type handle struct {
	epoch  uint64
	conn   Conn
	cancel context.CancelFunc

	// manual is set when the session itself tore the handle down.
	manual bool
}

// Session is the chat connection controller.
type Session struct {
	dialer Dialer
	tokens TokenSource
	cfg    Config
	feed   *Feed

	// mu guards every field below.
	mu        sync.Mutex
	status    Status
	anonymous bool
	current   *handle
	epoch     uint64

	// settle delays the first dial after Connect; retry is the pending reconnect.
	settle *time.Timer
	retry  *time.Timer

	// updates carries coalesced change notifications.
	updates chan struct{}

	logger zerolog.Logger
}

// NewSession constructs an idle Session.
func NewSession(dialer Dialer, tokens TokenSource, cfg Config) *Session {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = configs.DefaultReconnectDelay
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = configs.DefaultSettleDelay
	}
	if cfg.Nickname == nil {
		cfg.Nickname = randx.GuestNickname
	}

	return &Session{
		dialer:  dialer,
		tokens:  tokens,
		cfg:     cfg,
		feed:    NewFeed(),
		updates: make(chan struct{}, 1),
		logger:  logx.Component("chat"),
	}
}

// Connect tears down any existing connection and pending timer, then dials after the
// settle delay. anonymous selects whether a guest nickname is sent.
func (s *Session) Connect(anonymous bool) {
	s.mu.Lock()
	old := s.resetLocked()
	s.anonymous = anonymous
	s.status = StatusConnecting
	epoch := s.epoch
	s.settle = time.AfterFunc(s.cfg.SettleDelay, func() { s.dial(epoch) })
	s.mu.Unlock()

	closeHandle(old)
	s.logger.Debug().Bool("anonymous", anonymous).Msg("Chat connect requested")
	s.notify()
}

// Disconnect closes the connection and cancels pending timers. Calling it repeatedly is harmless.
func (s *Session) Disconnect() {
	s.mu.Lock()
	old := s.resetLocked()
	s.status = StatusIdle
	s.mu.Unlock()

	closeHandle(old)
	s.notify()
}

// ToggleAnonymous flips the anonymity flag and reconnects with it.
func (s *Session) ToggleAnonymous() bool {
	s.mu.Lock()
	next := !s.anonymous
	s.mu.Unlock()

	s.Connect(next)
	return next
}

// Send writes text to the open connection. It returns false when the text is empty, too long,
// or the session is not open. Write failures are logged and still reported as sent.
func (s *Session) Send(text string) bool {
	text = strings.TrimSpace(text)
	if Validate(text) != nil {
		return false
	}

	s.mu.Lock()
	h := s.current
	open := s.status == StatusOpen && h != nil && h.conn != nil
	s.mu.Unlock()

	if !open {
		return false
	}

	if err := h.conn.WriteJSON(outboundFrame{Content: text}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write chat message")
	}
	return true
}

// LoadHistory seeds the message list, typically before the first Connect.
func (s *Session) LoadHistory(msgs []Message) {
	s.feed.ReplaceMessages(msgs)
	s.notify()
}

// Status returns the current connection status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Anonymous reports the anonymity flag of the current or next connection.
func (s *Session) Anonymous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anonymous
}

// Snapshot returns a copy of the session and feed state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	status, anonymous := s.status, s.anonymous
	s.mu.Unlock()

	return State{FeedState: s.feed.Snapshot(), Status: status, Anonymous: anonymous}
}

// Updates signals after any state change. Signals are coalesced; read Snapshot after each one.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// URL builds the connect URL: the token whenever one exists, and a guest nickname when anonymous.
func (s *Session) URL(anonymous bool) (string, error) {
	query := url.Values{}
	if s.tokens != nil {
		if token := s.tokens.Token(); token != "" {
			query.Set("token", token)
		}
	}
	if anonymous {
		nickname, err := s.cfg.Nickname()
		if err != nil {
			return "", err
		}
		query.Set("nickname", nickname)
	}
	return req.BuildURL(s.cfg.WSBase, wsPath, query), nil
}

// resetLocked cancels both timers, invalidates in-flight dials and detaches the current handle,
// which the caller must close after releasing the lock.
func (s *Session) resetLocked() *handle {
	if s.settle != nil {
		s.settle.Stop()
		s.settle = nil
	}
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}

	s.epoch++

	old := s.current
	s.current = nil
	if old != nil {
		old.manual = true
	}
	return old
}

// dial runs on a timer goroutine. It is a no-op when epoch has been superseded.
func (s *Session) dial(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.settle = nil
	s.retry = nil

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{epoch: epoch, cancel: cancel}
	s.current = h
	s.status = StatusConnecting
	anonymous := s.anonymous
	s.mu.Unlock()
	s.notify()

	target, err := s.URL(anonymous)
	var conn Conn
	if err == nil {
		conn, err = s.dialer.Dial(ctx, target)
	}

	s.mu.Lock()
	if s.current != h || h.manual {
		s.mu.Unlock()
		cancel()
		if conn != nil {
			s.logger.Debug().Msg("Closing superseded chat connection")
			conn.Close()
		}
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("Chat dial failed")
		s.closed(h)
		return
	}
	h.conn = conn
	s.status = StatusOpen
	s.mu.Unlock()

	s.logger.Info().Bool("anonymous", anonymous).Msg("Chat connected")
	s.notify()

	go s.readLoop(h)
}

// readLoop applies frames until the connection ends. Malformed frames are skipped.
func (s *Session) readLoop(h *handle) {
	for {
		data, err := h.conn.ReadMessage()
		if err != nil {
			s.logger.Debug().Err(err).Msg("Chat read loop finished")
			break
		}

		if err := s.feed.Apply(data); err != nil {
			s.logger.Warn().Err(err).Bytes("frame", data).Msg("Skipping malformed chat frame")
			continue
		}
		s.notify()
	}

	s.closed(h)
}

// closed schedules exactly one reconnect, provided h is still tracked and was not torn down
// by the session itself.
func (s *Session) closed(h *handle) {
	s.mu.Lock()
	if s.current != h || h.manual {
		s.mu.Unlock()
		return
	}

	s.current = nil
	s.status = StatusClosedUnexpected
	s.epoch++
	epoch := s.epoch
	s.retry = time.AfterFunc(s.cfg.ReconnectDelay, func() { s.dial(epoch) })
	s.mu.Unlock()

	h.cancel()
	if h.conn != nil {
		h.conn.Close()
	}

	s.logger.Info().Dur("retry_in", s.cfg.ReconnectDelay).Msg("Chat connection lost, scheduling reconnect")
	s.notify()
}

func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func closeHandle(h *handle) {
	if h == nil {
		return
	}
	h.cancel()
	if h.conn != nil {
		h.conn.Close()
	}
}
