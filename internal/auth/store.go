package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/shared"
)

// refreshLeeway is how far ahead of expiry the store refreshes proactively.
const refreshLeeway = 60 * time.Second

// Refresher exchanges a refresh token for a new session. Implemented by [Flow].
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// fileState is the on-disk shape of the store: fixed keys for the session,
// plus the in-flight authorization request (PKCE verifier, state, and the
// path to return to after login).
type fileState struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	Verifier     string `json:"verifier,omitempty"`
	AuthState    string `json:"auth_state,omitempty"`
	RedirectPath string `json:"redirect_path,omitempty"`
}

// Store owns the current [Session]: it persists to a JSON file, schedules a
// proactive refresh ahead of expiry, and is the only mutator of session state.
//
// Storage failures degrade to an in-memory-only session; they are never fatal.
type Store struct {
	mu        sync.Mutex
	path      string
	session   *Session
	verifier  string
	authState string
	redirect  string
	refresher Refresher
	timer     *time.Timer
	logger    *log.Logger
	now       func() time.Time
}

// NewStore creates a Store backed by the file at path, loading any persisted
// session. Wire a [Refresher] with [Store.SetRefresher] to enable proactive
// refresh.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Store{path: path, logger: logger, now: time.Now}
	s.load()
	s.mu.Lock()
	s.scheduleRefresh()
	s.mu.Unlock()
	return s
}

// SetRefresher wires the refresh collaborator and re-arms the refresh timer.
func (s *Store) SetRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
	s.scheduleRefresh()
}

// Token returns a copy of the current session, or nil when logged out.
func (s *Store) Token() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// AccessToken implements services.TokenSource.
func (s *Store) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.AccessToken == "" {
		return "", shared.ErrNotAuthenticated
	}
	if !s.session.Valid(s.now()) {
		return "", shared.ErrTokenExpired
	}
	return s.session.AccessToken, nil
}

// SetToken replaces the session. An empty refresh keeps the previous refresh
// token (refresh responses may omit it); expiresIn <= 0 leaves the expiry
// unset. Persists and re-arms the refresh timer.
func (s *Store) SetToken(access, refresh string, expiresIn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{AccessToken: access, RefreshToken: refresh}
	if refresh == "" && s.session != nil {
		session.RefreshToken = s.session.RefreshToken
	}
	if expiresIn > 0 {
		session.ExpiresAt = s.now().Add(time.Duration(expiresIn) * time.Second)
	}

	s.session = session
	s.persist()
	s.scheduleRefresh()
}

// SetSession replaces the session wholesale (used after an OAuth exchange).
func (s *Store) SetSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.persist()
	s.scheduleRefresh()
}

// Clear destroys the session and any pending authorization request.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.verifier = ""
	s.authState = ""
	s.redirect = ""
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.persist()
}

// StashAuthRequest persists the PKCE verifier, state token, and post-login
// redirect path ahead of sending the user to the authorization page.
func (s *Store) StashAuthRequest(verifier, state, redirectPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = verifier
	s.authState = state
	s.redirect = redirectPath
	s.persist()
}

// ConsumeAuthRequest returns and clears the stashed authorization request.
func (s *Store) ConsumeAuthRequest() (verifier, state, redirectPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	verifier, state, redirectPath = s.verifier, s.authState, s.redirect
	s.verifier = ""
	s.authState = ""
	s.redirect = ""
	s.persist()
	return verifier, state, redirectPath
}

// Close stops the refresh timer without touching persisted state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// load reads persisted state; failures degrade to an empty in-memory store.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnf("failed to read session file: %v", err)
		}
		return
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warnf("failed to parse session file: %v", err)
		return
	}

	s.verifier = state.Verifier
	s.authState = state.AuthState
	s.redirect = state.RedirectPath

	if state.AccessToken == "" {
		return
	}
	session := &Session{
		AccessToken:  state.AccessToken,
		RefreshToken: state.RefreshToken,
	}
	if state.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(state.ExpiresAt, 0)
	}
	s.session = session
}

// persist writes the current state; callers hold the mutex. Write failures
// are logged and otherwise ignored.
func (s *Store) persist() {
	state := fileState{
		Verifier:     s.verifier,
		AuthState:    s.authState,
		RedirectPath: s.redirect,
	}
	if s.session != nil {
		state.AccessToken = s.session.AccessToken
		state.RefreshToken = s.session.RefreshToken
		if !s.session.ExpiresAt.IsZero() {
			state.ExpiresAt = s.session.ExpiresAt.Unix()
		}
	}

	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Warnf("failed to encode session state: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.logger.Warnf("failed to create session directory: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		s.logger.Warnf("failed to write session file: %v", err)
	}
}

// scheduleRefresh arms a one-shot timer at expiry minus the leeway; callers
// hold the mutex. On firing, a successful refresh replaces the session and a
// failure clears it, forcing re-authentication upstream.
func (s *Store) scheduleRefresh() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.refresher == nil || s.session == nil || s.session.RefreshToken == "" || s.session.ExpiresAt.IsZero() {
		return
	}

	delay := s.session.ExpiresAt.Add(-refreshLeeway).Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	refreshToken := s.session.RefreshToken
	s.timer = time.AfterFunc(delay, func() {
		s.refresh(refreshToken)
	})
}

func (s *Store) refresh(refreshToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := s.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		s.logger.Warnf("token refresh failed, clearing session: %v", err)
		s.Clear()
		return
	}

	if session.RefreshToken == "" {
		session.RefreshToken = refreshToken
	}
	s.SetSession(session)
	s.logger.Debug("session refreshed", "expires_at", session.ExpiresAt)
}
