package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/spindle/internal/shared"
)

type stubRefresher struct {
	session   *Session
	err       error
	refreshed chan string
}

func (r *stubRefresher) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if r.refreshed != nil {
		r.refreshed <- refreshToken
	}
	return r.session, r.err
}

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestSessionValid(t *testing.T) {
	now := time.Now()

	tc := []struct {
		name    string
		session *Session
		want    bool
	}{
		{
			name:    "nil session",
			session: nil,
			want:    false,
		},
		{
			name:    "empty access token",
			session: &Session{},
			want:    false,
		},
		{
			name:    "zero expiry is usable",
			session: &Session{AccessToken: "tok"},
			want:    true,
		},
		{
			name:    "future expiry",
			session: &Session{AccessToken: "tok", ExpiresAt: now.Add(time.Hour)},
			want:    true,
		},
		{
			name:    "past expiry",
			session: &Session{AccessToken: "tok", ExpiresAt: now.Add(-time.Hour)},
			want:    false,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore(t *testing.T) {
	t.Run("starts empty without a session file", func(t *testing.T) {
		store := NewStore(sessionPath(t), nil)
		defer store.Close()

		if store.Token() != nil {
			t.Error("expected no session")
		}
		if _, err := store.AccessToken(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("persists the session across restarts", func(t *testing.T) {
		path := sessionPath(t)

		store := NewStore(path, nil)
		store.SetToken("access", "refresh", 3600)
		store.Close()

		reopened := NewStore(path, nil)
		defer reopened.Close()

		session := reopened.Token()
		if session == nil {
			t.Fatal("expected session to survive restart")
		}
		if session.AccessToken != "access" || session.RefreshToken != "refresh" {
			t.Errorf("unexpected session: %+v", session)
		}
		if session.ExpiresAt.IsZero() {
			t.Error("expected expiry to be persisted")
		}

		token, err := reopened.AccessToken()
		if err != nil {
			t.Fatalf("expected usable token, got %v", err)
		}
		if token != "access" {
			t.Errorf("expected 'access', got %s", token)
		}
	})

	t.Run("degrades to empty on a corrupt session file", func(t *testing.T) {
		path := sessionPath(t)
		if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		store := NewStore(path, nil)
		defer store.Close()

		if store.Token() != nil {
			t.Error("expected empty store after corrupt file")
		}
	})

	t.Run("expired token surfaces ErrTokenExpired", func(t *testing.T) {
		store := NewStore(sessionPath(t), nil)
		defer store.Close()

		store.SetSession(&Session{
			AccessToken: "stale",
			ExpiresAt:   time.Now().Add(-time.Minute),
		})

		if _, err := store.AccessToken(); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("SetToken keeps the previous refresh token when omitted", func(t *testing.T) {
		store := NewStore(sessionPath(t), nil)
		defer store.Close()

		store.SetToken("first", "refresh1", 3600)
		store.SetToken("second", "", 3600)

		session := store.Token()
		if session.AccessToken != "second" {
			t.Errorf("expected rotated access token, got %s", session.AccessToken)
		}
		if session.RefreshToken != "refresh1" {
			t.Errorf("expected refresh token to be retained, got %s", session.RefreshToken)
		}
	})

	t.Run("Clear destroys the session and pending auth request", func(t *testing.T) {
		path := sessionPath(t)

		store := NewStore(path, nil)
		store.SetToken("access", "refresh", 3600)
		store.StashAuthRequest("verifier", "state", "/callback")
		store.Clear()
		store.Close()

		reopened := NewStore(path, nil)
		defer reopened.Close()

		if reopened.Token() != nil {
			t.Error("expected session to be gone")
		}
		if v, _, _ := reopened.ConsumeAuthRequest(); v != "" {
			t.Error("expected pending auth request to be gone")
		}
	})

	t.Run("auth request round trip", func(t *testing.T) {
		path := sessionPath(t)

		store := NewStore(path, nil)
		store.StashAuthRequest("verifier", "state", "/callback")
		store.Close()

		reopened := NewStore(path, nil)
		defer reopened.Close()

		verifier, state, redirect := reopened.ConsumeAuthRequest()
		if verifier != "verifier" || state != "state" || redirect != "/callback" {
			t.Errorf("unexpected auth request: %s %s %s", verifier, state, redirect)
		}

		if v, s, r := reopened.ConsumeAuthRequest(); v != "" || s != "" || r != "" {
			t.Error("expected second consume to return empty values")
		}
	})

	t.Run("refreshes the session ahead of expiry", func(t *testing.T) {
		store := NewStore(sessionPath(t), nil)
		defer store.Close()

		refresher := &stubRefresher{
			session: &Session{
				AccessToken:  "fresh",
				RefreshToken: "refresh2",
				ExpiresAt:    time.Now().Add(time.Hour),
			},
			refreshed: make(chan string, 1),
		}

		// Expiry inside the leeway window fires the refresh immediately.
		store.SetSession(&Session{
			AccessToken:  "stale",
			RefreshToken: "refresh1",
			ExpiresAt:    time.Now().Add(time.Second),
		})
		store.SetRefresher(refresher)

		select {
		case got := <-refresher.refreshed:
			if got != "refresh1" {
				t.Errorf("expected refresh with 'refresh1', got %s", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("expected refresh to fire")
		}

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if session := store.Token(); session != nil && session.AccessToken == "fresh" {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Error("expected refreshed session to replace the stale one")
	})

	t.Run("failed refresh clears the session", func(t *testing.T) {
		store := NewStore(sessionPath(t), nil)
		defer store.Close()

		refresher := &stubRefresher{
			err:       errors.New("refresh denied"),
			refreshed: make(chan string, 1),
		}

		store.SetSession(&Session{
			AccessToken:  "stale",
			RefreshToken: "refresh1",
			ExpiresAt:    time.Now().Add(time.Second),
		})
		store.SetRefresher(refresher)

		select {
		case <-refresher.refreshed:
		case <-time.After(2 * time.Second):
			t.Fatal("expected refresh to fire")
		}

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if store.Token() == nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Error("expected session to be cleared after failed refresh")
	})
}
