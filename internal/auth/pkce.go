package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// playbackScopes covers profile reads plus the playback-state and
// playback-control endpoints the remote control surface needs.
var playbackScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-read-currently-playing",
	"user-read-playback-state",
	"user-modify-playback-state",
	"playlist-read-private",
	"user-read-playback-position",
	"user-library-read",
}

// Flow implements the authorization-code-with-PKCE exchange for a public
// client (no client secret). It stashes the verifier and state in the [Store]
// before redirecting and consumes them during the exchange.
type Flow struct {
	config *oauth2.Config
	store  *Store
	logger *log.Logger
}

var _ Refresher = (*Flow)(nil)

// NewFlow creates a Flow for the given client id and redirect URI.
func NewFlow(clientID, redirectURI string, store *Store, logger *log.Logger) (*Flow, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      playbackScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Flow{config: config, store: store, logger: logger}, nil
}

// AuthURL generates a fresh verifier and state token, stashes both in the
// store, and returns the authorization URL to open in a browser.
func (f *Flow) AuthURL(redirectPath string) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", err
	}

	verifier := oauth2.GenerateVerifier()
	f.store.StashAuthRequest(verifier, state, redirectPath)

	return f.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Exchange validates the callback state, exchanges the authorization code
// using the stashed verifier, and stores the resulting session.
func (f *Flow) Exchange(ctx context.Context, code, state string) (*Session, error) {
	verifier, wantState, _ := f.store.ConsumeAuthRequest()
	if verifier == "" {
		return nil, fmt.Errorf("%w: no pending authorization request", shared.ErrAuthFailed)
	}
	if state != wantState {
		return nil, shared.ErrStateMismatch
	}

	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	session := sessionFromToken(token)
	f.store.SetSession(session)
	return session, nil
}

// Refresh exchanges a refresh token for a new session. Implements [Refresher].
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	source := f.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return sessionFromToken(token), nil
}

func sessionFromToken(t *oauth2.Token) *Session {
	session := &Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		session.ExpiresAt = t.Expiry.Truncate(time.Second)
	}
	return session
}
