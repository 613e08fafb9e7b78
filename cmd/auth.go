package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spindle/internal/server"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 PKCE flow against Spotify.
//
// Starts a local HTTP server for the callback, opens the browser for user
// authorization, and waits for the exchange to land in the token store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.flow == nil {
		return fmt.Errorf("%w: set credentials.spotify.client_id in config.toml", shared.ErrMissingCredentials)
	}

	authURL, err := r.flow.AuthURL("/callback")
	if err != nil {
		return fmt.Errorf("failed to build authorization URL: %w", err)
	}

	oauthHandler := server.NewOAuthHandler(r.flow)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Session == nil {
		return fmt.Errorf("no session received")
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Session saved to %s\n\n", r.config.SessionPath())
	r.writePlain("You can now use: spindle play\n")

	return nil
}

// AuthStatus reports the token store's current state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session := r.store.Token()
	if session == nil {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run 'spindle auth login' to authenticate.\n")
		return nil
	}

	if session.Valid(time.Now()) {
		r.writePlain("✓ Authenticated\n")
		if !session.ExpiresAt.IsZero() {
			r.writePlain("Token expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
		}
	} else {
		r.writePlain("⚠ Access token expired\n")
	}

	if session.RefreshToken != "" {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: missing, re-run 'spindle auth login' when the token expires\n")
	}

	return nil
}

// AuthLogout destroys the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.store.Clear()
	r.logger.Info("session cleared")
	return r.writePlain("✓ Logged out\n")
}
