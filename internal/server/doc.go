// Package server provides HTTP routing, middleware, and OAuth callback handling for the CLI login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow with PKCE.
//
// The handler forwards the authorization code and state parameter to an [Exchanger],
// which validates the state (CSRF protection) against the stashed value and exchanges
// the code using the stashed verifier. The resulting session is sent through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs the login command, a temporary HTTP server starts on the configured
// host and port, handles the callback, and shuts down after receiving the session.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
