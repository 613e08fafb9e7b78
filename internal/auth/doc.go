// Package auth owns the account session: the token store and the
// authorization-code-with-PKCE flow.
//
// [Store] is the single mutator of session state. It persists to a JSON file
// under fixed keys (access token, refresh token, expiry, PKCE verifier,
// state, redirect path) and degrades to in-memory-only when storage fails.
// It arms a one-shot timer 60 seconds ahead of expiry; a successful refresh
// replaces the session, a failed one clears it so upstream code forces
// re-authentication.
//
// [Flow] is the external collaborator producing sessions. Consumers of the
// token never see OAuth details: they depend on the store's AccessToken
// method (the services.TokenSource contract).
package auth
