// Package services implements the remote music-service HTTP API client.
//
// # Two planes, two error contracts
//
// The account-data plane ([Service]: profile, playlists) returns ordinary Go
// errors wrapped around the shared sentinels.
//
// The playback control plane ([Player]: state, devices, transport controls)
// returns [Result] / [Status] values instead. Nothing on that plane raises an
// error: transport failures, non-2xx statuses, and decode failures all
// collapse into an error string, so the reconciliation loop in
// internal/player stays a straight-line state machine.
//
// # The Call wrapper
//
// Every request funnels through [Call], which attaches the bearer token from
// the injected [TokenSource], waits on the shared rate limiter, and maps the
// response into the Result contract. A 204 No Content (or ParseJSON=false)
// short-circuits to an empty success without reading the body.
//
// # Device targeting
//
// Mutating playback calls take an optional device id appended as a query
// parameter. An empty id lets the remote service target whatever device it
// considers active.
package services
