// Package models defines the domain types shared across the playback remote:
// account profile, playlists and tracks, playback devices, and the
// client-observed playback state snapshot.
//
// PlaybackState is a projection of remote truth, never authoritative; the
// reconciliation loop in internal/player decides which of its fields are
// merged into local state on each poll.
//
// Persisted* types are the cache rows stored by internal/repositories.
package models
