// Package repositories implements the local playlist cache on SQLite.
//
// The cache keeps the last-synced copy of the account's playlists and their
// tracks so the picker renders without a network round trip. Rows are
// soft-deleted (deleted_at timestamps) and ordered by per-table sequence
// numbers generated through [NextSequence].
//
// [PlaylistRepository] owns the playlists table; [TrackRepository] owns the
// tracks table, keyed by the cached playlist's id. A sync replaces a
// playlist's tracks wholesale via [TrackRepository.ReplaceForPlaylist].
package repositories
