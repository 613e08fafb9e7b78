// package services defines interfaces for the remote music service HTTP API
package services

import (
	"context"

	"github.com/desertthunder/spindle/internal/models"
)

// Service is the account-data plane: profile and playlist reads.
//
// Errors follow normal Go conventions, wrapped around shared sentinels.
type Service interface {
	// Profile retrieves the authenticated user's profile.
	Profile(ctx context.Context) (*models.Profile, error)

	// Playlists retrieves one page of the user's playlists.
	Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, error)

	// AllPlaylists walks pagination and returns every playlist.
	AllPlaylists(ctx context.Context) ([]models.Playlist, error)

	// Playlist retrieves a playlist with its first page of tracks.
	Playlist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error)

	// PlaylistItems fetches the page of tracks at nextURL, returning the
	// following page's URL (empty when exhausted).
	PlaylistItems(ctx context.Context, nextURL string) ([]models.Track, string, error)

	// ExportPlaylist retrieves a playlist with all of its tracks loaded.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// Name returns the name of the service.
	Name() string
}

// Player is the playback control plane consumed by the reconciliation loop
// and the intent handlers.
//
// Every method reports failure through the Result/Status contract rather than
// a Go error, keeping the poll loop's control flow branch-free. Mutating
// calls accept an optional device id; empty lets the remote service target
// whatever device it considers active.
type Player interface {
	// State fetches the remote playback snapshot. A nil Data with empty Err
	// means no active playback session.
	State(ctx context.Context) Result[models.PlaybackState]

	// Devices lists the playback devices registered to the account.
	Devices(ctx context.Context) Result[[]models.Device]

	// Start begins playback of a context at an offset, restarting from that
	// offset when called again for the same context.
	Start(ctx context.Context, opts StartOpts) Status

	// Resume un-pauses the already-started context without supplying one.
	Resume(ctx context.Context, deviceID string) Status

	Pause(ctx context.Context, deviceID string) Status
	Next(ctx context.Context, deviceID string) Status
	Previous(ctx context.Context, deviceID string) Status
	Seek(ctx context.Context, positionMS int, deviceID string) Status
	SetVolume(ctx context.Context, percent int, deviceID string) Status
	SetShuffle(ctx context.Context, on bool, deviceID string) Status
	SetRepeat(ctx context.Context, mode models.RepeatMode, deviceID string) Status

	// Transfer moves playback to the given device; play preserves the remote's
	// current play/pause intent across the move.
	Transfer(ctx context.Context, deviceID string, play bool) Status
}

// StartOpts carries the full playback context for [Player.Start].
type StartOpts struct {
	ContextURI string
	Offset     int
	PositionMS int
	DeviceID   string
}
