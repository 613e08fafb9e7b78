package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/shared"
)

// SyncResult aggregates the outcome of a cache sync run.
type SyncResult struct {
	TotalPlaylists  int
	SyncedPlaylists int
	SyncedTracks    int
	Failures        []SyncFailure
}

// SyncFailure records one playlist that could not be cached.
type SyncFailure struct {
	PlaylistID   string
	PlaylistName string
	Error        error
}

// SyncCache refreshes the local playlist cache from the remote service.
//
// Every playlist the account can see is upserted; each playlist's tracks are
// replaced wholesale with the remote's current set. Per-playlist failures are
// collected, never fatal to the run.
func (e *ExportEngine) SyncCache(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	playlists *repositories.PlaylistRepository,
	tracks *repositories.TrackRepository,
) (*SyncResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(prog, fetchingSourceUpdate(1, 1))

	remote, err := e.service.AllPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, err)
	}

	result := &SyncResult{TotalPlaylists: len(remote)}
	total := len(remote)

	for i, pl := range remote {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		e.sendProgress(prog, syncPlaylistUpdate(i+1, total, pl.Name))

		persisted, err := playlists.Upsert(pl)
		if err != nil {
			result.Failures = append(result.Failures, SyncFailure{PlaylistID: pl.ID, PlaylistName: pl.Name, Error: err})
			continue
		}

		export, err := e.service.ExportPlaylist(ctx, pl.ID)
		if err != nil {
			result.Failures = append(result.Failures, SyncFailure{PlaylistID: pl.ID, PlaylistName: pl.Name, Error: err})
			continue
		}

		if err := tracks.ReplaceForPlaylist(persisted.ID, export.Tracks); err != nil {
			result.Failures = append(result.Failures, SyncFailure{PlaylistID: pl.ID, PlaylistName: pl.Name, Error: err})
			continue
		}

		result.SyncedPlaylists++
		result.SyncedTracks += len(export.Tracks)
		e.sendProgress(prog, syncTracksUpdate(i+1, total, pl.Name, len(export.Tracks)))
	}

	return result, nil
}
