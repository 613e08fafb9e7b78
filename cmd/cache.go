package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/tasks"
	"github.com/urfave/cli/v3"
)

// openDatabase opens the cache database and ensures migrations are applied.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// CacheSync refreshes the local playlist cache from Spotify.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	playlists := repositories.NewPlaylistRepository(db)
	tracks := repositories.NewTrackRepository(db)

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := r.engine.SyncCache(ctx, prog, playlists, tracks)
	close(prog)
	<-done

	if err != nil {
		return fmt.Errorf("cache sync failed: %w", err)
	}

	r.writePlainln("✓ Synced %d/%d playlists (%d tracks)", result.SyncedPlaylists, result.TotalPlaylists, result.SyncedTracks)
	if len(result.Failures) > 0 {
		r.writePlain("⚠ %d playlists failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			r.writePlain("  %s (%s): %v\n", f.PlaylistName, f.PlaylistID, f.Error)
		}
	}

	return nil
}

// CacheList prints the cached playlists.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewPlaylistRepository(db)
	playlists, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	if useJSON {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		r.writePlain("Cache is empty\n")
		r.writePlain("Run 'spindle cache sync' to populate it.\n")
		return nil
	}

	r.writePlain("Cached playlists (%d):\n\n", len(playlists))
	for _, p := range playlists {
		r.writePlain("%d. %s\n", p.Sequence, p.Playlist.Name)
		r.writePlain("   Service ID: %s\n", p.ServiceID)
		r.writePlain("   Tracks: %d\n", p.Playlist.TrackCount)
		r.writePlain("   Updated: %s\n\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// CacheClear soft-deletes every cached playlist and its tracks.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	playlists := repositories.NewPlaylistRepository(db)
	tracks := repositories.NewTrackRepository(db)

	cached, err := playlists.List()
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	cleared := 0
	for _, p := range cached {
		if err := tracks.DeleteForPlaylist(p.ID); err != nil {
			r.logger.Warnf("failed to clear tracks for %v: %v", p.Playlist.Name, err)
		}
		if err := playlists.Delete(p.ID); err != nil {
			r.logger.Warnf("failed to clear playlist %v: %v", p.Playlist.Name, err)
			continue
		}
		cleared++
	}

	return r.writePlain("✓ Cleared %d cached playlists\n", cleared)
}
