package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the account's playlists with an optional limit.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requireService(); err != nil {
		return err
	}

	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := r.spotify.AllPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		r.writePlain("\n")
	}

	return nil
}

// PlaylistsShow prints a playlist with its first page of tracks.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requireService(); err != nil {
		return err
	}

	detail, err := r.spotify.Playlist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(detail, pretty)
	}

	r.writePlain("Playlist: %s\n", detail.Playlist.Name)
	if detail.Playlist.Description != "" {
		r.writePlain("Description: %s\n", detail.Playlist.Description)
	}
	r.writePlain("Tracks: %d\n\n", detail.Playlist.TrackCount)

	for i, track := range detail.Tracks {
		marker := ""
		if !track.Playable {
			marker = " (unavailable)"
		}
		r.writePlain("%d. %s - %s [%s]%s\n", i+1, track.Artist, track.Title, shared.FormatTime(track.DurationMS), marker)
	}

	if detail.NextURL != "" {
		r.writePlain("\n...more tracks available\n")
	}

	return nil
}

// PlaylistsExport exports a single playlist with all tracks to JSON.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	outputFile := cmd.String("output")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	playlistID := cmd.String("id")

	if err := r.requireService(); err != nil {
		return err
	}

	r.logger.Infof("exporting playlist %v", playlistID)

	export, err := r.spotify.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if outputFile == "" && !useJSON {
		outputFile = fmt.Sprintf("spotify_%s.json", export.Playlist.Name)
	}

	if outputFile != "" {
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		r.logger.Infof("playlist exported to %v with %v tracks", outputFile, len(export.Tracks))

		r.writePlain("✓ Playlist exported to %s\n", outputFile)
		r.writePlain("  Playlist: %s\n", export.Playlist.Name)
		r.writePlain("  Tracks: %d\n", len(export.Tracks))
		return nil
	}

	return r.writeJSON(export, pretty)
}

// PlaylistsExportAll exports multiple playlists through the worker pool,
// streaming progress to the terminal.
func (r *Runner) PlaylistsExportAll(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	format := cmd.String("format")
	outputDir := cmd.String("output-dir")
	workers := cmd.Int("workers")

	if err := r.requireService(); err != nil {
		return err
	}

	if len(ids) == 0 {
		playlists, err := r.spotify.AllPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
	}

	if len(ids) == 0 {
		return r.writePlain("No playlists to export\n")
	}

	prog := make(chan tasks.ProgressUpdate, len(ids)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := r.engine.BulkExport(ctx, prog, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  outputDir,
		NumWorkers: workers,
		RateLimit:  r.config.Player.RateLimit,
	})
	close(prog)
	<-done

	if err != nil {
		return fmt.Errorf("bulk export failed: %w", err)
	}

	r.writePlainln("✓ Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("⚠ %d playlists failed:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  %s: %v\n", res.PlaylistID, res.Error)
			}
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	return nil
}
