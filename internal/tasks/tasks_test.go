package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/shared"
)

// stubService implements services.Service over fixed playlist data.
type stubService struct {
	playlists []models.Playlist
	exports   map[string]*models.PlaylistExport
	failIDs   map[string]bool
}

func (s *stubService) Profile(ctx context.Context) (*models.Profile, error) {
	return &models.Profile{ID: "user1", DisplayName: "Test User"}, nil
}

func (s *stubService) Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, error) {
	return s.playlists, nil
}

func (s *stubService) AllPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return s.playlists, nil
}

func (s *stubService) Playlist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	export, ok := s.exports[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist not found: %s", playlistID)
	}
	return &models.PlaylistDetail{Playlist: export.Playlist, Tracks: export.Tracks}, nil
}

func (s *stubService) PlaylistItems(ctx context.Context, nextURL string) ([]models.Track, string, error) {
	return nil, "", nil
}

func (s *stubService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	if s.failIDs[playlistID] {
		return nil, fmt.Errorf("remote error for %s", playlistID)
	}
	export, ok := s.exports[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist not found: %s", playlistID)
	}
	return export, nil
}

func (s *stubService) Name() string {
	return "Stub"
}

func newStubService() *stubService {
	pl1 := models.Playlist{ID: "pl1", Name: "Morning Mix", URI: "spotify:playlist:pl1", TrackCount: 2}
	pl2 := models.Playlist{ID: "pl2", Name: "Evening Mix", URI: "spotify:playlist:pl2", TrackCount: 1}

	return &stubService{
		playlists: []models.Playlist{pl1, pl2},
		exports: map[string]*models.PlaylistExport{
			"pl1": {
				Playlist: pl1,
				Tracks: []models.Track{
					{ID: "t1", Title: "One", Artist: "A", DurationMS: 180000, Playable: true},
					{ID: "t2", Title: "Two", Artist: "B", DurationMS: 200000, Playable: true},
				},
			},
			"pl2": {
				Playlist: pl2,
				Tracks: []models.Track{
					{ID: "t3", Title: "Three", Artist: "C", DurationMS: 210000, Playable: true},
				},
			},
		},
		failIDs: map[string]bool{},
	}
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestBulkExport(t *testing.T) {
	t.Run("exports all playlists to json", func(t *testing.T) {
		engine := NewExportEngine(newStubService())
		dir := t.TempDir()

		result, err := engine.BulkExport(context.Background(), nil, []string{"pl1", "pl2"}, BulkExportOpts{
			Format:    "json",
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("expected 2 successes, got %+v", result)
		}
		for _, id := range []string{"pl1", "pl2"} {
			if _, err := os.Stat(filepath.Join(dir, id+".json")); err != nil {
				t.Errorf("missing export for %s: %v", id, err)
			}
		}
		if _, err := os.Stat(result.ManifestPath); err != nil {
			t.Errorf("missing manifest: %v", err)
		}
	})

	t.Run("records partial failures", func(t *testing.T) {
		svc := newStubService()
		svc.failIDs["pl2"] = true
		engine := NewExportEngine(svc)
		dir := t.TempDir()

		result, err := engine.BulkExport(context.Background(), nil, []string{"pl1", "pl2"}, BulkExportOpts{
			Format:    "txt",
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}

		var failed *PlaylistExportResult
		for i := range result.Results {
			if !result.Results[i].Success {
				failed = &result.Results[i]
			}
		}
		if failed == nil {
			t.Fatal("no failed result recorded")
		}
		if failed.PlaylistID != "pl2" || failed.Error == nil {
			t.Errorf("unexpected failure record: %+v", failed)
		}
	})

	t.Run("csv format writes tracks and metadata", func(t *testing.T) {
		engine := NewExportEngine(newStubService())
		dir := t.TempDir()

		result, err := engine.BulkExport(context.Background(), nil, []string{"pl1"}, BulkExportOpts{
			Format:    "csv",
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if len(result.Results) != 1 || len(result.Results[0].Files) != 2 {
			t.Fatalf("expected tracks + metadata files, got %+v", result.Results)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		engine := NewExportEngine(newStubService())
		prog := make(chan ProgressUpdate, 32)

		_, err := engine.BulkExport(context.Background(), prog, []string{"pl1"}, BulkExportOpts{
			Format:    "json",
			OutputDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		close(prog)
		seen := map[Phase]bool{}
		for update := range prog {
			seen[update.Phase] = true
		}
		if !seen[FetchSource] || !seen[ExportPlaylist] {
			t.Errorf("missing progress phases: %v", seen)
		}
	})

	t.Run("nil service errors", func(t *testing.T) {
		engine := NewExportEngine(nil)

		_, err := engine.BulkExport(context.Background(), nil, []string{"pl1"}, BulkExportOpts{})
		if err == nil {
			t.Fatal("expected error for nil service")
		}
	})
}

func TestSyncCache(t *testing.T) {
	t.Run("caches playlists and tracks", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		playlists := repositories.NewPlaylistRepository(db)
		tracks := repositories.NewTrackRepository(db)
		engine := NewExportEngine(newStubService())

		result, err := engine.SyncCache(context.Background(), nil, playlists, tracks)
		if err != nil {
			t.Fatalf("SyncCache failed: %v", err)
		}

		if result.SyncedPlaylists != 2 || result.SyncedTracks != 3 {
			t.Errorf("unexpected sync counts: %+v", result)
		}

		cached, err := playlists.List()
		if err != nil {
			t.Fatalf("failed to list cached playlists: %v", err)
		}
		if len(cached) != 2 {
			t.Fatalf("expected 2 cached playlists, got %d", len(cached))
		}

		pl1Tracks, err := tracks.ListByPlaylist(cached[0].ID)
		if err != nil {
			t.Fatalf("failed to list cached tracks: %v", err)
		}
		if len(pl1Tracks) != 2 {
			t.Errorf("expected 2 cached tracks, got %d", len(pl1Tracks))
		}
	})

	t.Run("collects per-playlist failures", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		svc := newStubService()
		svc.failIDs["pl2"] = true
		engine := NewExportEngine(svc)

		result, err := engine.SyncCache(context.Background(), nil,
			repositories.NewPlaylistRepository(db), repositories.NewTrackRepository(db))
		if err != nil {
			t.Fatalf("SyncCache failed: %v", err)
		}

		if result.SyncedPlaylists != 1 {
			t.Errorf("expected 1 synced playlist, got %d", result.SyncedPlaylists)
		}
		if len(result.Failures) != 1 || result.Failures[0].PlaylistID != "pl2" {
			t.Errorf("unexpected failures: %+v", result.Failures)
		}
	})

	t.Run("second sync replaces tracks", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		playlists := repositories.NewPlaylistRepository(db)
		tracks := repositories.NewTrackRepository(db)
		svc := newStubService()
		engine := NewExportEngine(svc)

		if _, err := engine.SyncCache(context.Background(), nil, playlists, tracks); err != nil {
			t.Fatalf("first sync failed: %v", err)
		}

		svc.exports["pl1"].Tracks = svc.exports["pl1"].Tracks[:1]
		if _, err := engine.SyncCache(context.Background(), nil, playlists, tracks); err != nil {
			t.Fatalf("second sync failed: %v", err)
		}

		cached, err := playlists.GetByServiceID("pl1")
		if err != nil {
			t.Fatalf("failed to get cached playlist: %v", err)
		}
		pl1Tracks, err := tracks.ListByPlaylist(cached.ID)
		if err != nil {
			t.Fatalf("failed to list cached tracks: %v", err)
		}
		if len(pl1Tracks) != 1 {
			t.Errorf("expected 1 track after re-sync, got %d", len(pl1Tracks))
		}
	})
}
