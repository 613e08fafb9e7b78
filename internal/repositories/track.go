package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/shared"
)

// TrackRepository persists cached tracks belonging to cached playlists.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new track into the database with generated ID and sequence
func (r *TrackRepository) Create(track *models.PersistedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	track.ID = shared.GenerateID()
	track.Sequence = sequence

	query := `
		INSERT INTO tracks (id, sequence, playlist_id, service_id, title, artist, album, duration_ms, playable, uri, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID,
		track.Sequence,
		track.PlaylistID,
		track.ServiceID,
		track.Track.Title,
		track.Track.Artist,
		track.Track.Album,
		track.Track.DurationMS,
		track.Track.Playable,
		track.Track.URI,
		track.CreatedAt,
		track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// ReplaceForPlaylist soft-deletes the playlist's cached tracks and inserts
// the given set in order, all within one transaction-free pass. A failed
// insert leaves earlier rows in place; callers re-sync to recover.
func (r *TrackRepository) ReplaceForPlaylist(playlistID string, tracks []models.Track) error {
	if err := r.DeleteForPlaylist(playlistID); err != nil {
		return err
	}

	for _, t := range tracks {
		persisted := models.NewPersistedTrack(playlistID, t)
		if err := r.Create(persisted); err != nil {
			return fmt.Errorf("failed to cache track %q: %w", t.Title, err)
		}
	}

	return nil
}

// ListByPlaylist retrieves the playlist's cached tracks ordered by sequence,
// excluding soft-deleted rows
func (r *TrackRepository) ListByPlaylist(playlistID string) ([]*models.PersistedTrack, error) {
	query := `
		SELECT id, sequence, playlist_id, service_id, title, artist, album, duration_ms, playable, uri, created_at, updated_at, deleted_at
		FROM tracks
		WHERE playlist_id = ? AND deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.PersistedTrack
	for rows.Next() {
		track, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// DeleteForPlaylist soft-deletes every cached track belonging to the playlist
func (r *TrackRepository) DeleteForPlaylist(playlistID string) error {
	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE playlist_id = ? AND deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now(), playlistID); err != nil {
		return fmt.Errorf("failed to delete tracks: %w", err)
	}

	return nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedTrack]
func (r *TrackRepository) scanRow(rows *sql.Rows) (*models.PersistedTrack, error) {
	var (
		id         string
		sequence   int
		playlistID string
		serviceID  string
		title      string
		artist     sql.NullString
		album      sql.NullString
		durationMS int
		playable   bool
		uri        sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &playlistID, &serviceID, &title, &artist, &album, &durationMS, &playable, &uri, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track := &models.PersistedTrack{
		ID:         id,
		Sequence:   sequence,
		PlaylistID: playlistID,
		ServiceID:  serviceID,
		Track: models.Track{
			ID:         serviceID,
			Title:      title,
			Artist:     artist.String,
			Album:      album.String,
			DurationMS: durationMS,
			Playable:   playable,
			URI:        uri.String,
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		track.DeletedAt = &t
	}

	return track, nil
}
