package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/shared"
)

// PlaylistRepository persists cached playlists.
//
// Handles playlist CRUD operations with soft delete support and
// remote-service id lookups.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlist.ID = shared.GenerateID()
	playlist.Sequence = sequence

	query := `
		INSERT INTO playlists (id, sequence, service_id, name, description, uri, track_count, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		playlist.ID,
		playlist.Sequence,
		playlist.ServiceID,
		playlist.Playlist.Name,
		playlist.Playlist.Description,
		playlist.Playlist.URI,
		playlist.Playlist.TrackCount,
		playlist.Playlist.Public,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, service_id, name, description, uri, track_count, public, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByServiceID retrieves a playlist by its remote-service id
func (r *PlaylistRepository) GetByServiceID(serviceID string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, service_id, name, description, uri, track_count, public, created_at, updated_at, deleted_at
		FROM playlists
		WHERE service_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, serviceID))
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.UpdatedAt = now

	query := `
		UPDATE playlists
		SET name = ?, description = ?, uri = ?, track_count = ?, public = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		playlist.Playlist.Name,
		playlist.Playlist.Description,
		playlist.Playlist.URI,
		playlist.Playlist.TrackCount,
		playlist.Playlist.Public,
		now,
		playlist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", playlist.ID)
	}

	return nil
}

// Upsert creates the playlist when its remote-service id is unknown and
// updates the cached copy otherwise. Returns the persisted row. Lookup
// failures other than not-found are returned as-is so a flaky read never
// routes to a duplicate insert.
func (r *PlaylistRepository) Upsert(pl models.Playlist) (*models.PersistedPlaylist, error) {
	existing, err := r.GetByServiceID(pl.ID)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		persisted := models.NewPersistedPlaylist(pl)
		if err := r.Create(persisted); err != nil {
			return nil, err
		}
		return persisted, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up cached playlist: %w", err)
	}

	existing.Playlist = pl
	if err := r.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all cached playlists ordered by sequence, excluding soft-deleted rows
func (r *PlaylistRepository) List() ([]*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, service_id, name, description, uri, track_count, public, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// scanOne scans a single row into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PersistedPlaylist, error) {
	var (
		id          string
		sequence    int
		serviceID   string
		name        string
		description sql.NullString
		uri         sql.NullString
		trackCount  int
		public      bool
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &serviceID, &name, &description, &uri, &trackCount, &public, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	return buildPlaylist(id, sequence, serviceID, name, description, uri, trackCount, public, createdAt, updatedAt, deletedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scanRow(rows *sql.Rows) (*models.PersistedPlaylist, error) {
	var (
		id          string
		sequence    int
		serviceID   string
		name        string
		description sql.NullString
		uri         sql.NullString
		trackCount  int
		public      bool
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &serviceID, &name, &description, &uri, &trackCount, &public, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	return buildPlaylist(id, sequence, serviceID, name, description, uri, trackCount, public, createdAt, updatedAt, deletedAt), nil
}

func buildPlaylist(id string, sequence int, serviceID, name string, description, uri sql.NullString, trackCount int, public bool, createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.PersistedPlaylist {
	playlist := &models.PersistedPlaylist{
		ID:        id,
		Sequence:  sequence,
		ServiceID: serviceID,
		Playlist: models.Playlist{
			ID:          serviceID,
			Name:        name,
			Description: description.String,
			URI:         uri.String,
			TrackCount:  trackCount,
			Public:      public,
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		playlist.DeletedAt = &t
	}
	return playlist
}
