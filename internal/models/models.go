// package models defines the data model for the playback remote
package models

import (
	"fmt"
	"time"
)

// RepeatMode enumerates the remote service's repeat states.
type RepeatMode string

const (
	RepeatOff     RepeatMode = "off"
	RepeatTrack   RepeatMode = "track"
	RepeatContext RepeatMode = "context"
)

// Cycle advances off → context → track → off, matching the control's toggle order.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatContext
	case RepeatContext:
		return RepeatTrack
	default:
		return RepeatOff
	}
}

// Valid reports whether m is one of the three known modes.
func (m RepeatMode) Valid() bool {
	switch m {
	case RepeatOff, RepeatTrack, RepeatContext:
		return true
	}
	return false
}

// Profile represents the authenticated user's account profile.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string
	Followers   int
	ImageURL    string
}

// Track represents a playable track within a playlist.
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	DurationMS int
	Playable   bool
	URI        string
}

// Playlist represents playlist metadata as listed for the account.
type Playlist struct {
	ID          string
	Name        string
	Description string
	URI         string
	TrackCount  int
	Public      bool
	ImageURL    string
}

// PlaylistDetail is a playlist opened for playback: metadata plus its ordered tracks.
//
// Tracks may grow as pagination loads more items; NextURL points at the next
// page of the remote collection, empty when exhausted.
type PlaylistDetail struct {
	Playlist Playlist
	Tracks   []Track
	NextURL  string
}

// PlaylistExport is a fully-loaded playlist used by the export formatters.
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Device represents a remote-registered playback endpoint.
type Device struct {
	ID            string
	Name          string
	Type          string
	IsActive      bool
	IsRestricted  bool
	VolumePercent int
}

// PlaybackState is the client-observed projection of the remote player's truth.
//
// Never authoritative: each poll or event supersedes the previous snapshot.
type PlaybackState struct {
	DeviceID   string
	DeviceName string
	IsPlaying  bool
	PositionMS int
	DurationMS int
	Volume     float64
	Shuffle    bool
	Repeat     RepeatMode
	Track      *Track
}

// PersistedPlaylist is a cached playlist row.
type PersistedPlaylist struct {
	ID        string
	Sequence  int
	ServiceID string
	Playlist  Playlist
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Validate checks required fields before persistence.
func (p *PersistedPlaylist) Validate() error {
	if p.ServiceID == "" {
		return fmt.Errorf("playlist service_id is required")
	}
	if p.Playlist.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}

// PersistedTrack is a cached track row tied to a cached playlist.
type PersistedTrack struct {
	ID         string
	Sequence   int
	PlaylistID string
	ServiceID  string
	Track      Track
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Validate checks required fields before persistence.
func (t *PersistedTrack) Validate() error {
	if t.PlaylistID == "" {
		return fmt.Errorf("track playlist_id is required")
	}
	if t.ServiceID == "" {
		return fmt.Errorf("track service_id is required")
	}
	if t.Track.Title == "" {
		return fmt.Errorf("track title is required")
	}
	return nil
}

// NewPersistedPlaylist builds a cache row from a fetched playlist.
func NewPersistedPlaylist(pl Playlist) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		ServiceID: pl.ID,
		Playlist:  pl,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewPersistedTrack builds a cache row from a fetched track.
func NewPersistedTrack(playlistID string, track Track) *PersistedTrack {
	now := time.Now()
	return &PersistedTrack{
		PlaylistID: playlistID,
		ServiceID:  track.ID,
		Track:      track,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
