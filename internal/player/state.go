package player

import (
	"github.com/desertthunder/spindle/internal/models"
)

// Field identifies a playback state field for last-writer tracking. User
// intent handlers record a touch time per field; poll merges skip fields
// touched within the suppression window.
type Field int

const (
	FieldPlaying Field = iota
	FieldPosition
	FieldVolume
	FieldShuffle
	FieldRepeat
	FieldTrack
)

// State is the locally-held playback snapshot published to the UI.
//
// It mirrors the remote player's truth, adjusted by optimistic updates from
// user intent handlers. Err carries the most recent remote-call failure.
type State struct {
	DeviceID     string
	DeviceActive bool
	IsPlaying    bool
	PositionMS   int
	DurationMS   int
	Volume       float64
	Shuffle      bool
	Repeat       models.RepeatMode
	TrackIndex   int
	Track        *models.Track
	Err          string
	Started      bool
	Disabled     bool
}

// Selection is the playlist currently opened for playback with its ordered
// track list. Tracks may be appended as pagination loads more items;
// appending deduplicates by track id.
type Selection struct {
	Playlist models.Playlist
	Tracks   []models.Track
	NextURL  string

	seen map[string]struct{}
}

// NewSelection opens a playlist detail for playback.
func NewSelection(detail *models.PlaylistDetail) *Selection {
	s := &Selection{
		Playlist: detail.Playlist,
		NextURL:  detail.NextURL,
		seen:     make(map[string]struct{}, len(detail.Tracks)),
	}
	s.Append(detail.Tracks)
	return s
}

// Append adds tracks to the selection, skipping ids already present.
// Returns the number of tracks actually appended.
func (s *Selection) Append(tracks []models.Track) int {
	added := 0
	for _, t := range tracks {
		if _, ok := s.seen[t.ID]; ok {
			continue
		}
		s.seen[t.ID] = struct{}{}
		s.Tracks = append(s.Tracks, t)
		added++
	}
	return added
}

// IndexOf returns the position of the track with the given id, or -1.
func (s *Selection) IndexOf(trackID string) int {
	for i, t := range s.Tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}

// clampPosition bounds a seek position to [0, duration], collapsing to 0
// when the duration is unknown.
func clampPosition(positionMS, durationMS int) int {
	if durationMS <= 0 {
		return 0
	}
	if positionMS < 0 {
		return 0
	}
	if positionMS > durationMS {
		return durationMS
	}
	return positionMS
}

// clampVolume bounds a volume level to [0, 1].
func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func wrapIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// findPlayableIndex scans from start in the given direction, wrapping at the
// list boundary, for the first playable track. Returns start (wrapped) when
// every track is unplayable, which terminates the scan after one full pass.
func findPlayableIndex(tracks []models.Track, start, direction int) int {
	if len(tracks) == 0 {
		return start
	}
	i := wrapIndex(start, len(tracks))
	for range tracks {
		if tracks[i].Playable {
			return i
		}
		i = wrapIndex(i+direction, len(tracks))
	}
	return wrapIndex(start, len(tracks))
}
