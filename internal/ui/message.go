package ui

import (
	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/player"
)

// playlistsFetchedMsg carries the playlist listing for the picker view.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// playlistOpenedMsg carries the playlist detail selected for playback.
type playlistOpenedMsg struct {
	detail *models.PlaylistDetail
	err    error
}

// stateUpdateMsg carries a playback state snapshot, either published by the
// reconciler's poll loop or taken after a user intent handler ran.
type stateUpdateMsg player.State

// playerClosedMsg signals that the player view tore down its selection.
type playerClosedMsg struct{}
