// Package ui implements the interactive playback remote using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow:
//  1. [PlaylistListView] : Browse and select a playlist to play
//  2. [PlayerView] : Drive the active device (play/pause, skip, seek, volume, shuffle, repeat)
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Playback snapshots flow through the reconciler's Updates channel; user gestures run controller intent
// handlers off the UI loop and report their own snapshot when done, so both writers converge on stateUpdateMsg.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, n/p, arrows, s/r, q) with contextual help
// displayed via charmbracelet/bubbles/help. Closing the player (esc or quit) best-effort pauses playback.
package ui
