package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/player"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	PlayerView
)

const (
	seekStepMS    = 5000
	volumeStep    = 0.05
	progressWidth = 30
)

// Model represents the TUI application state.
//
// Playback state flows in from two directions: the reconciler's Updates
// channel (poll-driven snapshots) and snapshots taken right after a user
// intent handler runs. Both arrive as stateUpdateMsg.
type Model struct {
	ctx          context.Context
	view         ViewState
	spotify      services.Service
	controller   *player.Controller
	reconciler   *player.Reconciler
	width        int
	height       int
	playlistList list.Model
	playlists    []models.Playlist
	state        player.State
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies. The
// reconciler's Run loop must already be started by the caller.
func NewModel(ctx context.Context, spotify services.Service, controller *player.Controller, reconciler *player.Reconciler) *Model {
	playlistList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	playlistList.Title = "Spotify Playlists"

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		spotify:      spotify,
		controller:   controller,
		reconciler:   reconciler,
		playlistList: playlistList,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init fetches playlists and begins consuming reconciler snapshots.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPlaylists(), m.waitForState())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case PlayerView:
			return m.handlePlayerKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case playlistOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.controller.Open(msg.detail, 0)
		m.state = m.controller.Snapshot()
		m.view = PlayerView
		return m, nil

	case stateUpdateMsg:
		m.state = player.State(msg)
		return m, m.waitForState()

	case playerClosedMsg:
		m.view = PlaylistListView
		m.state = m.controller.Snapshot()
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case PlayerView:
		return m.renderPlayer()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.openPlaylist(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Sequence(m.closePlayer(), tea.Quit)
	case key.Matches(msg, m.keys.back):
		return m, m.closePlayer()
	case key.Matches(msg, m.keys.play):
		return m, m.playerCmd(m.controller.TogglePlay)
	case key.Matches(msg, m.keys.next):
		return m, m.playerCmd(m.controller.Next)
	case key.Matches(msg, m.keys.prev):
		return m, m.playerCmd(m.controller.Previous)
	case key.Matches(msg, m.keys.seekFwd):
		return m, m.playerCmd(func(ctx context.Context) { m.controller.SeekBy(ctx, seekStepMS) })
	case key.Matches(msg, m.keys.seekBck):
		return m, m.playerCmd(func(ctx context.Context) { m.controller.SeekBy(ctx, -seekStepMS) })
	case key.Matches(msg, m.keys.volUp):
		return m, m.playerCmd(func(ctx context.Context) { m.controller.AdjustVolume(ctx, volumeStep) })
	case key.Matches(msg, m.keys.volDown):
		return m, m.playerCmd(func(ctx context.Context) { m.controller.AdjustVolume(ctx, -volumeStep) })
	case key.Matches(msg, m.keys.shuffle):
		return m, m.playerCmd(m.controller.ToggleShuffle)
	case key.Matches(msg, m.keys.repeat):
		return m, m.playerCmd(m.controller.CycleRepeat)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == PlaylistListView {
		m.playlistList, cmd = m.playlistList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.spotify.AllPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) openPlaylist(playlistID string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.spotify.Playlist(m.ctx, playlistID)
		return playlistOpenedMsg{detail: detail, err: err}
	}
}

// closePlayer tears down the selection, best-effort pausing playback.
func (m *Model) closePlayer() tea.Cmd {
	return func() tea.Msg {
		m.controller.Close(m.ctx)
		return playerClosedMsg{}
	}
}

// playerCmd runs a controller intent handler off the UI loop and reports the
// resulting snapshot.
func (m *Model) playerCmd(fn func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return stateUpdateMsg(m.controller.Snapshot())
	}
}

// waitForState blocks on the reconciler's Updates channel.
func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.reconciler.Updates()
		if !ok {
			return nil
		}
		return stateUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderPlayer() string {
	selection := m.controller.Selection()
	if selection == nil {
		return styles.warn.Render("No playlist open\n\nPress esc to go back")
	}

	title := styles.title.Render(selection.Playlist.Name)

	trackLine := "No track"
	if m.state.Track != nil {
		trackLine = fmt.Sprintf("%s - %s", m.state.Track.Artist, m.state.Track.Title)
		if m.state.Track.Album != "" {
			trackLine = fmt.Sprintf("%s (%s)", trackLine, m.state.Track.Album)
		}
	}

	status := "⏸ paused"
	if m.state.IsPlaying {
		status = "▶ playing"
	}

	device := styles.warn.Render("device: activating...")
	if m.state.DeviceActive {
		device = styles.ok.Render("device: active")
	}

	progress := fmt.Sprintf("%s %s / %s",
		renderProgressBar(m.state.PositionMS, m.state.DurationMS, progressWidth),
		shared.FormatTime(m.state.PositionMS),
		shared.FormatTime(m.state.DurationMS),
	)

	modes := fmt.Sprintf("volume %3.0f%%  shuffle %s  repeat %s",
		m.state.Volume*100,
		onOff(m.state.Shuffle),
		m.state.Repeat,
	)

	var errLine string
	if m.state.Err != "" {
		errLine = "\n" + styles.err.Render(m.state.Err)
	}

	helpView := m.help.FullHelpView(m.keys.FullHelp())

	return fmt.Sprintf("%s\n%s\n\n%s\n%s  %s\n%s%s\n\n%s",
		title, trackLine, progress, status, device, modes, errLine, helpView)
}

// renderProgressBar draws a fixed-width bar filled proportionally to the
// playback position.
func renderProgressBar(positionMS, durationMS, width int) string {
	filled := 0
	if durationMS > 0 {
		filled = positionMS * width / durationMS
		if filled > width {
			filled = width
		}
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
