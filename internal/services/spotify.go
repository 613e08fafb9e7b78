// Spotify Web API implementation of [Service] and [Player]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type followers struct {
	Total int `json:"total"`
}

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"`
	Followers   followers      `json:"followers"`
	Images      []spotifyImage `json:"images"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type spotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsPlayable *bool           `json:"is_playable"` // absent means playable
	URI        string          `json:"uri"`
}

type playlistTrackItem struct {
	AddedAt string       `json:"added_at"`
	Track   spotifyTrack `json:"track"`
}

type playlistTracksPage struct {
	Items []playlistTrackItem `json:"items"`
	Total int                 `json:"total"`
	Next  *string             `json:"next"`
}

type spotifyPlaylist struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Public      bool               `json:"public"`
	Tracks      playlistTracksPage `json:"tracks"`
	URI         string             `json:"uri"`
	Images      []spotifyImage     `json:"images"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

type simplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
	Images      []spotifyImage       `json:"images"`
}

type paginatedPlaylists struct {
	Items  []simplePlaylist `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Next   *string          `json:"next"`
}

type spotifyDevice struct {
	ID            string `json:"id"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	VolumePercent *int   `json:"volume_percent"`
}

type devicesResponse struct {
	Devices []spotifyDevice `json:"devices"`
}

type playerStateResponse struct {
	Device       spotifyDevice `json:"device"`
	ShuffleState bool          `json:"shuffle_state"`
	RepeatState  string        `json:"repeat_state"`
	ProgressMS   int           `json:"progress_ms"`
	IsPlaying    bool          `json:"is_playing"`
	Item         *spotifyTrack `json:"item"`
}

// SpotifyService implements [Service] and [Player] against the Spotify Web API.
type SpotifyService struct {
	client  *Client
	baseURL string
}

var (
	_ Service = (*SpotifyService)(nil)
	_ Player  = (*SpotifyService)(nil)
)

// NewSpotifyService creates a SpotifyService. An empty baseURL targets the
// production API; tests point it at an httptest server.
func NewSpotifyService(baseURL string, client *Client) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	return &SpotifyService{client: client, baseURL: baseURL}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// withDevice appends a device_id query parameter when deviceID is present.
func withDevice(endpoint, deviceID string) string {
	if deviceID == "" {
		return endpoint
	}
	sep := "?"
	for _, c := range endpoint {
		if c == '?' {
			sep = "&"
			break
		}
	}
	return endpoint + sep + "device_id=" + url.QueryEscape(deviceID)
}

func (t spotifyTrack) toModel() models.Track {
	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		Playable:   t.IsPlayable == nil || *t.IsPlayable,
		URI:        t.URI,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

func (p simplePlaylist) toModel() models.Playlist {
	playlist := models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		URI:         p.URI,
		TrackCount:  p.Tracks.Total,
		Public:      p.Public,
	}
	if len(p.Images) > 0 {
		playlist.ImageURL = p.Images[0].URL
	}
	return playlist
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*models.Profile, error) {
	if err := s.client.Authenticated(); err != nil {
		return nil, err
	}

	res := Call[spotifyUser](ctx, s.client, CallOpts{
		Method:    "GET",
		URL:       s.baseURL + "/me",
		ErrLabel:  "Failed to fetch profile",
		ParseJSON: true,
	})
	if !res.OK() || res.Data == nil {
		return nil, errorf(shared.ErrAPIRequest, res.Err)
	}

	user := res.Data
	profile := &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}

	return profile, nil
}

// Playlists retrieves one page of the user's playlists.
func (s *SpotifyService) Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, error) {
	page, err := s.playlistPage(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(page.Items))
	for _, p := range page.Items {
		playlists = append(playlists, p.toModel())
	}
	return playlists, nil
}

// AllPlaylists walks pagination and returns every playlist for the user.
func (s *SpotifyService) AllPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	limit := 50
	offset := 0

	for {
		page, err := s.playlistPage(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, p := range page.Items {
			all = append(all, p.toModel())
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

func (s *SpotifyService) playlistPage(ctx context.Context, limit, offset int) (*paginatedPlaylists, error) {
	if err := s.client.Authenticated(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("%s/me/playlists?limit=%d&offset=%d", s.baseURL, limit, offset)
	res := Call[paginatedPlaylists](ctx, s.client, CallOpts{
		Method:    "GET",
		URL:       endpoint,
		ErrLabel:  "Failed to fetch playlists",
		ParseJSON: true,
	})
	if !res.OK() || res.Data == nil {
		return nil, errorf(shared.ErrAPIRequest, res.Err)
	}

	return res.Data, nil
}

// Playlist retrieves a playlist with its first page of tracks.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	if err := s.client.Authenticated(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/playlists/%s", s.baseURL, url.PathEscape(playlistID))
	res := Call[spotifyPlaylist](ctx, s.client, CallOpts{
		Method:    "GET",
		URL:       endpoint,
		ErrLabel:  "Failed to fetch playlist",
		ParseJSON: true,
	})
	if !res.OK() || res.Data == nil {
		return nil, errorf(shared.ErrPlaylistNotFound, res.Err)
	}

	p := res.Data
	detail := &models.PlaylistDetail{
		Playlist: models.Playlist{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			URI:         p.URI,
			TrackCount:  p.Tracks.Total,
			Public:      p.Public,
		},
	}
	if len(p.Images) > 0 {
		detail.Playlist.ImageURL = p.Images[0].URL
	}
	for _, item := range p.Tracks.Items {
		detail.Tracks = append(detail.Tracks, item.Track.toModel())
	}
	if p.Tracks.Next != nil {
		detail.NextURL = *p.Tracks.Next
	}

	return detail, nil
}

// PlaylistItems fetches one page of playlist tracks from an absolute page URL.
func (s *SpotifyService) PlaylistItems(ctx context.Context, nextURL string) ([]models.Track, string, error) {
	if err := s.client.Authenticated(); err != nil {
		return nil, "", err
	}

	res := Call[playlistTracksPage](ctx, s.client, CallOpts{
		Method:    "GET",
		URL:       nextURL,
		ErrLabel:  "Failed to fetch playlist items",
		ParseJSON: true,
	})
	if !res.OK() || res.Data == nil {
		return nil, "", errorf(shared.ErrAPIRequest, res.Err)
	}

	tracks := make([]models.Track, 0, len(res.Data.Items))
	for _, item := range res.Data.Items {
		tracks = append(tracks, item.Track.toModel())
	}

	next := ""
	if res.Data.Next != nil {
		next = *res.Data.Next
	}

	return tracks, next, nil
}

// ExportPlaylist retrieves a playlist with all pages of its tracks loaded.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	detail, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := detail.Tracks
	next := detail.NextURL
	for next != "" {
		page, nextURL, err := s.PlaylistItems(ctx, next)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, page...)
		next = nextURL
	}

	return &models.PlaylistExport{Playlist: detail.Playlist, Tracks: tracks}, nil
}

// State fetches the remote playback snapshot.
//
// The remote answers 204 when no playback session exists; that surfaces as a
// nil Data with empty Err, which the reconciler treats as idle.
func (s *SpotifyService) State(ctx context.Context) Result[models.PlaybackState] {
	res := Call[playerStateResponse](ctx, s.client, CallOpts{
		Method:    "GET",
		URL:       s.baseURL + "/me/player",
		ErrLabel:  "Failed to fetch player state",
		ParseJSON: true,
	})
	if !res.OK() {
		return Result[models.PlaybackState]{Err: res.Err}
	}
	if res.Data == nil {
		return Result[models.PlaybackState]{}
	}

	raw := res.Data
	state := models.PlaybackState{
		DeviceID:   raw.Device.ID,
		DeviceName: raw.Device.Name,
		IsPlaying:  raw.IsPlaying,
		PositionMS: raw.ProgressMS,
		Shuffle:    raw.ShuffleState,
		Repeat:     models.RepeatMode(raw.RepeatState),
		Volume:     1,
	}
	if !state.Repeat.Valid() {
		state.Repeat = models.RepeatOff
	}
	if raw.Device.VolumePercent != nil {
		state.Volume = float64(*raw.Device.VolumePercent) / 100
	}
	if raw.Item != nil {
		track := raw.Item.toModel()
		state.Track = &track
		state.DurationMS = track.DurationMS
	}

	return Result[models.PlaybackState]{Data: &state}
}

// Devices lists the account's playback devices. A missing devices array
// degrades to an empty list rather than an error.
func (s *SpotifyService) Devices(ctx context.Context) Result[[]models.Device] {
	res := Call[devicesResponse](ctx, s.client, CallOpts{
		Method:    "GET",
		URL:       s.baseURL + "/me/player/devices",
		ErrLabel:  "Failed to fetch available devices",
		ParseJSON: true,
	})
	if !res.OK() {
		return Result[[]models.Device]{Err: res.Err}
	}

	devices := []models.Device{}
	if res.Data != nil {
		for _, d := range res.Data.Devices {
			device := models.Device{
				ID:           d.ID,
				Name:         d.Name,
				Type:         d.Type,
				IsActive:     d.IsActive,
				IsRestricted: d.IsRestricted,
			}
			if d.VolumePercent != nil {
				device.VolumePercent = *d.VolumePercent
			}
			devices = append(devices, device)
		}
	}

	return Result[[]models.Device]{Data: &devices}
}

type startBody struct {
	ContextURI string      `json:"context_uri"`
	Offset     startOffset `json:"offset"`
	PositionMS int         `json:"position_ms,omitempty"`
}

type startOffset struct {
	Position int `json:"position"`
}

// Start begins playback of a context at an offset. Calling it again for the
// same context restarts from the offset, which is why the intent layer tracks
// whether playback has already started for the current selection.
func (s *SpotifyService) Start(ctx context.Context, opts StartOpts) Status {
	return send(ctx, s.client, CallOpts{
		Method: "PUT",
		URL:    withDevice(s.baseURL+"/me/player/play", opts.DeviceID),
		Body: startBody{
			ContextURI: opts.ContextURI,
			Offset:     startOffset{Position: opts.Offset},
			PositionMS: opts.PositionMS,
		},
		ErrLabel: "Failed to start playback",
	})
}

// Resume un-pauses the current context without supplying one.
func (s *SpotifyService) Resume(ctx context.Context, deviceID string) Status {
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      withDevice(s.baseURL+"/me/player/play", deviceID),
		Body:     struct{}{},
		ErrLabel: "Failed to resume playback",
	})
}

func (s *SpotifyService) Pause(ctx context.Context, deviceID string) Status {
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      withDevice(s.baseURL+"/me/player/pause", deviceID),
		ErrLabel: "Failed to pause playback",
	})
}

func (s *SpotifyService) Next(ctx context.Context, deviceID string) Status {
	return send(ctx, s.client, CallOpts{
		Method:   "POST",
		URL:      withDevice(s.baseURL+"/me/player/next", deviceID),
		ErrLabel: "Failed to skip to next track",
	})
}

func (s *SpotifyService) Previous(ctx context.Context, deviceID string) Status {
	return send(ctx, s.client, CallOpts{
		Method:   "POST",
		URL:      withDevice(s.baseURL+"/me/player/previous", deviceID),
		ErrLabel: "Failed to skip to previous track",
	})
}

func (s *SpotifyService) Seek(ctx context.Context, positionMS int, deviceID string) Status {
	endpoint := s.baseURL + "/me/player/seek?position_ms=" + strconv.Itoa(positionMS)
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      withDevice(endpoint, deviceID),
		ErrLabel: "Failed to seek playback",
	})
}

func (s *SpotifyService) SetVolume(ctx context.Context, percent int, deviceID string) Status {
	endpoint := s.baseURL + "/me/player/volume?volume_percent=" + strconv.Itoa(percent)
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      withDevice(endpoint, deviceID),
		ErrLabel: "Failed to set volume",
	})
}

func (s *SpotifyService) SetShuffle(ctx context.Context, on bool, deviceID string) Status {
	endpoint := s.baseURL + "/me/player/shuffle?state=" + strconv.FormatBool(on)
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      withDevice(endpoint, deviceID),
		ErrLabel: "Failed to set shuffle",
	})
}

func (s *SpotifyService) SetRepeat(ctx context.Context, mode models.RepeatMode, deviceID string) Status {
	endpoint := s.baseURL + "/me/player/repeat?state=" + string(mode)
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      withDevice(endpoint, deviceID),
		ErrLabel: "Failed to set repeat",
	})
}

type transferBody struct {
	DeviceIDs []string `json:"device_ids"`
	Play      bool     `json:"play"`
}

// Transfer moves playback to deviceID, preserving the play flag so a transfer
// never flips the user's play/pause intent on its own.
func (s *SpotifyService) Transfer(ctx context.Context, deviceID string, play bool) Status {
	return send(ctx, s.client, CallOpts{
		Method:   "PUT",
		URL:      s.baseURL + "/me/player",
		Body:     transferBody{DeviceIDs: []string{deviceID}, Play: play},
		ErrLabel: "Failed to transfer playback",
	})
}
