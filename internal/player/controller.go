package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
)

// Opts configures a [Controller].
type Opts struct {
	// DeviceID is the playback device the controller drives.
	DeviceID string
	// SuppressionWindow is how long after a user touch poll merges skip a
	// field. Defaults to twice the poll interval.
	SuppressionWindow time.Duration
	// TransferTries bounds the activation retry loop.
	TransferTries int
	// Backoff is the fixed delay between activation retries.
	Backoff time.Duration
	Logger  *log.Logger
}

// Controller owns the local playback state and translates user gestures
// into remote calls with clamping and optimistic updates.
//
// Two writers feed the state: the intent handlers here and the poll-driven
// [Reconciler] via MergeRemote. The suppression window keeps a poll tick
// that raced a user action from overwriting the field the user just set.
type Controller struct {
	mu       sync.Mutex
	player   services.Player
	logger   *log.Logger
	window   time.Duration
	tries    int
	backoff  time.Duration
	now      func() time.Time
	deviceID string

	selection *Selection
	state     State
	touched   map[Field]time.Time
}

// NewController creates a Controller driving the device in opts.
func NewController(p services.Player, opts Opts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.SuppressionWindow <= 0 {
		opts.SuppressionWindow = 2 * time.Second
	}
	if opts.TransferTries <= 0 {
		opts.TransferTries = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}

	return &Controller{
		player:   p,
		logger:   opts.Logger,
		window:   opts.SuppressionWindow,
		tries:    opts.TransferTries,
		backoff:  opts.Backoff,
		now:      time.Now,
		deviceID: opts.DeviceID,
		state:    State{DeviceID: opts.DeviceID, Volume: 1, Repeat: models.RepeatOff},
		touched:  make(map[Field]time.Time),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the playlist currently opened for playback, or nil.
func (c *Controller) Selection() *Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// TargetDevice returns the device id the controller drives.
func (c *Controller) TargetDevice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// SetDevice retargets the controller at a different device. The device is
// unconfirmed until a poll or activation reports it active.
func (c *Controller) SetDevice(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceID = deviceID
	c.state.DeviceID = deviceID
	c.state.DeviceActive = false
}

// SetDisabled gates every intent handler into a no-op.
func (c *Controller) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Disabled = disabled
}

// SetError surfaces a remote-call failure on the state.
func (c *Controller) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Err = msg
}

// MarkDeviceInactive records that the remote reported a different device.
func (c *Controller) MarkDeviceInactive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DeviceActive = false
}

// Open replaces the selection with a playlist detail, positioning at the
// first playable track at or after index. Resets the started flag so the
// next play supplies full context.
func (c *Controller) Open(detail *models.PlaylistDetail, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = NewSelection(detail)
	idx := findPlayableIndex(c.selection.Tracks, index, 1)
	c.state.TrackIndex = idx
	c.state.Track = nil
	if idx >= 0 && idx < len(c.selection.Tracks) {
		t := c.selection.Tracks[idx]
		c.state.Track = &t
	}
	c.state.PositionMS = 0
	c.state.DurationMS = 0
	if c.state.Track != nil {
		c.state.DurationMS = c.state.Track.DurationMS
	}
	c.state.Started = false
	c.state.IsPlaying = false
	c.state.Err = ""
	c.touched = make(map[Field]time.Time)
}

// AppendTracks extends the selection as pagination loads more items.
func (c *Controller) AppendTracks(tracks []models.Track, nextURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == nil {
		return
	}
	c.selection.Append(tracks)
	c.selection.NextURL = nextURL
}

// Close clears the selection and best-effort pauses playback. A pause
// failure is logged and does not block the close.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	deviceID := c.deviceID
	playing := c.state.IsPlaying
	c.selection = nil
	c.state.Started = false
	c.state.IsPlaying = false
	c.state.Track = nil
	c.state.TrackIndex = 0
	c.state.PositionMS = 0
	c.state.DurationMS = 0
	c.touched = make(map[Field]time.Time)
	c.mu.Unlock()

	if playing && deviceID != "" {
		if st := c.player.Pause(ctx, deviceID); !st.OK() {
			c.logger.Debug("pause on close failed", "error", st.Err)
		}
	}
}

// TogglePlay pauses when playing, otherwise starts or resumes. The first
// play for a selection supplies the full context and offset; later plays
// resume without one, since restarting the context would rewind to the
// offset.
func (c *Controller) TogglePlay(ctx context.Context) {
	c.EnsureActive(ctx)

	c.mu.Lock()
	if !c.ready() || c.selection == nil {
		c.mu.Unlock()
		return
	}
	deviceID := c.deviceID

	if c.state.IsPlaying {
		c.state.IsPlaying = false
		c.touch(FieldPlaying)
		c.mu.Unlock()
		c.finish(c.player.Pause(ctx, deviceID), nil)
		return
	}

	started := c.state.Started
	opts := services.StartOpts{
		ContextURI: c.selection.Playlist.URI,
		Offset:     c.state.TrackIndex,
		PositionMS: c.state.PositionMS,
		DeviceID:   deviceID,
	}
	c.state.IsPlaying = true
	c.touch(FieldPlaying)
	c.mu.Unlock()

	if started {
		c.finish(c.player.Resume(ctx, deviceID), nil)
		return
	}
	c.finish(c.player.Start(ctx, opts), func(s *State) { s.Started = true })
}

// Next skips forward to the next playable track.
func (c *Controller) Next(ctx context.Context) {
	c.skip(ctx, 1)
}

// Previous skips backward to the previous playable track.
func (c *Controller) Previous(ctx context.Context) {
	c.skip(ctx, -1)
}

// skip restarts the selection context at the nearest playable index in the
// given direction. Lands on nothing when every other track is unplayable.
func (c *Controller) skip(ctx context.Context, direction int) {
	c.EnsureActive(ctx)

	c.mu.Lock()
	if !c.ready() || c.selection == nil || len(c.selection.Tracks) == 0 {
		c.mu.Unlock()
		return
	}

	cur := c.state.TrackIndex
	next := findPlayableIndex(c.selection.Tracks, wrapIndex(cur+direction, len(c.selection.Tracks)), direction)
	if next == cur || !c.selection.Tracks[next].Playable {
		c.mu.Unlock()
		return
	}

	t := c.selection.Tracks[next]
	c.state.TrackIndex = next
	c.state.Track = &t
	c.state.PositionMS = 0
	c.state.DurationMS = t.DurationMS
	c.state.IsPlaying = true
	c.touch(FieldTrack, FieldPosition, FieldPlaying)
	opts := services.StartOpts{
		ContextURI: c.selection.Playlist.URI,
		Offset:     next,
		DeviceID:   c.deviceID,
	}
	c.mu.Unlock()

	c.finish(c.player.Start(ctx, opts), func(s *State) { s.Started = true })
}

// Seek moves playback to positionMS, clamped to the known duration.
func (c *Controller) Seek(ctx context.Context, positionMS int) {
	c.EnsureActive(ctx)

	c.mu.Lock()
	if !c.ready() {
		c.mu.Unlock()
		return
	}
	pos := clampPosition(positionMS, c.state.DurationMS)
	c.state.PositionMS = pos
	c.touch(FieldPosition)
	deviceID := c.deviceID
	c.mu.Unlock()

	c.finish(c.player.Seek(ctx, pos, deviceID), nil)
}

// SeekBy moves playback relative to the current position.
func (c *Controller) SeekBy(ctx context.Context, deltaMS int) {
	c.mu.Lock()
	pos := c.state.PositionMS + deltaMS
	c.mu.Unlock()
	c.Seek(ctx, pos)
}

// SetVolume sets the volume level, clamped to [0, 1]. The remote receives
// the rounded percentage.
func (c *Controller) SetVolume(ctx context.Context, v float64) {
	c.EnsureActive(ctx)

	c.mu.Lock()
	if !c.ready() {
		c.mu.Unlock()
		return
	}
	vol := clampVolume(v)
	c.state.Volume = vol
	c.touch(FieldVolume)
	deviceID := c.deviceID
	c.mu.Unlock()

	c.finish(c.player.SetVolume(ctx, int(math.Round(vol*100)), deviceID), nil)
}

// AdjustVolume changes the volume level relative to the current one.
func (c *Controller) AdjustVolume(ctx context.Context, delta float64) {
	c.mu.Lock()
	v := c.state.Volume + delta
	c.mu.Unlock()
	c.SetVolume(ctx, v)
}

// ToggleShuffle flips shuffle mode.
func (c *Controller) ToggleShuffle(ctx context.Context) {
	c.EnsureActive(ctx)

	c.mu.Lock()
	if !c.ready() {
		c.mu.Unlock()
		return
	}
	on := !c.state.Shuffle
	c.state.Shuffle = on
	c.touch(FieldShuffle)
	deviceID := c.deviceID
	c.mu.Unlock()

	c.finish(c.player.SetShuffle(ctx, on, deviceID), nil)
}

// CycleRepeat advances the repeat mode (off, context, track).
func (c *Controller) CycleRepeat(ctx context.Context) {
	c.EnsureActive(ctx)

	c.mu.Lock()
	if !c.ready() {
		c.mu.Unlock()
		return
	}
	mode := c.state.Repeat.Cycle()
	c.state.Repeat = mode
	c.touch(FieldRepeat)
	deviceID := c.deviceID
	c.mu.Unlock()

	c.finish(c.player.SetRepeat(ctx, mode, deviceID), nil)
}

// EnsureActive confirms the target device is the one the remote reports
// active, transferring playback and polling with bounded retries when it is
// not. Gives up silently after the retry budget; the caller's own remote
// call may still fail and surface through the normal error channel.
func (c *Controller) EnsureActive(ctx context.Context) {
	c.mu.Lock()
	if c.state.Disabled || c.deviceID == "" || c.state.DeviceActive {
		c.mu.Unlock()
		return
	}
	deviceID := c.deviceID
	playing := c.state.IsPlaying
	tries := c.tries
	backoff := c.backoff
	c.mu.Unlock()

	if st := c.player.Transfer(ctx, deviceID, playing); !st.OK() {
		c.logger.Debug("transfer failed", "device", deviceID, "error", st.Err)
	}

	for i := 0; i < tries; i++ {
		res := c.player.State(ctx)
		if res.OK() && res.Data != nil && res.Data.DeviceID == deviceID {
			c.mu.Lock()
			c.state.DeviceActive = true
			c.mu.Unlock()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
	c.logger.Debug("device activation retries exhausted", "device", deviceID)
}

// MergeRemote folds a polled remote snapshot into the local state, marking
// the device active. Fields the user touched within the suppression window
// keep their optimistic value. The track index is derived by id lookup in
// the selection; an unknown id leaves the index unchanged.
func (c *Controller) MergeRemote(remote *models.PlaybackState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.state.DeviceActive = true
	c.state.Err = ""

	if !c.suppressed(FieldPlaying, now) {
		c.state.IsPlaying = remote.IsPlaying
	}
	if !c.suppressed(FieldPosition, now) {
		c.state.DurationMS = remote.DurationMS
		c.state.PositionMS = clampPosition(remote.PositionMS, remote.DurationMS)
	}
	if !c.suppressed(FieldVolume, now) {
		c.state.Volume = clampVolume(remote.Volume)
	}
	if !c.suppressed(FieldShuffle, now) {
		c.state.Shuffle = remote.Shuffle
	}
	if !c.suppressed(FieldRepeat, now) && remote.Repeat.Valid() {
		c.state.Repeat = remote.Repeat
	}
	if !c.suppressed(FieldTrack, now) && remote.Track != nil {
		track := *remote.Track
		c.state.Track = &track
		if c.selection != nil {
			if idx := c.selection.IndexOf(track.ID); idx >= 0 {
				c.state.TrackIndex = idx
			}
		}
	}
}

// ready reports whether intent handlers may issue remote calls; callers
// hold the mutex.
func (c *Controller) ready() bool {
	return !c.state.Disabled && c.deviceID != ""
}

// touch records the user as last writer of the given fields; callers hold
// the mutex.
func (c *Controller) touch(fields ...Field) {
	now := c.now()
	for _, f := range fields {
		c.touched[f] = now
	}
}

// suppressed reports whether a poll merge should skip the field; callers
// hold the mutex.
func (c *Controller) suppressed(f Field, now time.Time) bool {
	t, ok := c.touched[f]
	return ok && now.Sub(t) < c.window
}

// finish applies a remote call's outcome: failures surface on the state,
// successes clear the error and run the optional follow-up.
func (c *Controller) finish(st services.Status, onOK func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !st.OK() {
		c.state.Err = st.Err
		return
	}
	c.state.Err = ""
	if onOK != nil {
		onOK(&c.state)
	}
}
