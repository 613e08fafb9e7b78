package player

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
)

// Reconciler polls the remote playback state on a fixed interval and folds
// each snapshot into the [Controller]'s local state.
//
// Per tick it runs a small state machine: no snapshot means an idle session
// and the local state is left alone; a snapshot from the wrong device marks
// the target inactive and issues a single transfer carrying the remote's own
// play flag, skipping the merge so stale cross-device data never overwrites
// optimistic local state; a snapshot from the target device merges normally.
type Reconciler struct {
	controller *Controller
	player     services.Player
	interval   time.Duration
	logger     *log.Logger
	updates    chan State
}

// NewReconciler creates a Reconciler polling at the given interval.
func NewReconciler(controller *Controller, p services.Player, interval time.Duration, logger *log.Logger) *Reconciler {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Reconciler{
		controller: controller,
		player:     p,
		interval:   interval,
		logger:     logger,
		updates:    make(chan State, 1),
	}
}

// Updates returns the channel carrying state snapshots after each tick that
// changed something. Sends are non-blocking; a slow consumer misses
// intermediate snapshots, never blocks the loop.
func (r *Reconciler) Updates() <-chan State {
	return r.updates
}

// Run polls until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one reconciliation pass.
func (r *Reconciler) Tick(ctx context.Context) {
	target := r.controller.TargetDevice()
	if target == "" {
		return
	}

	res := r.player.State(ctx)
	if !res.OK() {
		r.controller.SetError(res.Err)
		r.publish()
		return
	}
	if res.Data == nil {
		// No active session; leave local state unchanged.
		return
	}

	if res.Data.DeviceID != target {
		r.controller.MarkDeviceInactive()
		if st := r.player.Transfer(ctx, target, res.Data.IsPlaying); !st.OK() {
			r.logger.Debug("transfer failed", "device", target, "error", st.Err)
		}
		r.publish()
		return
	}

	r.controller.MergeRemote(res.Data)
	r.publish()
}

func (r *Reconciler) publish() {
	select {
	case r.updates <- r.controller.Snapshot():
	default:
	}
}
