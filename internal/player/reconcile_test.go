package player

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/services"
)

func newTestReconciler(fake *fakePlayer) (*Reconciler, *Controller) {
	c := newTestController(fake)
	r := NewReconciler(c, fake, time.Second, nil)
	return r, c
}

func TestTickIdleSessionLeavesStateUnchanged(t *testing.T) {
	fake := &fakePlayer{}
	r, c := newTestReconciler(fake)
	c.Open(testDetail(), 0)
	before := c.Snapshot()

	r.Tick(context.Background())

	if after := c.Snapshot(); before != after {
		t.Errorf("idle tick mutated state:\nbefore %+v\nafter  %+v", before, after)
	}
	if fake.count("transfer") != 0 {
		t.Errorf("transfer calls = %d, want 0", fake.count("transfer"))
	}
}

func TestTickDeviceMismatchTransfersOnceWithoutMerging(t *testing.T) {
	fake := &fakePlayer{
		stateRes: services.Result[models.PlaybackState]{
			Data: &models.PlaybackState{
				DeviceID:   "other-device",
				IsPlaying:  true,
				PositionMS: 99000,
				DurationMS: 180000,
				Volume:     0.2,
			},
		},
	}
	r, c := newTestReconciler(fake)
	c.Open(testDetail(), 0)
	before := c.Snapshot()

	r.Tick(context.Background())

	if fake.count("transfer") != 1 {
		t.Fatalf("transfer calls = %d, want exactly 1", fake.count("transfer"))
	}
	if !fake.transfers[0] {
		t.Error("transfer dropped the remote's play flag")
	}

	after := c.Snapshot()
	if after.DeviceActive {
		t.Error("device still marked active after mismatch")
	}
	if after.PositionMS != before.PositionMS || after.Volume != before.Volume {
		t.Errorf("mismatch tick merged stale state: %+v", after)
	}
}

func TestTickMatchingDeviceMerges(t *testing.T) {
	fake := &fakePlayer{
		stateRes: services.Result[models.PlaybackState]{
			Data: &models.PlaybackState{
				DeviceID:   "dev-1",
				IsPlaying:  true,
				PositionMS: 65000,
				DurationMS: 210000,
				Volume:     0.75,
				Shuffle:    true,
				Repeat:     models.RepeatTrack,
				Track:      &models.Track{ID: "t3", Title: "Three"},
			},
		},
	}
	r, c := newTestReconciler(fake)
	c.Open(testDetail(), 0)

	r.Tick(context.Background())

	st := c.Snapshot()
	if !st.IsPlaying || st.PositionMS != 65000 || st.Volume != 0.75 || !st.Shuffle {
		t.Errorf("merge incomplete: %+v", st)
	}
	if st.Repeat != models.RepeatTrack {
		t.Errorf("Repeat = %v, want track", st.Repeat)
	}
	if st.TrackIndex != 2 {
		t.Errorf("TrackIndex = %d, want 2", st.TrackIndex)
	}
	if !st.DeviceActive {
		t.Error("matching device not marked active")
	}
}

func TestTickStateErrorSurfaces(t *testing.T) {
	fake := &fakePlayer{
		stateRes: services.Result[models.PlaybackState]{Err: "Failed to fetch player state"},
	}
	r, c := newTestReconciler(fake)
	c.Open(testDetail(), 0)

	r.Tick(context.Background())

	if st := c.Snapshot(); st.Err != "Failed to fetch player state" {
		t.Errorf("Err = %q", st.Err)
	}
}

func TestTickWithoutTargetDeviceSkipsPoll(t *testing.T) {
	fake := &fakePlayer{}
	c := NewController(fake, Opts{Backoff: time.Millisecond})
	r := NewReconciler(c, fake, time.Second, nil)

	r.Tick(context.Background())

	if len(fake.calls) != 0 {
		t.Errorf("expected zero remote calls, got %v", fake.calls)
	}
}

func TestUpdatesChannelPublishesSnapshots(t *testing.T) {
	fake := &fakePlayer{
		stateRes: services.Result[models.PlaybackState]{
			Data: &models.PlaybackState{DeviceID: "dev-1", IsPlaying: true, PositionMS: 1000, DurationMS: 2000},
		},
	}
	r, c := newTestReconciler(fake)
	c.Open(testDetail(), 0)

	r.Tick(context.Background())

	select {
	case st := <-r.Updates():
		if !st.IsPlaying || st.PositionMS != 1000 {
			t.Errorf("published snapshot = %+v", st)
		}
	default:
		t.Fatal("no snapshot published after merge tick")
	}

	// A full channel never blocks the loop.
	r.Tick(context.Background())
	r.Tick(context.Background())
}
