package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerStatus fetches and prints the remote playback snapshot.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requirePlayer(); err != nil {
		return err
	}

	res := r.player.State(ctx)
	if !res.OK() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, res.Err)
	}

	if res.Data == nil {
		return r.writePlain("No active playback session\n")
	}

	if useJSON {
		return r.writeJSON(res.Data, pretty)
	}

	state := res.Data
	status := "paused"
	if state.IsPlaying {
		status = "playing"
	}

	if state.Track != nil {
		r.writePlain("%s: %s - %s\n", status, state.Track.Artist, state.Track.Title)
		if state.Track.Album != "" {
			r.writePlain("Album: %s\n", state.Track.Album)
		}
	} else {
		r.writePlain("%s\n", status)
	}
	r.writePlain("Position: %s / %s\n", shared.FormatTime(state.PositionMS), shared.FormatTime(state.DurationMS))
	r.writePlain("Device: %s (%s)\n", state.DeviceName, state.DeviceID)
	r.writePlain("Volume: %.0f%%  Shuffle: %v  Repeat: %s\n", state.Volume*100, state.Shuffle, state.Repeat)

	return nil
}

// PlayerDevices lists the devices registered to the account.
func (r *Runner) PlayerDevices(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	res := r.player.Devices(ctx)
	if !res.OK() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, res.Err)
	}

	var devices []models.Device
	if res.Data != nil {
		devices = *res.Data
	}
	if len(devices) == 0 {
		r.writePlain("No devices found\n")
		r.writePlain("Open Spotify on a device to register it.\n")
		return nil
	}

	r.writePlain("Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		marker := " "
		if d.IsActive {
			marker = "*"
		}
		r.writePlain("%s %d. %s (%s)\n", marker, i+1, d.Name, d.Type)
		r.writePlain("     ID: %s\n", d.ID)
		r.writePlain("     Volume: %d%%\n", d.VolumePercent)
		if d.IsRestricted {
			r.writePlain("     Restricted: cannot be controlled remotely\n")
		}
	}

	return nil
}

// PlayerPlay starts a context or resumes the current one.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	contextURI := cmd.String("context")
	offset := cmd.Int("offset")
	deviceID := cmd.String("device")

	if err := r.requirePlayer(); err != nil {
		return err
	}

	var st services.Status
	if contextURI != "" {
		st = r.player.Start(ctx, services.StartOpts{
			ContextURI: contextURI,
			Offset:     offset,
			DeviceID:   deviceID,
		})
	} else {
		st = r.player.Resume(ctx, deviceID)
	}

	if err := statusErr(st); err != nil {
		return err
	}
	return r.writePlain("✓ Playing\n")
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := statusErr(r.player.Pause(ctx, cmd.String("device"))); err != nil {
		return err
	}
	return r.writePlain("✓ Paused\n")
}

// PlayerNext skips to the next track in the remote queue.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := statusErr(r.player.Next(ctx, cmd.String("device"))); err != nil {
		return err
	}
	return r.writePlain("✓ Skipped forward\n")
}

// PlayerPrevious skips to the previous track in the remote queue.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := statusErr(r.player.Previous(ctx, cmd.String("device"))); err != nil {
		return err
	}
	return r.writePlain("✓ Skipped back\n")
}

// PlayerSeek seeks within the current track.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	to := cmd.Int("to")

	if err := r.requirePlayer(); err != nil {
		return err
	}
	if to < 0 {
		to = 0
	}
	if err := statusErr(r.player.Seek(ctx, to, cmd.String("device"))); err != nil {
		return err
	}
	return r.writePlain("✓ Seeked to %s\n", shared.FormatTime(to))
}

// PlayerVolume sets the playback volume.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	percent := cmd.Int("percent")

	if err := r.requirePlayer(); err != nil {
		return err
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if err := statusErr(r.player.SetVolume(ctx, percent, cmd.String("device"))); err != nil {
		return err
	}
	return r.writePlain("✓ Volume set to %d%%\n", percent)
}

// PlayerShuffle sets shuffle mode.
func (r *Runner) PlayerShuffle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	on := cmd.Bool("on")
	if err := statusErr(r.player.SetShuffle(ctx, on, cmd.String("device"))); err != nil {
		return err
	}
	if on {
		return r.writePlain("✓ Shuffle on\n")
	}
	return r.writePlain("✓ Shuffle off\n")
}

// PlayerRepeat sets repeat mode.
func (r *Runner) PlayerRepeat(ctx context.Context, cmd *cli.Command) error {
	mode := models.RepeatMode(cmd.String("mode"))
	if !mode.Valid() {
		return fmt.Errorf("%w: repeat mode must be off, context, or track", shared.ErrInvalidFlag)
	}

	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := statusErr(r.player.SetRepeat(ctx, mode, cmd.String("device"))); err != nil {
		return err
	}
	return r.writePlain("✓ Repeat %s\n", mode)
}

// PlayerTransfer moves playback to another device.
func (r *Runner) PlayerTransfer(ctx context.Context, cmd *cli.Command) error {
	deviceID := cmd.String("device")
	play := cmd.Bool("play")

	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := statusErr(r.player.Transfer(ctx, deviceID, play)); err != nil {
		return err
	}
	return r.writePlain("✓ Playback transferred to %s\n", deviceID)
}
