package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/player"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playback remote.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	if err := r.requirePlayer(); err != nil {
		return err
	}

	deviceID, err := r.resolveDevice(ctx, cmd.String("device"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(filepath.Join(os.Getenv("HOME"), ".spindle", "tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	pollInterval := time.Duration(r.config.Player.PollIntervalMS) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	controller := player.NewController(r.player, player.Opts{
		DeviceID:          deviceID,
		SuppressionWindow: 2 * pollInterval,
		TransferTries:     r.config.Player.TransferTries,
		Logger:            fileLogger,
	})

	reconciler := player.NewReconciler(controller, r.player, pollInterval, fileLogger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go reconciler.Run(runCtx)

	model := ui.NewModel(runCtx, r.spotify, controller, reconciler)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// resolveDevice picks the playback target: the explicit flag, else the
// account's active device, else the first unrestricted one.
func (r *Runner) resolveDevice(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	res := r.player.Devices(ctx)
	if !res.OK() {
		return "", fmt.Errorf("%w: %s", shared.ErrAPIRequest, res.Err)
	}

	var devices []models.Device
	if res.Data != nil {
		devices = *res.Data
	}
	for _, d := range devices {
		if d.IsActive {
			return d.ID, nil
		}
	}
	for _, d := range devices {
		if !d.IsRestricted {
			return d.ID, nil
		}
	}

	return "", fmt.Errorf("%w: open Spotify on a device and try again", shared.ErrNoDevice)
}
