package main

import (
	"context"
	"os"

	"github.com/desertthunder/spindle/internal/auth"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	store := auth.NewStore(config.SessionPath(), logger)
	defer store.Close()

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Store:      store,
		Logger:     logger,
	}

	if config.Credentials.Spotify.ClientID != "" {
		if flow, err := auth.NewFlow(config.Credentials.Spotify.ClientID, config.Credentials.Spotify.RedirectURI, store, logger); err == nil {
			store.SetRefresher(flow)
			client := services.NewClient(nil, store, config.Player.RateLimit)
			svc := services.NewSpotifyService("", client)
			opts.Flow = flow
			opts.Spotify = svc
			opts.Player = svc
		}
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "spindle",
		Usage:    "Control Spotify playback from your terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
