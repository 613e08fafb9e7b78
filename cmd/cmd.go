// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2 (PKCE)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Destroy the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// profileCommand shows the authenticated account's profile.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show the authenticated Spotify profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Profile,
	}
}

// playlistsCommand handles playlist listing and export operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists for the account",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist with its tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to show",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "export",
				Usage: "Export a playlist with all tracks to JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistsExport,
			},
			{
				Name:  "export-all",
				Usage: "Export multiple playlists concurrently",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Playlist ID to export (repeatable, default: all)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
				},
				Action: r.PlaylistsExportAll,
			},
		},
	}
}

// playerCommand exposes one-shot playback controls
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "One-shot playback controls",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the current playback state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlayerStatus,
			},
			{
				Name:   "devices",
				Usage:  "List playback devices registered to the account",
				Action: r.PlayerDevices,
			},
			{
				Name:  "play",
				Usage: "Start or resume playback",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "context",
						Usage: "Context URI (playlist/album) to start",
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Track offset within the context",
					},
					&cli.StringFlag{
						Name:  "device",
						Usage: "Target device ID",
					},
				},
				Action: r.PlayerPlay,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerPause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerNext,
			},
			{
				Name:    "previous",
				Aliases: []string{"prev"},
				Usage:   "Skip to the previous track",
				Flags:   []cli.Flag{deviceFlag()},
				Action:  r.PlayerPrevious,
			},
			{
				Name:  "seek",
				Usage: "Seek within the current track",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Position in milliseconds",
						Required: true,
					},
					deviceFlag(),
				},
				Action: r.PlayerSeek,
			},
			{
				Name:  "volume",
				Usage: "Set playback volume",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "percent",
						Usage:    "Volume percentage (0-100)",
						Required: true,
					},
					deviceFlag(),
				},
				Action: r.PlayerVolume,
			},
			{
				Name:  "shuffle",
				Usage: "Set shuffle mode",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "on",
						Usage: "Enable shuffle",
					},
					deviceFlag(),
				},
				Action: r.PlayerShuffle,
			},
			{
				Name:  "repeat",
				Usage: "Set repeat mode",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "mode",
						Usage:    "Repeat mode: off, context, track",
						Required: true,
					},
					deviceFlag(),
				},
				Action: r.PlayerRepeat,
			},
			{
				Name:  "transfer",
				Usage: "Move playback to another device",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "device",
						Usage:    "Target device ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "play",
						Usage: "Keep playing after the move",
						Value: true,
					},
				},
				Action: r.PlayerTransfer,
			},
		},
	}
}

// cacheCommand handles the local playlist cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Cache playlists and tracks locally",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Refresh the local cache from Spotify",
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached playlists",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playback.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "interactive"},
		Usage:   "Launch the interactive playback remote",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "device",
				Usage: "Target device ID (default: the active or first available device)",
			},
		},
		Action: r.TUI,
	}
}

func deviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "device",
		Usage: "Target device ID",
	}
}
