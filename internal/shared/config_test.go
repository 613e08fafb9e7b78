package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spindle.db" {
			t.Errorf("expected database path ./spindle.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Player.PollIntervalMS != 1000 {
			t.Errorf("expected poll interval 1000ms, got %d", config.Player.PollIntervalMS)
		}

		if config.Player.RateLimit != 5.0 {
			t.Errorf("expected rate limit 5.0, got %v", config.Player.RateLimit)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
redirect_uri = "http://localhost:3000/callback"

[session]
path = "/custom/session.json"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[player]
poll_interval_ms = 500
rate_limit = 2.5
transfer_tries = 3
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}
		if config.Player.PollIntervalMS != 500 {
			t.Errorf("expected poll interval 500, got %d", config.Player.PollIntervalMS)
		}
		if config.Player.TransferTries != 3 {
			t.Errorf("expected 3 transfer tries, got %d", config.Player.TransferTries)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.toml")
		if err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_id"
		config.Player.RateLimit = 7.5

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.ClientID != "saved_id" {
			t.Errorf("expected saved_id, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if loaded.Player.RateLimit != 7.5 {
			t.Errorf("expected rate limit 7.5, got %v", loaded.Player.RateLimit)
		}
	})

	t.Run("SessionPath", func(t *testing.T) {
		config := DefaultConfig()
		config.Session.Path = "/custom/session.json"
		if config.SessionPath() != "/custom/session.json" {
			t.Errorf("expected configured path, got %s", config.SessionPath())
		}

		config.Session.Path = ""
		path := config.SessionPath()
		if !strings.HasSuffix(path, filepath.Join(".spindle", "session.json")) {
			t.Errorf("expected default session path under ~/.spindle, got %s", path)
		}
	})
}
