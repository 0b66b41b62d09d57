package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "syncra.db" {
			t.Errorf("expected database path syncra.db, got %s", config.Database.Path)
		}

		if config.Plex.URL != "http://localhost:32400" {
			t.Errorf("expected plex url http://localhost:32400, got %s", config.Plex.URL)
		}

		if config.Matcher.AcceptThreshold != 0.72 {
			t.Errorf("expected accept threshold 0.72, got %f", config.Matcher.AcceptThreshold)
		}

		if config.Sync.Workers != 5 {
			t.Errorf("expected 5 workers, got %d", config.Sync.Workers)
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

		testConfig := `[plex]
url = "http://plex.local:32400"
token = "test_token"
section_id = "3"

[services.tidal]
token = "tidal_token"
country_code = "DE"

[matcher]
accept_threshold = 0.8
separation_margin = 0.1
fuzzy_threshold = 0.5
duration_tolerance_sec = 5

[sync]
workers = 3
rate_limit = 2.5

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Plex.URL != "http://plex.local:32400" {
			t.Errorf("expected plex url http://plex.local:32400, got %s", config.Plex.URL)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Matcher.DurationToleranceSec != 5 {
			t.Errorf("expected duration tolerance 5, got %d", config.Matcher.DurationToleranceSec)
		}

		if config.Services.Tidal.CountryCode != "DE" {
			t.Errorf("expected tidal country code DE, got %s", config.Services.Tidal.CountryCode)
		}
	})

	t.Run("EnvOverlay", func(t *testing.T) {
		t.Setenv("PLEX_TOKEN", "env_token")

		config := DefaultConfig()
		if config.Plex.Token != "env_token" {
			t.Errorf("expected env token to win, got %s", config.Plex.Token)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := &Config{}
		if err := config.Validate(); err == nil {
			t.Error("expected validation error for empty config")
		}

		config.Plex.URL = "http://localhost:32400"
		if err := config.Validate(); err == nil {
			t.Error("expected validation error for missing token")
		}

		config.Plex.Token = "token"
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})
}
