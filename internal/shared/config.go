package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Plex     PlexConfig     `toml:"plex"`
	Services ServicesConfig `toml:"services"`
	Matcher  MatcherConfig  `toml:"matcher"`
	Sync     SyncConfig     `toml:"sync"`
	Database DatabaseConfig `toml:"database"`
}

// PlexConfig contains the media server connection settings.
type PlexConfig struct {
	URL       string `toml:"url"`
	Token     string `toml:"token"`
	SectionID string `toml:"section_id"`
}

// ServicesConfig contains streaming catalog credentials.
type ServicesConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Tidal   TidalConfig   `toml:"tidal"`
}

// SpotifyConfig contains the Spotify API token.
type SpotifyConfig struct {
	AccessToken string `toml:"access_token"`
}

// TidalConfig contains the Tidal API token and market.
type TidalConfig struct {
	Token       string `toml:"token"`
	CountryCode string `toml:"country_code"`
}

// MatcherConfig contains track matching thresholds.
type MatcherConfig struct {
	AcceptThreshold      float64 `toml:"accept_threshold"`
	SeparationMargin     float64 `toml:"separation_margin"`
	FuzzyThreshold       float64 `toml:"fuzzy_threshold"`
	DurationToleranceSec int     `toml:"duration_tolerance_sec"`
}

// SyncConfig contains orchestrator tuning knobs.
type SyncConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads a .env file from the working directory if one exists.
// Missing files are not an error; secrets may come from the environment directly.
func LoadEnv() {
	_ = godotenv.Load()
}

// applyEnv overlays secrets from environment variables onto the config.
// Env values win over file values so tokens can stay out of config.toml.
func (c *Config) applyEnv() {
	if v := os.Getenv("PLEX_URL"); v != "" {
		c.Plex.URL = v
	}
	if v := os.Getenv("PLEX_TOKEN"); v != "" {
		c.Plex.Token = v
	}
	if v := os.Getenv("SPOTIFY_ACCESS_TOKEN"); v != "" {
		c.Services.Spotify.AccessToken = v
	}
	if v := os.Getenv("TIDAL_TOKEN"); v != "" {
		c.Services.Tidal.Token = v
	}
}

// Validate checks that the media server connection settings are present.
func (c *Config) Validate() error {
	if c.Plex.URL == "" {
		return fmt.Errorf("%w: plex.url is required", ErrInvalidConfig)
	}
	if c.Plex.Token == "" {
		return fmt.Errorf("%w: plex.token is required", ErrMissingCredentials)
	}
	return nil
}
