package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all engine configuration
type Config struct {
	Index   IndexConfig   `toml:"index"`
	Suggest SuggestConfig `toml:"suggest"`
	Watch   WatchConfig   `toml:"watch"`
	Display DisplayConfig `toml:"display"`
}

// IndexConfig tunes line index construction
type IndexConfig struct {
	// ScanChunkSize bounds how many bytes one scan step examines so
	// the owning loop stays responsive on large files
	ScanChunkSize int `toml:"scan_chunk_size"`
}

// SuggestConfig tunes the autocomplete prefix table
type SuggestConfig struct {
	Capacity int `toml:"capacity"`
}

// WatchConfig tunes change detection
type WatchConfig struct {
	PollIntervalMs int `toml:"poll_interval_ms"`
}

// DisplayConfig holds output options for the command-line harness
type DisplayConfig struct {
	ShowTimestamps bool `toml:"show_timestamps"`
	HeadLines      int  `toml:"head_lines"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			ScanChunkSize: 64 * 1024,
		},
		Suggest: SuggestConfig{
			Capacity: 10000,
		},
		Watch: WatchConfig{
			PollIntervalMs: 250,
		},
		Display: DisplayConfig{
			ShowTimestamps: true,
			HeadLines:      10,
		},
	}
}

// Load loads config from file, falling back to defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to file
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tailview", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "tailview", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
