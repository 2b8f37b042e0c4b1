package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 64*1024, cfg.Index.ScanChunkSize)
	require.Equal(t, 10000, cfg.Suggest.Capacity)
	require.True(t, cfg.Display.ShowTimestamps)
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	confDir := filepath.Join(dir, "tailview")
	require.NoError(t, os.MkdirAll(confDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.toml"), []byte(
		"[watch]\npoll_interval_ms = 50\n\n[display]\nhead_lines = 3\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Watch.PollIntervalMs)
	require.Equal(t, 3, cfg.Display.HeadLines)
	// Unset sections keep their defaults
	require.Equal(t, 10000, cfg.Suggest.Capacity)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Suggest.Capacity = 42
	cfg.Display.ShowTimestamps = false
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	confDir := filepath.Join(dir, "tailview")
	require.NoError(t, os.MkdirAll(confDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.toml"), []byte("[watch\n"), 0644))

	_, err := Load()
	require.Error(t, err)
}
