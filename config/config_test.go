package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 64, cfg.SniffLines)
	assert.Equal(t, 1000, cfg.SampleRows)
	assert.Equal(t, 100, cfg.DefaultPageSize)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "worker.toml")
		require.NoError(t, os.WriteFile(path, []byte("sniff_lines = 8\nlog_level = \"debug\"\n"), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.SniffLines)
		assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
		// Untouched keys keep their defaults.
		assert.Equal(t, 100, cfg.DefaultPageSize)
	})

	t.Run("env variable points at the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "worker.toml")
		require.NoError(t, os.WriteFile(path, []byte("default_page_size = 25\n"), 0600))
		t.Setenv(EnvConfigPath, path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.DefaultPageSize)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})

	t.Run("bad toml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "worker.toml")
		require.NoError(t, os.WriteFile(path, []byte("sniff_lines = [oops"), 0600))

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "worker.toml")
		require.NoError(t, os.WriteFile(path, []byte("sample_rows = 0\n"), 0600))

		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.LogLevel = "loud"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DefaultPageSize = -1
	require.Error(t, cfg.Validate())
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	opts := cfg.ParseOptions()
	assert.Equal(t, cfg.SniffLines, opts.SniffLines)
	assert.Equal(t, cfg.SampleRows, opts.SampleRows)
}
