package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.Compact)
	assert.Empty(t, cfg.VideoDevice)
	assert.Empty(t, cfg.MediaDevice)
	assert.Empty(t, cfg.LibPath)
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "text", cfg.Format)
	})

	t.Run("loads config from current directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		content := `
format: ndjson
compact: true
video_device: "2"
`
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "v4l2-tracer.yaml"), []byte(content), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Compact)
		assert.Equal(t, "2", cfg.VideoDevice)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644))

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parses all config fields", func(t *testing.T) {
		content := `
format: ndjson
verbose: true
debug: true
compact: true
raw: true
yuv: true
video_device: 3
media_device: "1"
lib_path: /opt/v4l-utils/lib/libv4l2tracer
`
		configPath := filepath.Join(t.TempDir(), "v4l2-tracer.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Verbose)
		assert.True(t, cfg.Debug)
		assert.True(t, cfg.Compact)
		assert.True(t, cfg.Raw)
		assert.True(t, cfg.YUV)
		assert.Equal(t, "3", cfg.VideoDevice)
		assert.Equal(t, "1", cfg.MediaDevice)
		assert.Equal(t, "/opt/v4l-utils/lib/libv4l2tracer", cfg.LibPath)
	})
}

func TestConfigEnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("V4L2_TRACER_FORMAT", "ndjson")
	t.Setenv("V4L2_TRACER_LIB_PATH", "/tmp/libs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ndjson", cfg.Format)
	assert.Equal(t, "/tmp/libs", cfg.LibPath)
}

func TestConfigFile(t *testing.T) {
	t.Run("returns empty string when no config found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		assert.Empty(t, ConfigFile())
	})

	t.Run("finds config in current directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		configPath := filepath.Join(tmpDir, "v4l2-tracer.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("format: text"), 0644))

		expected, _ := filepath.EvalSymlinks(configPath)
		found, _ := filepath.EvalSymlinks(ConfigFile())
		assert.Equal(t, expected, found)
	})
}
