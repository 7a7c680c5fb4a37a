package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ffmpeg:
  path: /opt/ffmpeg/bin/ffmpeg
  timeout: 90s
output:
  faststart: false
segments:
  workers: 8
logging:
  level: DEBUG
`), 0644))

	t.Setenv("REMUXER_SEGMENTS_SUFFIX", "-repacked")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpeg.Path)
	assert.Equal(t, "ffprobe", cfg.FFmpeg.ProbePath)
	assert.Equal(t, 90*time.Second, cfg.FFmpeg.Timeout)
	assert.False(t, cfg.Output.FastStart)
	assert.True(t, cfg.Output.Verify)
	assert.Equal(t, 8, cfg.Segments.Workers)
	assert.Equal(t, "-repacked", cfg.Segments.Suffix)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ffmpeg: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.FFmpeg.Path = "/usr/bin/ffmpeg"
	cfg.Segments.Workers = 2

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "negative workers", mutate: func(c *Config) { c.Segments.Workers = -1 }, errContains: "segments.workers"},
		{name: "negative timeout", mutate: func(c *Config) { c.FFmpeg.Timeout = -time.Second }, errContains: "ffmpeg.timeout"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, errContains: "invalid log level"},
		{name: "bad encoding", mutate: func(c *Config) { c.Logging.Encoding = "xml" }, errContains: "invalid log encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}

	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Path)
	assert.Equal(t, 1, cfg.Segments.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
}
