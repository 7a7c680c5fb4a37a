package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*ConfigManager, *Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	return NewConfigManager(cfg, path), cfg, path
}

func TestConfigManager_List(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	settings := mgr.List()
	require.Len(t, settings, len(Keys()))
	assert.Equal(t, "ffmpeg.path", settings[0].Key)
	assert.Equal(t, "ffmpeg", settings[0].Value)

	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Key, settings[i].Key)
	}
}

func TestConfigManager_Get(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	tests := []struct {
		key  string
		want string
	}{
		{"ffmpeg.timeout", "10m0s"},
		{"output.faststart", "true"},
		{"segments.workers", "4"},
		{" Segments.Suffix ", "-converted"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := mgr.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := mgr.Get("google.folder_id")
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestConfigManager_Set(t *testing.T) {
	mgr, cfg, path := newTestManager(t)

	require.NoError(t, mgr.Set("ffmpeg.timeout", "90s"))
	require.NoError(t, mgr.Set("output.verify", "false"))
	require.NoError(t, mgr.Set("segments.workers", "12"))
	require.NoError(t, mgr.Set("logging.level", "DEBUG"))

	assert.Equal(t, 90*time.Second, cfg.FFmpeg.Timeout)
	assert.False(t, cfg.Output.Verify)
	assert.Equal(t, 12, cfg.Segments.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, loaded.FFmpeg.Timeout)
	assert.False(t, loaded.Output.Verify)
	assert.Equal(t, 12, loaded.Segments.Workers)
}

func TestConfigManager_SetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"unknown key", "email.from", "x", ErrUnknownKey},
		{"bad duration", "ffmpeg.timeout", "soon", ErrInvalidValue},
		{"bad bool", "output.faststart", "maybe", ErrInvalidValue},
		{"zero workers", "segments.workers", "0", ErrInvalidValue},
		{"bad log level", "logging.level", "loud", ErrInvalidValue},
		{"bad encoding", "logging.encoding", "xml", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, cfg, path := newTestManager(t)
			before := *cfg

			err := mgr.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, before, *cfg)

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestConfigManager_Reset(t *testing.T) {
	mgr, cfg, _ := newTestManager(t)

	require.NoError(t, mgr.Set("segments.suffix", "-mp4"))
	require.NoError(t, mgr.Reset("segments.suffix"))
	assert.Equal(t, "-converted", cfg.Segments.Suffix)
}
