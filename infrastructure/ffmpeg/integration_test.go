//go:build manual

package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"media-remuxer/domain/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags=manual -v ./infrastructure/ffmpeg/... -run TestRealFFmpeg
func TestRealFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found - skipping real ffmpeg test")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found - skipping real ffmpeg test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dir := t.TempDir()
	src := filepath.Join(dir, "source.ts")

	// Four seconds of test pattern, encoded once so every later step is a stream copy
	gen := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=4:size=160x120:rate=10",
		"-c:v", "mpeg4", "-g", "10", "-f", "mpegts", "-y", src)
	out, err := gen.CombinedOutput()
	require.NoError(t, err, string(out))

	remuxer := NewRemuxer()
	prober := NewProber()
	require.NoError(t, remuxer.VerifyInstalled(ctx))

	t.Run("remux to mp4", func(t *testing.T) {
		dst := filepath.Join(dir, "remuxed.mp4")
		req, err := container.NewRemuxRequest(src, dst)
		require.NoError(t, err)
		require.NoError(t, remuxer.Remux(ctx, req, dst))

		info, err := prober.Probe(ctx, dst)
		require.NoError(t, err)
		assert.Equal(t, 1, info.TrackCount(container.TrackVideo))
		assert.InDelta(t, 4.0, info.Duration.Seconds(), 0.5)
	})

	t.Run("trim from offset", func(t *testing.T) {
		dst := filepath.Join(dir, "trimmed.mkv")
		start, _ := container.NewOffset(2)
		req, err := container.NewRepackRequest(src, dst, start, container.ModeTrim)
		require.NoError(t, err)
		require.NoError(t, remuxer.Repack(ctx, req, dst))

		info, err := prober.Probe(ctx, dst)
		require.NoError(t, err)
		assert.Less(t, info.Duration, 3*time.Second)
	})

	t.Run("shift timestamps", func(t *testing.T) {
		dst := filepath.Join(dir, "shifted.mp4")
		start, _ := container.NewOffset(30)
		req, err := container.NewRepackRequest(src, dst, start, container.ModeShift)
		require.NoError(t, err)
		require.NoError(t, remuxer.Repack(ctx, req, dst))

		_, err = os.Stat(dst)
		require.NoError(t, err)
	})

	t.Run("corrupt input fails", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.ts")
		require.NoError(t, os.WriteFile(bad, []byte("not a transport stream"), 0644))

		req, err := container.NewRemuxRequest(bad, filepath.Join(dir, "bad.mp4"))
		require.NoError(t, err)
		assert.Error(t, remuxer.Remux(ctx, req, filepath.Join(dir, "bad.mp4")))
	})
}
