package remuxer

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	appcontainer "media-remuxer/application/container"
	"media-remuxer/domain/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBackend struct {
	mu      sync.Mutex
	files   map[string]bool
	repacks []*container.RepackRequest
	remuxes []*container.RemuxRequest
	fail    error
}

func newFakeBackend(files ...string) *fakeBackend {
	b := &fakeBackend{files: make(map[string]bool)}
	for _, f := range files {
		b.files[f] = true
	}
	return b
}

func (b *fakeBackend) Remux(ctx context.Context, req *container.RemuxRequest, tmpPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remuxes = append(b.remuxes, req)
	if b.fail != nil {
		return b.fail
	}
	b.files[tmpPath] = true
	return nil
}

func (b *fakeBackend) Repack(ctx context.Context, req *container.RepackRequest, tmpPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.repacks = append(b.repacks, req)
	if b.fail != nil {
		return b.fail
	}
	b.files[tmpPath] = true
	return nil
}

func (b *fakeBackend) Exists(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.files[path]
}

func (b *fakeBackend) Stage(finalPath string) (string, error) {
	return finalPath + ".tmp", nil
}

func (b *fakeBackend) Commit(tmpPath, finalPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.files, tmpPath)
	b.files[finalPath] = true
	return nil
}

func (b *fakeBackend) Discard(tmpPath string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.files, tmpPath)
}

func install(t *testing.T, b *fakeBackend, logger *zap.Logger) {
	t.Helper()
	SetDefault(appcontainer.NewService(b, b, b), logger)
	t.Cleanup(func() { SetDefault(nil, nil) })
}

func TestRemux(t *testing.T) {
	b := newFakeBackend("/media/in.ts")
	install(t, b, nil)

	assert.True(t, Remux("/media/in.ts", "/media/out.mp4"))
	assert.True(t, b.Exists("/media/out.mp4"))
	require.Len(t, b.remuxes, 1)
	assert.Equal(t, container.FormatMP4, b.remuxes[0].Format)
}

func TestRemux_Failures(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		fail  error
		src   string
		out   string
	}{
		{name: "missing source", src: "/media/none.ts", out: "/media/out.mp4"},
		{name: "unknown extension", files: []string{"/media/in.ts"}, src: "/media/in.ts", out: "/media/out.xyz"},
		{name: "same path", files: []string{"/media/in.mp4"}, src: "/media/in.mp4", out: "/media/in.mp4"},
		{name: "ffmpeg fails", files: []string{"/media/in.ts"}, fail: errors.New("exit status 1"), src: "/media/in.ts", out: "/media/out.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(tt.files...)
			b.fail = tt.fail
			install(t, b, nil)

			assert.False(t, Remux(tt.src, tt.out))
			if tt.out != tt.src {
				assert.False(t, b.Exists(tt.out))
			}
		})
	}
}

func TestRepack_ShiftsTimestamps(t *testing.T) {
	b := newFakeBackend("/hls/seg-3.ts")
	install(t, b, nil)

	Repack("/hls/seg-3.ts", "/hls/seg-3-converted.mp4", 12.5)

	require.Len(t, b.repacks, 1)
	assert.Equal(t, container.ModeShift, b.repacks[0].Mode)
	assert.Equal(t, 12.5, b.repacks[0].Start.Seconds())
	assert.True(t, b.Exists("/hls/seg-3-converted.mp4"))
}

func TestRepack_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	b := newFakeBackend("/hls/seg.ts")
	install(t, b, zap.New(core))

	for _, start := range []float64{-1, math.NaN(), math.Inf(1)} {
		Repack("/hls/seg.ts", "/hls/seg.mp4", start)
	}

	assert.Empty(t, b.repacks)
	assert.Equal(t, 3, logs.FilterMessage("repack failed").Len())
	assert.False(t, b.Exists("/hls/seg.mp4"))
}

func TestRepackContext_ReturnsError(t *testing.T) {
	b := newFakeBackend()
	install(t, b, nil)

	_, err := RepackContext(context.Background(), "/hls/none.ts", "/hls/none.mp4", 0, container.ModeTrim)
	assert.True(t, errors.Is(err, container.ErrSourceNotFound))
}

func TestRepackContext_ZeroOffsetIsPlainCopy(t *testing.T) {
	b := newFakeBackend("/media/in.mkv")
	install(t, b, nil)

	r, err := RepackContext(context.Background(), "/media/in.mkv", "/media/out.mp4", 0, container.ModeTrim)
	require.NoError(t, err)
	assert.Equal(t, "/media/out.mp4", r.OutputPath)
	require.Len(t, b.repacks, 1)
	assert.True(t, b.repacks[0].IsPlainCopy())
}

func TestDefault_BuildsService(t *testing.T) {
	SetDefault(nil, nil)
	t.Cleanup(func() { SetDefault(nil, nil) })

	s := Default()
	require.NotNil(t, s)
	assert.Same(t, s, Default())
}
