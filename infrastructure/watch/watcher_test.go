package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func isTS(name string) bool {
	return strings.HasSuffix(name, ".ts")
}

func TestWatcher_EmitsSettledSegments(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, isTS, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seg-1.ts"), []byte("data"), 0644))

	select {
	case got := <-w.Segments():
		assert.Equal(t, filepath.Join(dir, "seg-1.ts"), got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for segment")
	}
}

func TestWatcher_IgnoresWritesAfterEmit(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, isTS, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	seg := filepath.Join(dir, "seg-1.ts")
	require.NoError(t, os.WriteFile(seg, []byte("data"), 0644))

	select {
	case got := <-w.Segments():
		assert.Equal(t, seg, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for segment")
	}

	f, err := os.OpenFile(seg, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("more"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case got := <-w.Segments():
		t.Fatalf("segment emitted twice: %s", got)
	case <-time.After(300 * time.Millisecond):
	}

	// a replaced file is a new segment
	require.NoError(t, os.Remove(seg))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(seg, []byte("new"), 0644))

	select {
	case got := <-w.Segments():
		assert.Equal(t, seg, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for replaced segment")
	}
}

func TestWatcher_CloseClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(t.TempDir(), isTS, 0, nil)
	require.NoError(t, err)

	w.Close()
	_, ok := <-w.Segments()
	assert.False(t, ok)

	// closing twice is harmless
	w.Close()
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), isTS, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestSettled(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"/d/b.ts": now.Add(-time.Second),
		"/d/a.ts": now.Add(-2 * time.Second),
		"/d/c.ts": now,
	}
	assert.Equal(t, []string{"/d/a.ts", "/d/b.ts"}, settled(pending, now, 500*time.Millisecond))
}
