package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_TriggersOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	watched := filepath.Join(dir, "candidate.go")
	ignored := filepath.Join(dir, "other.go")
	require.NoError(t, os.WriteFile(watched, []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(ignored, []byte("package main\n"), 0644))

	changes := make(chan string, 8)
	w, err := NewWatcher(func(path string) { changes <- path }, watched)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// Give the watch loop a moment before generating events.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(ignored, []byte("package main // changed\n"), 0644))
	require.NoError(t, os.WriteFile(watched, []byte("package main // changed\n"), 0644))

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(watched)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification for the watched file")
	}

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Triggered, 1)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	watched := filepath.Join(dir, "cases.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("cases: []\n"), 0644))

	changes := make(chan string, 32)
	w, err := NewWatcher(func(path string) { changes <- path }, watched)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	time.Sleep(100 * time.Millisecond)

	// A burst of rapid writes inside the debounce interval.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(watched, []byte("cases: []\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected at least one notification")
	}
	// Let any stragglers arrive before counting.
	time.Sleep(500 * time.Millisecond)
	w.Stop()

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Changes, stats.Triggered)
	assert.Less(t, stats.Triggered, 5, "burst must be debounced")
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	watched := filepath.Join(dir, "candidate.go")
	require.NoError(t, os.WriteFile(watched, []byte("package main\n"), 0644))

	w, err := NewWatcher(func(string) {}, watched)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}
