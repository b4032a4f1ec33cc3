package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher rejects an empty file list and missing directories
// - A write to a watched file fires the callback after the debounce
// - Rapid writes coalesce into one callback
// - Writes to sibling files in the same directory are ignored
// - Save-by-rename (create over the target) is reported
// - Stop is idempotent and works without Start
// - Context cancellation stops the watcher

const testDebounce = 100 * time.Millisecond

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func collect(t *testing.T) (func(files []string), <-chan []string) {
	t.Helper()
	ch := make(chan []string, 10)
	return func(files []string) { ch <- files }, ch
}

func TestNewFileWatcher_Errors(t *testing.T) {
	t.Parallel()

	// Test: at least one file is required
	_, err := NewFileWatcher(nil, testDebounce, nil)
	assert.Error(t, err)

	// Test: the parent directory must exist
	_, err = NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing", "a.py")}, testDebounce, nil)
	assert.Error(t, err)
}

func TestFileWatcher_WriteFiresCallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "app.py")
	writeFile(t, target, "x = 1\n")

	w, err := NewFileWatcher([]string{target}, testDebounce, nil)
	require.NoError(t, err)
	defer w.Stop()

	callback, calls := collect(t)
	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(50 * time.Millisecond)

	// Test: a single write is reported with the absolute path
	writeFile(t, target, "x = 2\n")

	select {
	case files := <-calls:
		assert.Equal(t, []string{target}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "Main.kt")
	writeFile(t, target, "fun main() {}\n")

	w, err := NewFileWatcher([]string{target}, 200*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 10)
	require.NoError(t, w.Start(context.Background(), func(files []string) {
		mu.Lock()
		count++
		mu.Unlock()
		done <- struct{}{}
	}))
	time.Sleep(50 * time.Millisecond)

	// Test: writes inside the quiet period coalesce
	for i := 0; i < 3; i++ {
		writeFile(t, target, "fun main() { println(1) }\n")
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "app.py")
	sibling := filepath.Join(dir, "app.py.map.txt")
	writeFile(t, target, "x = 1\n")

	w, err := NewFileWatcher([]string{target}, testDebounce, nil)
	require.NoError(t, err)
	defer w.Stop()

	callback, calls := collect(t)
	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(50 * time.Millisecond)

	// Test: output written next to the source does not trigger a run
	writeFile(t, sibling, "### CODE MAP (READ-ONLY) ###\n")

	select {
	case files := <-calls:
		t.Fatalf("unexpected callback: %v", files)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestFileWatcher_SaveByRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "Repo.java")
	writeFile(t, target, "class Repo {}\n")

	w, err := NewFileWatcher([]string{target}, testDebounce, nil)
	require.NoError(t, err)
	defer w.Stop()

	callback, calls := collect(t)
	require.NoError(t, w.Start(context.Background(), callback))
	time.Sleep(50 * time.Millisecond)

	// Test: replacing the file via rename is seen as a change
	tmp := filepath.Join(dir, ".Repo.java.swp")
	writeFile(t, tmp, "class Repo { void a() {} }\n")
	require.NoError(t, os.Rename(tmp, target))

	select {
	case files := <-calls:
		assert.Equal(t, []string{target}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "a.php")
	writeFile(t, target, "<?php\n")

	// Test: Stop without Start succeeds and is idempotent
	w, err := NewFileWatcher([]string{target}, testDebounce, nil)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestFileWatcher_ContextCancel(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, target, "x = 1\n")

	w, err := NewFileWatcher([]string{target}, testDebounce, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	callback, calls := collect(t)
	require.NoError(t, w.Start(ctx, callback))

	// Test: cancelling the context ends the loop and Stop returns promptly
	cancel()
	stopped := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after cancel")
	}
	assert.Empty(t, calls)
}
