package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestScanDirectoryFiltersPDFs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "a.PDF"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "scan.png"))
	touch(t, filepath.Join(root, "sub", "c.pdf"))
	touch(t, filepath.Join(root, ".hidden", "d.pdf"))
	touch(t, filepath.Join(root, ".e.pdf"))

	paths, stats, err := ScanDirectory(context.Background(), root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.pdf"),
	}, paths)
	assert.EqualValues(t, 3, stats.Matched)

	all, _, err := ScanDirectory(context.Background(), root, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestScanDirectoryErrors(t *testing.T) {
	_, _, err := ScanDirectory(context.Background(), " ", true)
	assert.Error(t, err)

	_, _, err = ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), true)
	assert.Error(t, err)
}

func TestWatcherEmitsNewPDFs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan not emitted")
	}

	touch(t, filepath.Join(root, "ignored.txt"))
	touch(t, filepath.Join(root, "new.pdf"))

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "new.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("new file not emitted")
	}

	cancel()
	for range events {
	}
}
