package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestable(t *testing.T) {
	dir := t.TempDir()
	paper := filepath.Join(dir, "paper.pdf")
	notes := filepath.Join(dir, "notes.md")
	hidden := filepath.Join(dir, ".draft.txt")
	image := filepath.Join(dir, "figure.png")
	sub := filepath.Join(dir, "sub.txt")
	for _, p := range []string{paper, notes, hidden, image} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create pdf", paper, fsnotify.Create, true},
		{"write markdown", notes, fsnotify.Write, true},
		{"chmod ignored", paper, fsnotify.Chmod, false},
		{"remove ignored", filepath.Join(dir, "gone.pdf"), fsnotify.Remove, false},
		{"hidden file skipped", hidden, fsnotify.Create, false},
		{"unsupported extension", image, fsnotify.Create, false},
		{"directory skipped", sub, fsnotify.Create, false},
		{"vanished before stat", filepath.Join(dir, "tmp.txt"), fsnotify.Create, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := ingestable(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.path, path)
			}
		})
	}
}

func TestReadyPaths(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b.pdf": now.Add(-2 * time.Second),
		"a.pdf": now.Add(-time.Second),
		"c.pdf": now.Add(-100 * time.Millisecond),
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, readyPaths(pending, now, time.Second))
	assert.Empty(t, readyPaths(pending, now, 5*time.Second))
}

func TestExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.pdf", ".hidden.md", "skip.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	got, err := existingFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.txt")}, got)
}

func TestWatchLoop_IngestsSettledFilesOnce(t *testing.T) {
	dir := t.TempDir()
	paper := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(paper, []byte("text"), 0o644))

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ingested := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, 30*time.Millisecond, func(p string) { ingested <- p })
	}()

	events <- fsnotify.Event{Name: paper, Op: fsnotify.Create}
	events <- fsnotify.Event{Name: paper, Op: fsnotify.Write}
	errs <- assert.AnError

	select {
	case got := <-ingested:
		assert.Equal(t, paper, got)
	case <-time.After(2 * time.Second):
		t.Fatal("file was not ingested")
	}

	select {
	case got := <-ingested:
		t.Fatalf("ingested %s twice", got)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestWatchCmd_RejectsFile(t *testing.T) {
	setupTestService(t)
	file := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := run(t, "watch", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
