package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/auction-tracker/internal/core"
)

type recordingSink struct {
	mu   sync.Mutex
	jobs []core.Job
}

func (s *recordingSink) Enqueue(_ context.Context, job core.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *recordingSink) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, j := range s.jobs {
		out = append(out, filepath.Base(j.Path))
	}
	return out
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "%PDF-a")
	write(t, filepath.Join(root, "nested", "B.PDF"), "%PDF-b")
	write(t, filepath.Join(root, "copy-of-a.pdf"), "%PDF-a")
	write(t, filepath.Join(root, "notes.txt"), "skip")
	write(t, filepath.Join(root, ".hidden", "c.pdf"), "%PDF-c")

	sink := &recordingSink{}
	results, stats, err := NewFSIngestor(sink, nil).IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Matched)
	assert.EqualValues(t, 3, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Deduplicated)
	assert.Len(t, results, 3)
	assert.ElementsMatch(t, []string{"a.pdf", "B.PDF"}, sink.paths())
}

func TestIngestPathRejectsOtherExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notice.docx")
	write(t, path, "x")

	_, err := NewFSIngestor(&recordingSink{}, nil).IngestPath(context.Background(), path)
	require.ErrorContains(t, err, "unsupported")
}

func TestWatchPicksUpNewFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.pdf"), "%PDF-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, NewFSIngestor(sink, nil), WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 50 * time.Millisecond})
	}()

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"existing.pdf"}, sink.paths())
	}, 2*time.Second, 10*time.Millisecond)

	write(t, filepath.Join(root, "new.pdf"), "%PDF-2")
	write(t, filepath.Join(root, "ignored.txt"), "nope")

	require.Eventually(t, func() bool {
		return len(sink.paths()) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{"existing.pdf", "new.pdf"}, sink.paths())

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}
