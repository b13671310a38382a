package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/core"
	fsingest "github.com/joseph-ayodele/auction-tracker/internal/ingest"
	"github.com/joseph-ayodele/auction-tracker/internal/testutil"
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

func writePDF(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, testutil.BuildPDF(lines), 0o644))
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notice.pdf")
	writePDF(t, file, testutil.AuctionNotice...)

	sink := &recordingSink{}
	svc := NewService(fsingest.NewFSIngestor(sink, nil), nil)

	res, err := svc.Ingest(context.Background(), Request{Path: file})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.Statistics.Succeeded)
	require.Len(t, sink.jobs, 1)
	assert.Equal(t, file, sink.jobs[0].Path)

	res, err = svc.Ingest(context.Background(), Request{Path: file})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.Statistics.Deduplicated)
	assert.Len(t, sink.jobs, 1)
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, filepath.Join(dir, "a.pdf"), "first")
	writePDF(t, filepath.Join(dir, "nested", "b.pdf"), "second")
	writePDF(t, filepath.Join(dir, ".hidden", "c.pdf"), "third")

	sink := &recordingSink{}
	svc := NewService(fsingest.NewFSIngestor(sink, nil), nil)

	res, err := svc.Ingest(context.Background(), Request{Path: dir})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.Statistics.Succeeded)
	assert.Len(t, sink.jobs, 2)
}

func TestIngestBadRequest(t *testing.T) {
	svc := NewService(fsingest.NewFSIngestor(&recordingSink{}, nil), nil)

	_, err := svc.Ingest(context.Background(), Request{Path: "  "})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Ingest(context.Background(), Request{Path: filepath.Join(t.TempDir(), "nope.pdf")})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "NOT_FOUND", common.CodeOf(err))
}
