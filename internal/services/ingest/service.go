package ingest

import (
	"context"
	"errors"
	"os"
	"strings"

	"log/slog"

	"github.com/joseph-ayodele/auction-tracker/internal/common"
	fsingest "github.com/joseph-ayodele/auction-tracker/internal/ingest"
)

// Service handles local ingestion requests from the CLI.
type Service struct {
	ingestor fsingest.Ingestor
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(ing fsingest.Ingestor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ingestor: ing,
		logger:   logger,
	}
}

// Request names a PDF file or a directory of them.
type Request struct {
	Path          string
	IncludeHidden bool
}

// Result represents ingestion results for a file or a directory.
type Result struct {
	Statistics fsingest.DirStats
	Results    []fsingest.IngestionResult
}

// Ingest hands the file, or every PDF under the directory, to the ingestor.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		s.logger.Error("ingest request missing path")
		return nil, common.NewAppError("INVALID_INPUT", "path is required", common.ErrInvalidInput)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Error("ingest path not found", "path", path)
			return nil, common.NewAppError("NOT_FOUND", "path not found: "+path, common.ErrNotFound)
		}
		return nil, common.WrapError(err, "stat "+path)
	}

	if !info.IsDir() {
		s.logger.Info("starting file ingest", "path", path)
		r, err := s.ingestor.IngestPath(ctx, path)
		if err != nil {
			return nil, common.NewAppError("INVALID_INPUT", "ingest: "+err.Error(), err)
		}
		stats := fsingest.DirStats{Scanned: 1, Matched: 1, Succeeded: 1}
		if r.Deduplicated {
			stats.Deduplicated = 1
		}
		return &Result{Statistics: stats, Results: []fsingest.IngestionResult{r}}, nil
	}

	skipHidden := !req.IncludeHidden
	s.logger.Info("starting directory ingest", "root", path, "skip_hidden", skipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, path, skipHidden)
	if err != nil {
		return nil, common.WrapError(err, "ingest directory")
	}

	s.logger.Info("directory ingest completed", "root", path, "scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)

	return &Result{
		Statistics: stats,
		Results:    results,
	}, nil
}
