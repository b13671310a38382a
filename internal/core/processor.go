package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/core/auction"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
	"github.com/joseph-ayodele/auction-tracker/internal/repository"
	"github.com/joseph-ayodele/auction-tracker/internal/source"
)

// Fetcher downloads one remote notice.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (source.Download, error)
}

// Job is one document to process: a remote URL, or a local Path.
type Job struct {
	URL      string
	LinkText string
	Path     string
	RunID    string // scrape run the job belongs to, if any
}

func (j Job) String() string {
	if j.URL != "" {
		return j.URL
	}
	return j.Path
}

// Processor coordinates download (or file read), parse, persistence and the
// audit line for a single document.
type Processor struct {
	logger  *slog.Logger
	parser  *auction.Parser
	fetcher Fetcher
	repo    repository.AuctionRepository
	now     func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	parser *auction.Parser,
	fetcher Fetcher,
	repo repository.AuctionRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = auction.NewParser(nil, logger)
	}
	return &Processor{
		logger:  logger,
		parser:  parser,
		fetcher: fetcher,
		repo:    repo,
		now:     time.Now,
	}
}

// Process runs one document end to end and records exactly one audit
// entry for it. A bad document never produces an error here; the returned
// error only reports that the audit entry itself could not be written.
func (p *Processor) Process(ctx context.Context, job Job) (entity.AuditEntry, error) {
	entry := entity.AuditEntry{
		PDFURL:   job.URL,
		LinkText: job.LinkText,
	}
	if entry.PDFURL == "" {
		entry.PDFURL = job.Path
	}

	status, detail, rows := p.run(ctx, job, &entry)
	entry.Timestamp = p.now()
	entry.Status = status
	entry.Detail = detail
	entry.RowsExtracted = rows

	log := p.logger.With("pdf_url", entry.PDFURL, "status", string(status), "rows", rows)
	if runID := common.RunIDFromContext(ctx); runID != "" {
		log = log.With("run_id", runID)
	}
	if status == constants.StatusSuccess {
		log.Info("processor.document.ok")
	} else {
		log.Warn("processor.document.failed", "detail", detail)
	}

	// a cancelled document still gets its audit line
	if err := p.repo.AppendAudit(context.WithoutCancel(ctx), entry); err != nil {
		p.logger.Error("processor.audit.failed", "pdf_url", entry.PDFURL, "error", err)
		return entry, fmt.Errorf("append audit: %w", err)
	}
	return entry, nil
}

func (p *Processor) run(ctx context.Context, job Job, entry *entity.AuditEntry) (constants.AuditStatus, string, int) {
	data, filename, err := p.load(ctx, job)
	entry.PDFFilename = filename
	if err != nil {
		return statusOf(err), err.Error(), 0
	}

	out, err := p.parser.ParseContext(ctx, filename, data)
	switch {
	case errors.Is(err, auction.ErrEmptyContent), errors.Is(err, auction.ErrDocumentUnreadable):
		return constants.StatusParseFailed, err.Error(), 0
	case err != nil:
		return constants.ErrorStatus(err.Error()), err.Error(), 0
	}
	if len(out.Warnings) > 0 {
		p.logger.Debug("processor.parse.warnings", "pdf_url", entry.PDFURL, "warnings", out.Warnings)
	}

	rows := len(out.Document.Vehicles)
	if rows == 0 {
		return constants.StatusParseFailed, fmt.Sprintf("no vehicle rows (%d located, %d rejected)", out.RowsLocated, out.RowsRejected), 0
	}

	rec := &entity.DocumentRecord{
		ContentHash: out.ContentHash,
		SourceURL:   entry.PDFURL,
		ParsedAt:    p.now().UTC(),
		Document:    *out.Document,
	}
	if err := p.repo.SaveDocument(ctx, rec); err != nil {
		return constants.ErrorStatus(err.Error()), err.Error(), 0
	}
	return constants.StatusSuccess, "", rows
}

// load returns the document bytes and the filename recorded for them.
func (p *Processor) load(ctx context.Context, job Job) ([]byte, string, error) {
	if job.URL != "" {
		filename := source.FilenameFromURL(job.URL)
		if p.fetcher == nil {
			return nil, filename, common.NewAppError(string(constants.ErrorStatus("no downloader configured")), "fetch", nil)
		}
		dl, err := p.fetcher.Fetch(ctx, job.URL)
		if err != nil {
			return nil, filename, err
		}
		return dl.Body, dl.Filename, nil
	}

	filename := filepath.Base(job.Path)
	data, err := os.ReadFile(job.Path)
	if err != nil {
		return nil, filename, err
	}
	if !source.IsPDF("", data) {
		return nil, filename, common.NewAppError(string(constants.StatusNotAPDF), "missing PDF signature", nil)
	}
	return data, filename, nil
}

// statusOf maps a load failure onto an audit status.
func statusOf(err error) constants.AuditStatus {
	if code := common.CodeOf(err); code != "" {
		return constants.AuditStatus(code)
	}
	return constants.ErrorStatus(err.Error())
}
