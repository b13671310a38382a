package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/core"
	"github.com/joseph-ayodele/auction-tracker/internal/core/async"
	"github.com/joseph-ayodele/auction-tracker/internal/source"
)

// LinkSource lists the notices currently published.
type LinkSource interface {
	Discover(ctx context.Context) ([]source.Link, error)
}

// Summary describes one scrape run.
type Summary struct {
	RunID   string
	Links   int
	Stats   async.Stats
	Elapsed time.Duration
}

// Service runs a full scrape: discover the published notices, then process
// each of them on a fresh worker pool.
type Service struct {
	links     LinkSource
	processor *core.Processor
	queueOpts []async.Option
	logger    *slog.Logger
}

// NewService creates a new scrape service.
func NewService(links LinkSource, processor *core.Processor, logger *slog.Logger, queueOpts ...async.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		links:     links,
		processor: processor,
		queueOpts: queueOpts,
		logger:    logger,
	}
}

// Run processes every discovered notice and waits for all of them. Bad
// documents are recorded in the audit trail; only a failed discovery or an
// interrupted run is returned as an error.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	ctx = common.WithRunID(ctx, common.RunIDFromContext(ctx))
	sum := Summary{RunID: common.RunIDFromContext(ctx)}
	start := time.Now()
	log := s.logger.With("run_id", sum.RunID)

	log.Info("starting scrape")
	links, err := s.links.Discover(ctx)
	if err != nil {
		log.Error("scrape.discover.failed", "error", err)
		return sum, fmt.Errorf("discover: %w", err)
	}
	sum.Links = len(links)
	if len(links) == 0 {
		log.Info("No PDF links found")
		sum.Elapsed = time.Since(start)
		return sum, nil
	}

	q := async.NewProcessorQueue(s.processor, s.logger, s.queueOpts...)
	var enqueueErr error
	for _, l := range links {
		job := core.Job{URL: l.URL, LinkText: l.Text, RunID: sum.RunID}
		if err := q.Enqueue(ctx, job); err != nil {
			enqueueErr = fmt.Errorf("enqueue %s: %w", l.URL, err)
			break
		}
	}
	// accepted jobs always finish with an audit line; once ctx is done they
	// are cancelled rather than run to completion
	q.Shutdown(ctx)

	sum.Stats = q.Stats()
	sum.Elapsed = time.Since(start)
	log.Info("scrape complete",
		"links", sum.Links,
		"processed", sum.Stats.Processed,
		"succeeded", sum.Stats.Succeeded,
		"rows", sum.Stats.Rows,
		"elapsed_ms", sum.Elapsed.Milliseconds())
	return sum, enqueueErr
}
