package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
	"github.com/joseph-ayodele/auction-tracker/internal/core"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Queue accepts documents for background processing.
type Queue interface {
	Enqueue(ctx context.Context, job core.Job) error
	Shutdown(ctx context.Context)
}

// Stats counts processed documents by audit status.
type Stats struct {
	Processed int
	Succeeded int
	Rows      int
	ByStatus  map[constants.AuditStatus]int
}

type ProcessorQueue struct {
	proc    *core.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(entity.AuditEntry)

	ch   chan core.Job
	wg   sync.WaitGroup
	once sync.Once

	// parent of every job context; Shutdown cancels it when its own
	// context ends before the queue drains
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool

	statsMu sync.Mutex
	stats   Stats
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan core.Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone registers a callback run on the worker after each document.
func WithOnDone(fn func(entity.AuditEntry)) Option {
	return func(q *ProcessorQueue) {
		q.onDone = fn
	}
}

func NewProcessorQueue(proc *core.Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan core.Job, 256),
		stats:   Stats{ByStatus: map[constants.AuditStatus]int{}},
	}
	q.base, q.cancel = context.WithCancel(context.Background())
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.handle(workerID, job)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) handle(workerID int, job core.Job) {
	ctx := q.base
	if job.RunID != "" {
		ctx = common.WithRunID(ctx, job.RunID)
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	entry, err := q.proc.Process(ctx, job)
	cancel()
	if err != nil {
		q.logger.Error("processing failed", "worker_id", workerID, "document", job.String(), "error", err)
	}

	q.statsMu.Lock()
	q.stats.Processed++
	q.stats.ByStatus[entry.Status]++
	if entry.Status == constants.StatusSuccess {
		q.stats.Succeeded++
		q.stats.Rows += entry.RowsExtracted
	}
	q.statsMu.Unlock()

	if q.onDone != nil {
		q.onDone(entry)
	}
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job core.Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "document", job.String())
		return ErrQueueClosed
	}
	// hold the lock while sending so Shutdown cannot close the channel
	// under a blocked sender
	defer q.mu.Unlock()
	select {
	case q.ch <- job:
		q.logger.Debug("queued document for processing", "document", job.String())
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "document", job.String())
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the counters.
func (q *ProcessorQueue) Stats() Stats {
	q.statsMu.Lock()
	defer q.statsMu.Unlock()
	out := q.stats
	out.ByStatus = make(map[constants.AuditStatus]int, len(q.stats.ByStatus))
	for k, v := range q.stats.ByStatus {
		out.ByStatus[k] = v
	}
	return out
}

// Shutdown stops accepting jobs and waits for queued ones to finish. If ctx
// ends first, in-flight and remaining jobs are cancelled and Shutdown returns
// once the workers have wound down.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	defer q.cancel()
	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context, cancelling in-flight documents", "error", ctx.Err())
		q.cancel()
		<-done
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
