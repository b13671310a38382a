package main

import (
	"context"
	"log/slog"
	"time"
)

// scheduler runs one pass immediately and then once per interval until ctx
// is done. Passes never overlap.
type scheduler struct {
	interval time.Duration
	logger   *slog.Logger
	run      func(ctx context.Context) error
	onResult func(err error)
}

func (s *scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *scheduler) pass(ctx context.Context) {
	start := time.Now()
	s.logger.Info("scheduled run starting")
	err := s.run(ctx)
	if err != nil {
		s.logger.Error("scheduled run failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
	} else {
		s.logger.Info("scheduled run finished", "elapsed_ms", time.Since(start).Milliseconds(), "next_run", start.Add(s.interval).Format(time.RFC3339))
	}
	if s.onResult != nil {
		s.onResult(err)
	}
}
