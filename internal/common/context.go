package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ContextKeyRunID contextKey = "run_id"

// WithRunID tags every document processed under ctx with one scrape run.
// An empty id generates a new one.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		runID = uuid.NewString()
	}
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}
