// Package reqctx carries the identity of one extraction run through a context.
package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// RunContext identifies one pipeline run in logs and errors
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRun attaches a fresh run identity to ctx. An existing one is kept.
func WithRun(ctx context.Context) context.Context {
	if _, ok := ctx.Value(runKey).(*RunContext); ok {
		return ctx
	}
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	})
}

// FromContext returns the run identity stored in ctx
func FromContext(ctx context.Context) (*RunContext, bool) {
	rc, ok := ctx.Value(runKey).(*RunContext)
	return rc, ok
}

// RunID returns the run ID stored in ctx, or "unknown"
func RunID(ctx context.Context) string {
	if rc, ok := FromContext(ctx); ok {
		return rc.RunID
	}
	return "unknown"
}

// RunError wraps an error with the run that produced it
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError tags err with the run ID from ctx. A nil err stays nil.
func NewRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{RunID: RunID(ctx), Err: err}
}
