package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/typedflow/errors"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunContext holds observability state for one flow run.
type RunContext struct {
	Flow      string
	RunID     string
	StartTime time.Time
	// Metrics is optional; nil skips metric recording.
	Metrics *Metrics
	// Tracing enables the run span.
	Tracing bool
}

// NewRunContext creates a run context starting now.
func NewRunContext(flow, runID string, metrics *Metrics, tracing bool) *RunContext {
	return &RunContext{
		Flow:      flow,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
		Tracing:   tracing,
	}
}

type runContextKey struct{}

// WithRunContext stores a RunContext in the context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// Start opens the run span, when tracing is on, and counts the run as active.
// The returned context carries both the span and the run context.
func (rc *RunContext) Start(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx = WithRunContext(ctx, rc)
	var span trace.Span = noop.Span{}
	if rc.Tracing {
		ctx, span = StartSpan(ctx, spanName)
		span.SetAttributes(
			attribute.String(AttrFlowName, rc.Flow),
			attribute.String(AttrRunID, rc.RunID),
		)
	}
	if rc.Metrics != nil {
		rc.Metrics.RecordRunStart(ctx)
	}
	return ctx, span
}

// End closes the span and records run metrics. A non-nil err marks the run
// failed and is counted by its error code.
func (rc *RunContext) End(ctx context.Context, span trace.Span, items int64, err error) {
	duration := rc.Duration()
	status := StatusOK
	code := ""
	if err != nil {
		status = StatusError
		code = string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorCode, code))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrItems, items),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if rc.Metrics != nil {
		rc.Metrics.RecordRunEnd(ctx, rc.Flow, status, items, duration)
		if err != nil {
			rc.Metrics.RecordError(ctx, rc.Flow, code)
		}
	}
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
