package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoginOperation tracks one login request: a span plus the login metrics.
type LoginOperation struct {
	Flow      string
	StartTime time.Time
	Metrics   *SessionMetrics

	span trace.Span
}

// StartLogin opens a span for a login flow ("user" or "hub"). If metrics is
// nil, metric recording is skipped.
func StartLogin(ctx context.Context, flow string, metrics *SessionMetrics) (context.Context, *LoginOperation) {
	ctx, span := StartSpan(ctx, SpanLogin, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String(AttrLoginFlow, flow))
	return ctx, &LoginOperation{
		Flow:      flow,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
}

// End closes the span with the outcome and records metrics. status is a
// short outcome label such as "ok" or an error code.
func (op *LoginOperation) End(ctx context.Context, status string, err error) {
	duration := time.Since(op.StartTime)

	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, status)
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	if op.Metrics != nil {
		op.Metrics.RecordLogin(ctx, op.Flow, status, duration)
	}
}
