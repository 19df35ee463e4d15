package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope used by the session.
const MeterName = "github.com/kbukum/sseclient/session"

// Reconnect reasons recorded on sse.reconnects.
const (
	ReasonTransportError = "transport_error"
	ReasonHeartbeat      = "heartbeat_timeout"
	ReasonClosed         = "stream_closed"
	ReasonTokenRefresh   = "token_refresh"
)

// SessionMetrics holds the instruments a session records into. A nil
// *SessionMetrics records nothing.
type SessionMetrics struct {
	connectionsOpened metric.Int64Counter
	reconnects        metric.Int64Counter
	eventsReceived    metric.Int64Counter
	logins            metric.Int64Counter
	loginDuration     metric.Float64Histogram
	terminalEvents    metric.Int64Counter
}

// NewSessionMetrics creates session instruments on the given meter.
func NewSessionMetrics(meter metric.Meter) (*SessionMetrics, error) {
	connectionsOpened, err := meter.Int64Counter("sse.connections.opened",
		metric.WithDescription("Event stream connections that reached the open state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.connections.opened counter: %w", err)
	}

	reconnects, err := meter.Int64Counter("sse.reconnects",
		metric.WithDescription("Stream restarts by recovery reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.reconnects counter: %w", err)
	}

	eventsReceived, err := meter.Int64Counter("sse.events.received",
		metric.WithDescription("Events delivered to the session callback"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.events.received counter: %w", err)
	}

	logins, err := meter.Int64Counter("sse.logins",
		metric.WithDescription("Login attempts by flow and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.logins counter: %w", err)
	}

	loginDuration, err := meter.Float64Histogram("sse.login.duration",
		metric.WithDescription("Duration of login requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.login.duration histogram: %w", err)
	}

	terminalEvents, err := meter.Int64Counter("sse.terminal_events",
		metric.WithDescription("Sessions that gave up refreshing their token"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.terminal_events counter: %w", err)
	}

	return &SessionMetrics{
		connectionsOpened: connectionsOpened,
		reconnects:        reconnects,
		eventsReceived:    eventsReceived,
		logins:            logins,
		loginDuration:     loginDuration,
		terminalEvents:    terminalEvents,
	}, nil
}

// RecordOpen counts a stream that reached the open state.
func (m *SessionMetrics) RecordOpen(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsOpened.Add(ctx, 1)
}

// RecordReconnect counts a restart triggered for reason.
func (m *SessionMetrics) RecordReconnect(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.reconnects.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordEvent counts an event delivered to the callback.
func (m *SessionMetrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.eventsReceived.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}

// RecordLogin counts a login attempt and its latency.
func (m *SessionMetrics) RecordLogin(ctx context.Context, flow, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("status", status),
	))
	m.loginDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("flow", flow),
	))
}

// RecordTerminal counts a terminal COULD_NOT_REFRESH_TOKEN event.
func (m *SessionMetrics) RecordTerminal(ctx context.Context) {
	if m == nil {
		return
	}
	m.terminalEvents.Add(ctx, 1)
}
