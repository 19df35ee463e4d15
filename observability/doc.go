// Package observability wires OpenTelemetry tracing and metrics for event
// stream sessions.
//
// Providers:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
// Session instruments:
//
//	m, err := observability.NewSessionMetrics(observability.Meter(observability.MeterName))
//	m.RecordReconnect(ctx, observability.ReasonHeartbeat)
//
// Login spans:
//
//	ctx, op := observability.StartLogin(ctx, "user", m)
//	defer op.End(ctx, "ok", nil)
//
// Under bootstrap, NewComponent installs both providers on Start and flushes
// them on Stop.
package observability
