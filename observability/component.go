package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/sseclient/component"
)

// Config selects the OTLP export settings of a command. Telemetry is off
// while Endpoint is empty.
type Config struct {
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// Component installs the global tracer and meter providers on Start and
// flushes them on Stop.
type Component struct {
	tracerCfg TracerConfig
	meterCfg  MeterConfig

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent builds the exporters' settings from cfg for the named service.
func NewComponent(cfg Config, service, version, environment string) *Component {
	tc := DefaultTracerConfig(service)
	tc.ServiceVersion, tc.Environment = version, environment
	tc.Endpoint, tc.Insecure = cfg.Endpoint, cfg.Insecure
	if cfg.SampleRate > 0 {
		tc.SampleRate = cfg.SampleRate
	}

	mc := DefaultMeterConfig(service)
	mc.ServiceVersion, mc.Environment = version, environment
	mc.Endpoint, mc.Insecure = cfg.Endpoint, cfg.Insecure
	if cfg.MetricInterval > 0 {
		mc.Interval = cfg.MetricInterval
	}
	return &Component{tracerCfg: tc, meterCfg: mc}
}

// Name returns the component name.
func (c *Component) Name() string { return "telemetry" }

// Start creates and installs the providers.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tp, err := InitTracer(ctx, &c.tracerCfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	mp, err := InitMeter(ctx, &c.meterCfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("telemetry: %w", err)
	}
	c.tp, c.mp = tp, mp
	return nil
}

// Stop flushes and shuts down both providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
		c.mp = nil
	}
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
		c.tp = nil
	}
	return stderrors.Join(errs...)
}

// Health reports whether the providers are installed.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tp == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe reports the export endpoint.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "OpenTelemetry",
		Type:    "telemetry",
		Details: fmt.Sprintf("OTLP/HTTP %s", c.tracerCfg.Endpoint),
	}
}
