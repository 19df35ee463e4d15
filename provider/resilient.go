package provider

import (
	"context"

	"github.com/kbukum/sseclient/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped.
type ResilienceConfig struct {
	// Retry retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.Retry == nil
}

// WithResilience wraps a RequestResponse provider with the configured
// policies. An empty config returns the provider unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, cfg: cfg}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	cfg   ResilienceConfig
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.cfg, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn through the configured policies. The last
// error from fn, or the context error that ended the retries, is returned
// unchanged.
func ExecuteWithResilience[T any](ctx context.Context, cfg ResilienceConfig, fn func() (T, error)) (T, error) {
	if cfg.Retry == nil {
		return fn()
	}
	return resilience.Retry(ctx, *cfg.Retry, fn)
}
