package session

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/sseclient/clock"
	"github.com/kbukum/sseclient/eventsource"
	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/password"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	log        *logger.Logger
	httpClient *httpclient.Client
	dialer     eventsource.Dialer
	clock      clock.Clock
	hasher     password.Hasher
	meter      metric.Meter
	onError    func(error)
}

// WithLogger sets the session logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithHTTPClient sets the client used for login requests and, unless
// WithDialer is given, for the stream.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithDialer replaces the stream transport.
func WithDialer(d eventsource.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithClock replaces the timer source. Tests pass a *clock.Fake.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithHasher replaces the password hasher built from Config.Hash.
func WithHasher(h password.Hasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithMeter records session metrics on m.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithErrorHandler receives errors the session otherwise only logs: stream
// failures it recovers from and payloads it cannot parse. fn must not block.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}
