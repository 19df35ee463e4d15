package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/sseclient/resilience"
	"github.com/kbukum/sseclient/security"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the default request timeout. Defaults to 30s.
	// Streaming requests ignore it and rely on context cancellation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// TLS configures the transport's client TLS. Nil uses system roots.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior for Do. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`

	// HTTP2 enables HTTP/2 health checking on the transport. Nil keeps the
	// standard library defaults.
	HTTP2 *HTTP2Config `yaml:"http2" mapstructure:"http2"`
}

// HTTP2Config tunes the HTTP/2 transport. Long-lived event streams benefit
// from ping-based dead-connection detection.
type HTTP2Config struct {
	// ReadIdleTimeout is how long a connection may be idle before a ping is sent.
	ReadIdleTimeout time.Duration `yaml:"read_idle_timeout" mapstructure:"read_idle_timeout"`
	// PingTimeout closes the connection if a ping is not answered in time.
	PingTimeout time.Duration `yaml:"ping_timeout" mapstructure:"ping_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.HTTP2 != nil {
		if c.HTTP2.ReadIdleTimeout <= 0 {
			c.HTTP2.ReadIdleTimeout = 30 * time.Second
		}
		if c.HTTP2.PingTimeout <= 0 {
			c.HTTP2.PingTimeout = 15 * time.Second
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.HTTP2 != nil && c.HTTP2.PingTimeout < 0 {
		return fmt.Errorf("httpclient: http2 ping timeout must not be negative")
	}
	return c.TLS.Validate()
}

// DefaultRetryConfig returns a default retry config suitable for HTTP clients.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}
