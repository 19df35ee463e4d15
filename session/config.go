package session

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/sseclient/password"
	"github.com/kbukum/sseclient/resilience"
	"github.com/kbukum/sseclient/security"
	"github.com/kbukum/sseclient/util"
	"github.com/kbukum/sseclient/validation"
)

// Defaults for the timing knobs.
const (
	DefaultHeartbeatTimeout     = 40 * time.Second
	DefaultLivenessPollInterval = time.Second
	DefaultReconnectDelay       = 2 * time.Second
	DefaultLoginTimeout         = 30 * time.Second

	// DefaultProjectName is reported in the client identifier when no
	// project is configured.
	DefaultProjectName = "unnamed-project"
)

// Config configures a Session. Loadable from YAML/env via mapstructure tags.
type Config struct {
	// SSEURL is the event stream endpoint.
	SSEURL string `yaml:"sse_url" mapstructure:"sse_url" validate:"required,url"`

	// LoginURL is the user login endpoint. Required for Login and LoginHashed.
	LoginURL string `yaml:"login_url" mapstructure:"login_url" validate:"omitempty,url"`

	// HubLoginBaseURL is the hub login base; the hub id and "/login" are
	// appended. Required for HubLogin.
	HubLoginBaseURL string `yaml:"hub_login_base_url" mapstructure:"hub_login_base_url" validate:"omitempty,url"`

	// ProjectName identifies the caller in the client identifier.
	ProjectName string `yaml:"project_name" mapstructure:"project_name"`

	// RequireAuthentication adds accessToken and projectName to the stream
	// URL and makes Start fail without a token. Defaults to true.
	RequireAuthentication *bool `yaml:"require_authentication" mapstructure:"require_authentication"`

	// AutoReconnect enables every automatic recovery path. Defaults to true.
	AutoReconnect *bool `yaml:"auto_reconnect" mapstructure:"auto_reconnect"`

	HeartbeatTimeout     time.Duration `yaml:"heartbeat_timeout" mapstructure:"heartbeat_timeout" validate:"gt=0"`
	LivenessPollInterval time.Duration `yaml:"liveness_poll_interval" mapstructure:"liveness_poll_interval" validate:"gt=0"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay" validate:"gt=0"`
	LoginTimeout         time.Duration `yaml:"login_timeout" mapstructure:"login_timeout" validate:"gt=0"`

	// LoginRetry retries login requests on connection failures and 5xx.
	// Nil sends each login once.
	LoginRetry *resilience.RetryConfig `yaml:"login_retry" mapstructure:"login_retry"`

	// Hash selects the password digest Login applies.
	Hash password.Config `yaml:"hash" mapstructure:"hash"`

	// TLS applies to login and stream requests alike.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.ProjectName == "" {
		c.ProjectName = DefaultProjectName
	}
	if c.RequireAuthentication == nil {
		c.RequireAuthentication = util.Ptr(true)
	}
	if c.AutoReconnect == nil {
		c.AutoReconnect = util.Ptr(true)
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if c.LivenessPollInterval <= 0 {
		c.LivenessPollInterval = DefaultLivenessPollInterval
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = DefaultLoginTimeout
	}
	if c.LoginRetry != nil {
		c.LoginRetry.ApplyDefaults()
	}
	c.Hash.ApplyDefaults()
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Hash.Validate(); err != nil {
		return fmt.Errorf("session.hash: %w", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("session.%w", err)
	}
	return nil
}

// Authenticated reports whether the stream requires an access token.
func (c *Config) Authenticated() bool {
	return util.DerefOr(c.RequireAuthentication, true)
}

// Reconnects reports whether automatic recovery is enabled.
func (c *Config) Reconnects() bool {
	return util.DerefOr(c.AutoReconnect, true)
}

// hubLoginURL builds {base/}{hubID}/login with exactly one slash before the id.
func (c *Config) hubLoginURL(hubID string) string {
	base := c.HubLoginBaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(hubID) + "/login"
}
