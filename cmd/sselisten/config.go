package main

import (
	"context"
	"fmt"

	"github.com/kbukum/sseclient/config"
	"github.com/kbukum/sseclient/observability"
	"github.com/kbukum/sseclient/session"
	"github.com/kbukum/sseclient/validation"
	"github.com/kbukum/sseclient/version"
)

const serviceName = "sselisten"

// ListenConfig is the sselisten configuration, loaded from sselisten.yml,
// SSE_* environment variables, and flags.
type ListenConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Session   session.Config       `yaml:"session" mapstructure:"session"`
	Auth      AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// AuthConfig selects how the session obtains its token. A hub credential
// wins over a user credential, which wins over a fixed access token.
type AuthConfig struct {
	Email        string `yaml:"email" mapstructure:"email" validate:"omitempty,email"`
	Password     string `yaml:"password" mapstructure:"password"`
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash"`
	HubID        string `yaml:"hub_id" mapstructure:"hub_id"`
	HubToken     string `yaml:"hub_token" mapstructure:"hub_token"`
	AccessToken  string `yaml:"access_token" mapstructure:"access_token"`
}

// ApplyDefaults fills the command name, version and logging output.
func (c *ListenConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	// Events go to stdout.
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Session.ApplyDefaults()
	if c.Session.ProjectName == session.DefaultProjectName {
		c.Session.ProjectName = c.Name
	}
}

// Validate checks every section.
func (c *ListenConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := validation.Validate(&c.Telemetry); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return c.Auth.Validate(&c.Session)
}

// Validate checks that the chosen credential is complete and that the
// endpoint it needs is configured.
func (a *AuthConfig) Validate(s *session.Config) error {
	if err := validation.Validate(a); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	switch {
	case a.HubID != "" || a.HubToken != "":
		if a.HubID == "" || a.HubToken == "" {
			return fmt.Errorf("auth: hub_id and hub_token must be set together")
		}
		if s.HubLoginBaseURL == "" {
			return fmt.Errorf("auth: hub login requires session.hub_login_base_url")
		}
	case a.Email != "":
		if (a.Password == "") == (a.PasswordHash == "") {
			return fmt.Errorf("auth: email requires exactly one of password or password_hash")
		}
		if s.LoginURL == "" {
			return fmt.Errorf("auth: login requires session.login_url")
		}
	case a.Password != "" || a.PasswordHash != "":
		return fmt.Errorf("auth: password given without email")
	}
	return nil
}

// Method names the credential the session will use.
func (a *AuthConfig) Method() string {
	switch {
	case a.HubID != "":
		return "hub"
	case a.Email != "" && a.PasswordHash != "":
		return "hashed"
	case a.Email != "":
		return "password"
	case a.AccessToken != "":
		return "token"
	default:
		return "none"
	}
}

// Authenticator returns the login step run before the stream starts, or
// nil when the stream needs no token.
func (a *AuthConfig) Authenticator() session.Authenticator {
	switch a.Method() {
	case "hub":
		return func(ctx context.Context, s *session.Session) error {
			return s.HubLogin(ctx, a.HubID, a.HubToken)
		}
	case "hashed":
		return func(ctx context.Context, s *session.Session) error {
			return s.LoginHashed(ctx, a.Email, a.PasswordHash)
		}
	case "password":
		return func(ctx context.Context, s *session.Session) error {
			return s.Login(ctx, a.Email, a.Password)
		}
	case "token":
		return func(_ context.Context, s *session.Session) error {
			s.SetAccessToken(a.AccessToken)
			return nil
		}
	default:
		return nil
	}
}
