package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/sseclient/config"
	"github.com/kbukum/sseclient/password"
	"github.com/kbukum/sseclient/ssetest"
	"github.com/kbukum/sseclient/validation"
	"github.com/kbukum/sseclient/version"
)

const serviceName = "ssemock"

// MockConfig is the ssemock configuration.
type MockConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Addr         string          `yaml:"addr" mapstructure:"addr" validate:"required"`
	PingInterval time.Duration   `yaml:"ping_interval" mapstructure:"ping_interval" validate:"gt=0"`
	NoPing       bool            `yaml:"no_ping" mapstructure:"no_ping"`
	TokenTTL     time.Duration   `yaml:"token_ttl" mapstructure:"token_ttl" validate:"gt=0"`
	SigningKey   string          `yaml:"signing_key" mapstructure:"signing_key"`
	Anonymous    bool            `yaml:"anonymous" mapstructure:"anonymous"`
	Hash         password.Config `yaml:"hash" mapstructure:"hash"`
	Users        []UserConfig    `yaml:"users" mapstructure:"users" validate:"dive"`
	Hubs         []HubConfig     `yaml:"hubs" mapstructure:"hubs" validate:"dive"`
}

// UserConfig is one account accepted by the login endpoint.
type UserConfig struct {
	Email    string `yaml:"email" mapstructure:"email" validate:"required,email"`
	Password string `yaml:"password" mapstructure:"password" validate:"required"`
	// Unverified accounts are refused with LOGIN_FAILED_EMAIL_NOT_VERIFIED.
	Unverified bool `yaml:"unverified" mapstructure:"unverified"`
}

// HubConfig is one hub credential accepted by the hub login endpoint.
type HubConfig struct {
	ID    string `yaml:"id" mapstructure:"id" validate:"required"`
	Token string `yaml:"token" mapstructure:"token" validate:"required"`
}

// ApplyDefaults fills the command name, version and server defaults.
func (c *MockConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8088"
	}
	if c.PingInterval <= 0 {
		c.PingInterval = ssetest.DefaultPingInterval
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = ssetest.DefaultTokenTTL
	}
	c.ServiceConfig.ApplyDefaults()
	c.Hash.ApplyDefaults()
}

// Validate checks the configuration.
func (c *MockConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Hash.Validate(); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	return nil
}

// serverOptions maps the configuration onto ssetest options.
func (c *MockConfig) serverOptions() ([]ssetest.Option, error) {
	hasher, err := password.NewHasher(c.Hash)
	if err != nil {
		return nil, err
	}
	ping := c.PingInterval
	if c.NoPing {
		ping = 0
	}
	opts := []ssetest.Option{
		ssetest.WithHasher(hasher),
		ssetest.WithPingInterval(ping),
		ssetest.WithTokenTTL(c.TokenTTL),
	}
	if c.SigningKey != "" {
		opts = append(opts, ssetest.WithSigningKey([]byte(c.SigningKey)))
	}
	if c.Anonymous {
		opts = append(opts, ssetest.WithAnonymousStreams())
	}
	return opts, nil
}

// seed installs the configured accounts.
func (c *MockConfig) seed(srv *ssetest.Server) error {
	for _, u := range c.Users {
		if err := srv.AddUser(u.Email, u.Password, !u.Unverified); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	for _, h := range c.Hubs {
		srv.AddHub(h.ID, h.Token)
	}
	return nil
}

// parseUser reads an "email:password" flag value.
func parseUser(v string) (UserConfig, error) {
	email, pass, ok := strings.Cut(v, ":")
	if !ok || email == "" || pass == "" {
		return UserConfig{}, fmt.Errorf("invalid user %q, want email:password", v)
	}
	return UserConfig{Email: email, Password: pass}, nil
}

// parseHub reads an "id:token" flag value.
func parseHub(v string) (HubConfig, error) {
	id, token, ok := strings.Cut(v, ":")
	if !ok || id == "" || token == "" {
		return HubConfig{}, fmt.Errorf("invalid hub %q, want id:token", v)
	}
	return HubConfig{ID: id, Token: token}, nil
}
