package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/sseclient/session"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListenConfig_Defaults(t *testing.T) {
	cfg := &ListenConfig{Session: session.Config{SSEURL: "http://localhost/sse"}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Name != serviceName || cfg.Version == "" {
		t.Errorf("unexpected name/version %q %q", cfg.Name, cfg.Version)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logs on stderr, got %q", cfg.Logging.Output)
	}
	if cfg.Session.ProjectName != serviceName {
		t.Errorf("expected project name from command, got %q", cfg.Session.ProjectName)
	}
	if cfg.Auth.Method() != "none" || cfg.Auth.Authenticator() != nil {
		t.Error("expected no authenticator without credentials")
	}
}

func TestListenConfig_MissingStreamURL(t *testing.T) {
	cfg := &ListenConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "session") {
		t.Errorf("expected session validation error, got %v", err)
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	full := session.Config{LoginURL: "http://x/login", HubLoginBaseURL: "http://x/hubs"}
	tests := []struct {
		name    string
		auth    AuthConfig
		sess    session.Config
		method  string
		wantErr string
	}{
		{"password", AuthConfig{Email: "a@example.com", Password: "p"}, full, "password", ""},
		{"hashed", AuthConfig{Email: "a@example.com", PasswordHash: "h"}, full, "hashed", ""},
		{"hub wins", AuthConfig{Email: "a@example.com", Password: "p", HubID: "h1", HubToken: "t"}, full, "hub", ""},
		{"token", AuthConfig{AccessToken: "tok"}, session.Config{}, "token", ""},
		{"both secrets", AuthConfig{Email: "a@example.com", Password: "p", PasswordHash: "h"}, full, "", "exactly one"},
		{"no secret", AuthConfig{Email: "a@example.com"}, full, "", "exactly one"},
		{"bad email", AuthConfig{Email: "nope", Password: "p"}, full, "", "email"},
		{"password only", AuthConfig{Password: "p"}, full, "", "without email"},
		{"hub without token", AuthConfig{HubID: "h1"}, full, "", "together"},
		{"login url missing", AuthConfig{Email: "a@example.com", Password: "p"}, session.Config{}, "", "login_url"},
		{"hub url missing", AuthConfig{HubID: "h1", HubToken: "t"}, session.Config{}, "", "hub_login_base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auth.Validate(&tt.sess)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := tt.auth.Method(); got != tt.method {
					t.Errorf("Method() = %q, want %q", got, tt.method)
				}
				if tt.auth.Authenticator() == nil {
					t.Error("expected an authenticator")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAuthenticator_Token(t *testing.T) {
	s, err := session.New(session.Config{SSEURL: "http://localhost/sse"})
	if err != nil {
		t.Fatal(err)
	}
	a := AuthConfig{AccessToken: "fixed"}
	if err := a.Authenticator()(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if s.AccessToken() != "fixed" {
		t.Errorf("expected installed token, got %q", s.AccessToken())
	}
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	path := writeFile(t, "sselisten.yml", `
environment: staging
session:
  sse_url: http://file/sse
  login_url: http://file/login
  heartbeat_timeout: 5s
auth:
  email: file@example.com
  password: secret
`)
	t.Setenv("SSE_SESSION_LOGIN_URL", "http://env/login")

	opts := &rootOptions{configFile: path, email: "flag@example.com", debug: true}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Session.SSEURL != "http://file/sse" {
		t.Errorf("file values not loaded: %+v", cfg)
	}
	if cfg.Session.HeartbeatTimeout.String() != "5s" {
		t.Errorf("expected 5s heartbeat, got %v", cfg.Session.HeartbeatTimeout)
	}
	if cfg.Session.LoginURL != "http://env/login" {
		t.Errorf("expected env override, got %q", cfg.Session.LoginURL)
	}
	if cfg.Auth.Email != "flag@example.com" || cfg.Auth.Password != "secret" {
		t.Errorf("expected flag override of email only, got %+v", cfg.Auth)
	}

	cfg.ApplyDefaults()
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected --debug to raise the level, got %q", cfg.Logging.Level)
	}
}
