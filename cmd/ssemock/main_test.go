package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/sseclient/password"
	"github.com/kbukum/sseclient/ssetest"
)

func TestParseUserAndHub(t *testing.T) {
	u, err := parseUser("ops@example.com:pa:ss")
	if err != nil || u.Email != "ops@example.com" || u.Password != "pa:ss" {
		t.Errorf("parseUser = %+v, %v", u, err)
	}
	for _, bad := range []string{"ops@example.com", ":x", "a:"} {
		if _, err := parseUser(bad); err == nil {
			t.Errorf("parseUser(%q): expected error", bad)
		}
	}
	h, err := parseHub("hub-1:secret")
	if err != nil || h.ID != "hub-1" || h.Token != "secret" {
		t.Errorf("parseHub = %+v, %v", h, err)
	}
	if _, err := parseHub("hub-1"); err == nil {
		t.Error("parseHub: expected error")
	}
}

func TestMockConfig_DefaultsAndValidate(t *testing.T) {
	cfg := &MockConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Name != serviceName || cfg.Addr != "127.0.0.1:8088" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PingInterval != ssetest.DefaultPingInterval || cfg.TokenTTL != ssetest.DefaultTokenTTL {
		t.Errorf("unexpected timing defaults %v %v", cfg.PingInterval, cfg.TokenTTL)
	}

	cfg.Users = []UserConfig{{Email: "not-an-email", Password: "x"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid user email to fail")
	}
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssemock.yml")
	body := `
addr: 127.0.0.1:9999
anonymous: true
users:
  - email: file@example.com
    password: one
    unverified: true
hubs:
  - id: hub-1
    token: t1
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	opts := &rootOptions{
		configFile: path,
		addr:       "127.0.0.1:0",
		pingSet:    true,
		users:      []string{"flag@example.com:two"},
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != "127.0.0.1:0" || !cfg.Anonymous || !cfg.NoPing {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Users) != 2 || !cfg.Users[0].Unverified || cfg.Users[1].Email != "flag@example.com" {
		t.Errorf("unexpected users %+v", cfg.Users)
	}
	if len(cfg.Hubs) != 1 || cfg.Hubs[0].ID != "hub-1" {
		t.Errorf("unexpected hubs %+v", cfg.Hubs)
	}

	if _, err := loadConfig(&rootOptions{configFile: path, hubs: []string{"broken"}}); err == nil {
		t.Error("expected bad hub flag to fail")
	}
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssemock.yml")
	if err := os.WriteFile(path, []byte("logging:\n  output: discard\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ready := make(chan *ssetest.Server, 1)
	opts := &rootOptions{
		configFile: path,
		addr:       "127.0.0.1:0",
		users:      []string{"ops@example.com:password"},
		hubs:       []string{"hub-1:secret"},
		ready:      func(s *ssetest.Server) { ready <- s },
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, opts) }()

	var srv *ssetest.Server
	select {
	case srv = <-ready:
	case err := <-done:
		t.Fatalf("run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready")
	}
	if !strings.HasPrefix(srv.URL, "http://127.0.0.1:") || strings.HasSuffix(srv.URL, ":0") {
		t.Fatalf("expected bound URL, got %q", srv.URL)
	}

	// Clients send the digest, not the password.
	hashCfg := password.Config{}
	hashCfg.ApplyDefaults()
	hasher, err := password.NewHasher(hashCfg)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := hasher.Hash("password")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := json.Marshal(map[string]string{"email": "ops@example.com", "password": hash})
	resp, err := http.Post(srv.LoginURL(), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.HubLoginBaseURL()+"/hub-1/login?token=secret", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("hub login: expected 200, got %d", resp.StatusCode)
	}
	if srv.Logins() != 2 {
		t.Errorf("expected 2 logins, got %d", srv.Logins())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return")
	}
}
