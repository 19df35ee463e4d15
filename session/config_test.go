package session

import (
	"testing"
	"time"

	"github.com/kbukum/sseclient/errors"
	"github.com/kbukum/sseclient/password"
	"github.com/kbukum/sseclient/security"
	"github.com/kbukum/sseclient/util"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	c := Config{SSEURL: "http://x/sse"}
	c.ApplyDefaults()

	if c.ProjectName != DefaultProjectName {
		t.Errorf("expected %q, got %q", DefaultProjectName, c.ProjectName)
	}
	if c.HeartbeatTimeout != 40*time.Second || c.LivenessPollInterval != time.Second ||
		c.ReconnectDelay != 2*time.Second || c.LoginTimeout != 30*time.Second {
		t.Errorf("unexpected durations %+v", c)
	}
	if c.Hash.Algorithm != password.AlgorithmSHA1 {
		t.Errorf("expected sha1 default, got %q", c.Hash.Algorithm)
	}
	if !c.Authenticated() || !c.Reconnects() {
		t.Error("expected flags on by default")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestConfig_ExplicitFalseSurvivesDefaults(t *testing.T) {
	c := Config{SSEURL: "http://x/sse", RequireAuthentication: util.Ptr(false), AutoReconnect: util.Ptr(false)}
	c.ApplyDefaults()
	if c.Authenticated() || c.Reconnects() {
		t.Error("explicit false must not be overwritten")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing sse url", Config{}},
		{"bad login url", Config{SSEURL: "http://x/sse", LoginURL: "::nope"}},
		{"bad hash", Config{SSEURL: "http://x/sse", Hash: password.Config{Algorithm: "md5"}}},
		{"cert without key", Config{SSEURL: "http://x/sse", TLS: &security.TLSConfig{CertFile: "c.pem"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	c := Config{}
	c.ApplyDefaults()
	if err := c.Validate(); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestConfig_HubLoginURL(t *testing.T) {
	tests := []struct{ base, want string }{
		{"http://api/Hubs", "http://api/Hubs/hub1/login"},
		{"http://api/Hubs/", "http://api/Hubs/hub1/login"},
	}
	for _, tc := range tests {
		c := Config{HubLoginBaseURL: tc.base}
		if got := c.hubLoginURL("hub1"); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.base, tc.want, got)
		}
	}
	c := Config{HubLoginBaseURL: "http://api/Hubs"}
	if got := c.hubLoginURL("a/b"); got != "http://api/Hubs/a%2Fb/login" {
		t.Errorf("expected escaped hub id, got %s", got)
	}
}

func TestState_String(t *testing.T) {
	if StateRefreshing.String() != "refreshing" || State(42).String() != "State(42)" {
		t.Error("unexpected state names")
	}
	if !StateReconnecting.Active() || StateStopped.Active() {
		t.Error("unexpected Active()")
	}
}
