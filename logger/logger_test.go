package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "discard",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", "test").WithComponent("sse-session")

	l.Info("stream opened", Fields(FieldURL, "http://x/sse", FieldGeneration, 3))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "stream opened" {
		t.Errorf("expected message 'stream opened', got %v", line["message"])
	}
	if line[FieldComponent] != "sse-session" {
		t.Errorf("expected component field, got %v", line[FieldComponent])
	}
	if line[FieldURL] != "http://x/sse" {
		t.Errorf("expected url field, got %v", line[FieldURL])
	}
	if line["level"] != "info" {
		t.Errorf("expected level info, got %v", line["level"])
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "test")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	// Must not panic.
	l.Error("discarded", Fields("k", "v"))
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("handler")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", "test").WithError(os.ErrClosed)
	l.Error("boom")
	if !strings.Contains(buf.String(), os.ErrClosed.Error()) {
		t.Errorf("expected error text in log line, got %q", buf.String())
	}
}

func TestInit(t *testing.T) {
	Init(&Config{Level: "info", Format: "console", Output: "discard", ServiceName: "sselisten"})
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "sselisten" {
		t.Errorf("expected service from config, got %q", gl.service)
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	got := GetGlobalLogger()
	if got != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"valid discard", Config{Level: "debug", Format: "json", Output: "discard"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLevelTag(t *testing.T) {
	if got := levelTag("info", true); got != "[INF]" {
		t.Errorf("expected [INF], got %q", got)
	}
	if got := levelTag("trace", true); got != "[TRACE]" {
		t.Errorf("expected [TRACE], got %q", got)
	}
	if got := levelTag("error", false); !strings.Contains(got, "[ERR]") {
		t.Errorf("expected colored [ERR], got %q", got)
	}
}

func TestRegistryGet(t *testing.T) {
	named := NewNop()
	Register("sse-test", named)
	if Get("sse-test") != named {
		t.Error("expected registered logger to be returned")
	}
	if Get("unregistered") == nil {
		t.Error("expected fallback logger for unknown name")
	}
}
