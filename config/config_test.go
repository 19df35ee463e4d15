package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

type streamSection struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Stream        streamSection `mapstructure:"stream"`
}

func TestResolver_ExplicitPathsWin(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	got := r.ResolveFiles("sselisten", LoaderConfig{ConfigFile: "/etc/x.yml", EnvFile: "/etc/x.env"})
	if got.ConfigFile != "/etc/x.yml" || got.EnvFile != "/etc/x.env" {
		t.Errorf("expected explicit paths, got %+v", got)
	}
}

func TestResolver_SearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config.yml":               true,
		"./cmd/sselisten/config.yml": true,
		"./.env":                     true,
	}}
	r := &Resolver{FileSystem: fs}
	got := r.ResolveFiles("sselisten", LoaderConfig{})
	if got.ConfigFile != "./cmd/sselisten/config.yml" {
		t.Errorf("expected command-local config first, got %q", got.ConfigFile)
	}
	if got.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", got.EnvFile)
	}
}

func TestResolver_NothingFound(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{}}
	got := r.ResolveFiles("sselisten", LoaderConfig{})
	if got.ConfigFile != "" || got.EnvFile != "" {
		t.Errorf("expected empty resolution, got %+v", got)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("STREAM_URL")
	want := []string{"stream_url", "stream.url"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got = generateEnvKeyVariants("SESSION_SSE_URL")
	for _, v := range []string{"session_sse_url", "session.sse.url", "session.sse_url", "session_sse.url"} {
		if !contains(got, v) {
			t.Errorf("expected variant %q in %v", v, got)
		}
	}

	if got := generateEnvKeyVariants("NAME"); !reflect.DeepEqual(got, []string{"name"}) {
		t.Errorf("expected [name], got %v", got)
	}
}

func TestLoadConfig_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yaml := "name: sselisten\nenvironment: staging\nlogging:\n  level: debug\nstream:\n  url: http://localhost/sse\n  timeout: 45s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := LoadConfig("sselisten", &cfg, WithConfigFile(path), WithEnvPrefix("SSECFGTEST")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "sselisten" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected nested logging level, got %q", cfg.Logging.Level)
	}
	if cfg.Stream.URL != "http://localhost/sse" {
		t.Errorf("expected stream url, got %q", cfg.Stream.URL)
	}
	if cfg.Stream.Timeout != 45*time.Second {
		t.Errorf("expected 45s, got %v", cfg.Stream.Timeout)
	}
}

func TestLoadConfig_EnvPrefixOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("name: from-file\nstream:\n  url: http://file/sse\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SSECFGTEST_STREAM_URL", "http://env/sse")
	t.Setenv("STREAM_URL", "http://unprefixed/sse")

	var cfg testConfig
	if err := LoadConfig("sselisten", &cfg, WithConfigFile(path), WithEnvPrefix("SSECFGTEST_")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Stream.URL != "http://env/sse" {
		t.Errorf("expected prefixed env to win, got %q", cfg.Stream.URL)
	}
	if cfg.Name != "from-file" {
		t.Errorf("expected file value to survive, got %q", cfg.Name)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SSECFGENV_NAME=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SSECFGENV_NAME") })

	var cfg testConfig
	if err := LoadConfig("sselisten", &cfg, WithEnvFile(envPath), WithEnvPrefix("SSECFGENV"),
		WithFileSystem(&RealFileSystem{})); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "from-dotenv" {
		t.Errorf("expected value from .env, got %q", cfg.Name)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("name: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var cfg testConfig
	if err := LoadConfig("sselisten", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestServiceConfig_DefaultsAndValidate(t *testing.T) {
	c := ServiceConfig{Name: "sselisten", Debug: true}
	c.ApplyDefaults()
	if c.Environment != "development" {
		t.Errorf("expected development, got %q", c.Environment)
	}
	if c.Logging.Level != "debug" {
		t.Errorf("expected debug level when Debug is set, got %q", c.Logging.Level)
	}
	if c.Logging.ServiceName != "sselisten" {
		t.Errorf("expected service name propagated, got %q", c.Logging.ServiceName)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	bad := ServiceConfig{Name: "x", Environment: "qa"}
	bad.ApplyDefaults()
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid environment error")
	}
	missing := ServiceConfig{}
	missing.ApplyDefaults()
	if err := missing.Validate(); err == nil {
		t.Error("expected missing name error")
	}
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
