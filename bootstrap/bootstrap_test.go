package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/sseclient/component"
	"github.com/kbukum/sseclient/config"
	"github.com/kbukum/sseclient/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	*m.events = append(*m.events, "start:"+m.name)
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	*m.events = append(*m.events, "stop:"+m.name)
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	if m.health.Name == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func newTestConfig(name string) *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{Name: name, Version: "1.0.0"}}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(newTestConfig("sselisten"), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "sselisten" || app.Version != "1.0.0" {
		t.Errorf("unexpected name/version %q %q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil {
		t.Fatal("expected registry and logger")
	}
	// Defaults were applied to the typed config.
	if app.Cfg.Environment != "development" {
		t.Errorf("expected default environment, got %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.NewNop()))
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestNewAppInitsLogger(t *testing.T) {
	cfg := newTestConfig("ssemock")
	cfg.Logging.Output = "discard"
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Logger != logger.GetGlobalLogger() {
		t.Error("expected the global logger initialized from config")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, err := NewApp(newTestConfig("x"), WithLogger(logger.NewNop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %v", app.gracefulTimeout)
	}
}

func TestRun_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "backend", events: &events})
	_ = app.RegisterComponent(&mockComponent{name: "session", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); cancel(); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "start:backend,start:session,onStart,onReady,onStop,stop:session,stop:backend"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("unexpected lifecycle order:\n got %s\nwant %s", got, want)
	}
}

func TestRun_StartFailureStopsStarted(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "backend", events: &events})
	_ = app.RegisterComponent(&mockComponent{name: "session", startErr: fmt.Errorf("no token"), events: &events})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no token") {
		t.Fatalf("expected start error, got %v", err)
	}
	want := "start:backend,start:session,stop:backend"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRun_HookFailure(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "session", events: &events})
	app.OnStart(func(context.Context) error { return fmt.Errorf("boom") })

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Fatalf("expected hook error, got %v", err)
	}
	if events[len(events)-1] != "stop:session" {
		t.Errorf("expected session stopped after hook failure, got %v", events)
	}
}

func TestShutdown_StopError(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "session", stopErr: fmt.Errorf("stuck"), events: &events})
	if err := app.Components.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := app.Shutdown(context.Background()); err == nil {
		t.Error("expected stop error to surface")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "ok", events: &events})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected ready, got %v", err)
	}

	_ = app.RegisterComponent(&mockComponent{
		name:   "session",
		events: &events,
		health: component.Health{Name: "session", Status: component.StatusDegraded, Message: "reconnecting"},
	})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "session=degraded(reconnecting)") {
		t.Errorf("expected degraded session in error, got %v", err)
	}
}
