package component

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/sseclient/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

type describedComponent struct{ mockComponent }

func (d *describedComponent) Describe() Description {
	return Description{Type: "sse-session", Details: "https://api.example.com/sse"}
}

func newTestRegistry() *Registry {
	return NewRegistry(logger.NewNop())
}

func TestRegisterAndGet(t *testing.T) {
	r := newTestRegistry()
	c := &describedComponent{mockComponent{name: "session"}}
	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if r.Get("session") != c {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
	if err := r.Register(&mockComponent{name: "session"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestNewRegistry_NilLogger(t *testing.T) {
	if NewRegistry(nil).log == nil {
		t.Error("expected a fallback logger")
	}
}

func TestStartAll_Order(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	_ = r.Register(&mockComponent{name: "telemetry", startOrder: &order})
	_ = r.Register(&mockComponent{name: "session", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "telemetry" || order[1] != "session" {
		t.Errorf("expected start order [telemetry session], got %v", order)
	}
}

func TestStartAll_ErrorStopsSequence(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	_ = r.Register(&mockComponent{name: "telemetry", startOrder: &order, stopOrder: &order})
	_ = r.Register(&mockComponent{name: "session", startErr: fmt.Errorf("AUTH_REQUIRED"), startOrder: &order})
	_ = r.Register(&mockComponent{name: "after", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	if len(order) != 2 {
		t.Errorf("expected start to halt at the failing component, got %v", order)
	}

	order = order[:0]
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 1 || order[0] != "telemetry" {
		t.Errorf("expected only the started component to stop, got %v", order)
	}
}

func TestStopAll_ReverseOrder(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	for _, n := range []string{"telemetry", "session", "printer"} {
		_ = r.Register(&mockComponent{name: n, stopOrder: &order})
	}
	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 3 || order[0] != "printer" || order[2] != "telemetry" {
		t.Errorf("expected reverse stop order, got %v", order)
	}

	order = order[:0]
	_ = r.StopAll(context.Background())
	if len(order) != 0 {
		t.Errorf("expected second StopAll to be a no-op, got %v", order)
	}
}

func TestStopAll_Errors(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "session", stopErr: fmt.Errorf("stop failed")})
	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "session", health: Health{Name: "session", Status: StatusHealthy, Message: "open"}})
	_ = r.Register(&mockComponent{name: "telemetry", health: Health{Name: "telemetry", Status: StatusDegraded}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusDegraded {
		t.Errorf("unexpected health %+v", results)
	}
}
