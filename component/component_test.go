package component

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/cassandrastore/logger"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	desc       *Description
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

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description { return *d.desc }

func newRegistry() *Registry { return NewRegistry(logger.Nop()) }

func TestRegisterDuplicate(t *testing.T) {
	r := newRegistry()
	if err := r.Register(&mockComponent{name: "cassandra"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "cassandra"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "cassandra"})

	got := r.Get("cassandra")
	if got == nil || got.Name() != "cassandra" {
		t.Fatalf("expected registered component, got %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAllOrder(t *testing.T) {
	r := newRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "cassandra", startOrder: &order})
	r.Register(&mockComponent{name: "telemetry", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "cassandra" || order[1] != "telemetry" {
		t.Errorf("expected start order [cassandra telemetry], got %v", order)
	}

	// already started components are not started again
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll failed: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("expected no restarts, got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "cassandra", startErr: fmt.Errorf("no hosts available")})
	if err := r.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := newRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "a", stopOrder: &order})
	r.Register(&mockComponent{name: "b", stopOrder: &order})
	r.Register(&mockComponent{name: "c", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 3 || order[0] != "c" || order[1] != "b" || order[2] != "a" {
		t.Errorf("expected reverse stop order [c b a], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := newRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "cassandra", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "cassandra", stopErr: fmt.Errorf("stop failed")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "cassandra", health: Health{Name: "cassandra", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "otel", health: Health{Name: "otel", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected cassandra healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected otel unhealthy, got %s", results[1].Status)
	}
}

func TestDescribe(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{mockComponent{name: "cassandra", desc: &Description{Type: "database", Details: "127.0.0.1:9042"}}})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "cassandra" {
		t.Errorf("expected name to default to component name, got %q", descs[0].Name)
	}
	if descs[0].Type != "database" {
		t.Errorf("expected type database, got %q", descs[0].Type)
	}
}

func TestHealthOK(t *testing.T) {
	tests := []struct {
		status HealthStatus
		want   bool
	}{
		{StatusHealthy, true},
		{StatusDegraded, true},
		{StatusUnhealthy, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (Health{Status: tt.status}).OK(); got != tt.want {
			t.Errorf("Health{%q}.OK() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
