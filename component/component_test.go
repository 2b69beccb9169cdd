package component

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/observability"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
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

// checkedComponent also reports its own health.
type checkedComponent struct {
	mockComponent
	health observability.Health
}

func (c *checkedComponent) CheckHealth(ctx context.Context) observability.Health { return c.health }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "sse"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	err := r.Register(&mockComponent{name: "sse"})
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for duplicate, got %v", err)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&mockComponent{})
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "sse"})

	if got := r.Get("sse"); got == nil || got.Name() != "sse" {
		t.Fatalf("Get(sse) = %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestStartStopOrder(t *testing.T) {
	r := NewRegistry()
	var started, stopped []string
	for _, name := range []string{"telemetry", "sse", "http-server"} {
		r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if fmt.Sprint(started) != "[telemetry sse http-server]" {
		t.Errorf("start order = %v", started)
	}
	if fmt.Sprint(stopped) != "[http-server sse telemetry]" {
		t.Errorf("stop order = %v", stopped)
	}
	if fmt.Sprint(r.Names()) != "[telemetry sse http-server]" {
		t.Errorf("Names() = %v", r.Names())
	}
}

func TestStartAllFailureStopsOnlyStarted(t *testing.T) {
	r := NewRegistry()
	var stopped []string
	r.Register(&mockComponent{name: "sse", stopOrder: &stopped})
	r.Register(&mockComponent{name: "http-server", startErr: fmt.Errorf("address in use"), stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected StartAll error")
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if fmt.Sprint(stopped) != "[sse]" {
		t.Errorf("stopped = %v, want [sse]", stopped)
	}
}

func TestStopAllContinuesAfterError(t *testing.T) {
	r := NewRegistry()
	var stopped []string
	r.Register(&mockComponent{name: "a", stopOrder: &stopped})
	r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("stuck"), stopOrder: &stopped})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected StopAll error")
	}
	if len(stopped) != 2 {
		t.Errorf("stopped = %v, want both", stopped)
	}
}

func TestStopTimeout(t *testing.T) {
	r := NewRegistry()
	r.SetStopTimeout(20 * time.Millisecond)
	r.Register(&Func{
		ComponentName: "slow",
		OnStop: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	r.StartAll(context.Background())

	start := time.Now()
	if err := r.StopAll(context.Background()); err == nil {
		t.Fatal("expected deadline error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("StopAll took %v", time.Since(start))
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&checkedComponent{
		mockComponent: mockComponent{name: "device"},
		health:        observability.Health{Name: "device", Status: observability.HealthStatusDegraded},
	})

	before := r.HealthAll(context.Background())
	if before[0].Status != observability.HealthStatusDown {
		t.Errorf("unstarted component status = %s, want down", before[0].Status)
	}

	r.StartAll(context.Background())
	after := r.HealthAll(context.Background())
	if len(after) != 2 {
		t.Fatalf("expected 2 results, got %d", len(after))
	}
	if after[0].Status != observability.HealthStatusUp {
		t.Errorf("plain status = %s, want up", after[0].Status)
	}
	if after[1].Status != observability.HealthStatusDegraded {
		t.Errorf("device status = %s, want degraded", after[1].Status)
	}

	folded := r.CheckHealth(context.Background())
	if folded.Status != observability.HealthStatusDegraded {
		t.Errorf("folded status = %s, want degraded", folded.Status)
	}
	if folded.Details["device"] != "degraded" {
		t.Errorf("details = %v", folded.Details)
	}
}

func TestFuncNilHooks(t *testing.T) {
	f := &Func{ComponentName: "noop"}
	if err := f.Start(context.Background()); err != nil {
		t.Errorf("Start: %v", err)
	}
	if err := f.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
