package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/edlflash/component"
	"github.com/kbukum/edlflash/config"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
)

// testConfig is a minimal config satisfying the Config interface.
type testConfig struct {
	config.ServiceConfig
	invalid bool
}

func (c *testConfig) Validate() error {
	if c.invalid {
		return fmt.Errorf("invalid")
	}
	return nil
}

// mockComponent implements component.Component and observability.HealthChecker.
type mockComponent struct {
	name     string
	startErr error
	status   observability.HealthStatus
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return nil
}
func (m *mockComponent) CheckHealth(ctx context.Context) observability.Health {
	status := m.status
	if status == "" {
		status = observability.HealthStatusUp
	}
	return observability.Health{Name: m.name, Status: status}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "edlflash", Version: "1.0.0", Environment: "development"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithoutSignals()}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "edlflash" || app.Version != "1.0.0" || app.Environment != "development" {
		t.Errorf("identity = %q %q %q", app.Name, app.Version, app.Environment)
	}
	if app.Components == nil || app.Logger == nil {
		t.Fatal("expected registry and logger")
	}
	if app.gracefulTimeout != DefaultGracefulTimeout {
		t.Errorf("gracefulTimeout = %v", app.gracefulTimeout)
	}
}

func TestNewAppAppliesDefaults(t *testing.T) {
	cfg := &testConfig{}
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Name != config.DefaultServiceName {
		t.Errorf("Name = %q, want default", app.Name)
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(&testConfig{invalid: true}, WithLogger(logger.Nop()))
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(time.Second))
	if app.gracefulTimeout != time.Second {
		t.Errorf("gracefulTimeout = %v", app.gracefulTimeout)
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "sse"}
	if err := app.RegisterComponent(c); err != nil {
		t.Fatal(err)
	}

	var order []string
	hook := func(name string) Hook {
		return func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	app.OnStart(hook("start"))
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		if !c.started {
			t.Error("configure ran before components started")
		}
		order = append(order, "configure")
		return nil
	})
	app.OnReady(hook("ready"))
	app.OnStop(hook("stop"))

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if fmt.Sprint(order) != "[start configure ready task stop]" {
		t.Errorf("order = %v", order)
	}
	if !c.stopped {
		t.Error("component not stopped")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return fmt.Errorf("task error")
	})
	if err == nil || err.Error() != "task error" {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStartupFailureStopsStartedComponents(t *testing.T) {
	app := newTestApp(t)
	first := &mockComponent{name: "sse"}
	second := &mockComponent{name: "http-server", startErr: fmt.Errorf("address in use")}
	app.RegisterComponent(first)
	app.RegisterComponent(second)

	ran := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "address in use") {
		t.Fatalf("expected start error, got %v", err)
	}
	if ran {
		t.Error("task ran after failed startup")
	}
	if !first.stopped {
		t.Error("started component was not stopped")
	}
	if second.stopped {
		t.Error("failed component should not be stopped")
	}
}

func TestHookErrorAbortsStartup(t *testing.T) {
	app := newTestApp(t)
	app.OnStart(func(ctx context.Context) error { return fmt.Errorf("boom") })
	err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "onStart") {
		t.Errorf("expected onStart error, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "sse"})
	app.RegisterComponent(&mockComponent{name: "device", status: observability.HealthStatusDegraded})
	app.Components.StartAll(context.Background())

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "device=degraded") {
		t.Errorf("ReadyCheck = %v", err)
	}
}

func TestRunUntilContextDone(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "sse"}
	app.RegisterComponent(c)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !c.started || !c.stopped {
		t.Errorf("started=%v stopped=%v", c.started, c.stopped)
	}
}

var _ component.Component = (*mockComponent)(nil)
