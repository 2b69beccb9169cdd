package component

import (
	"context"

	"github.com/kbukum/edlflash/observability"
)

// Component is a piece of edlflash with a start/stop lifecycle, such as the
// event hub, the HTTP server or the telemetry exporters.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start brings the component up. It must not block.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error
}

// Func adapts a pair of functions to Component. Either may be nil.
type Func struct {
	ComponentName string
	OnStart       func(ctx context.Context) error
	OnStop        func(ctx context.Context) error
}

// Name returns ComponentName.
func (f *Func) Name() string { return f.ComponentName }

// Start calls OnStart.
func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

// Stop calls OnStop.
func (f *Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}

// healthOf returns the component's own health report, or a plain "up"
// report for components that do not implement observability.HealthChecker.
func healthOf(ctx context.Context, c Component, started bool) observability.Health {
	if !started {
		return observability.Health{Name: c.Name(), Status: observability.HealthStatusDown, Message: "not started"}
	}
	if hc, ok := c.(observability.HealthChecker); ok {
		return hc.CheckHealth(ctx)
	}
	return observability.Health{Name: c.Name(), Status: observability.HealthStatusUp}
}
