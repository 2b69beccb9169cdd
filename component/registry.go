package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
)

// DefaultStopTimeout bounds the Stop call of each component.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse order.
type Registry struct {
	entries     []*entry
	lookup      map[string]*entry
	stopTimeout time.Duration
	log         *logger.Logger
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup:      make(map[string]*entry),
		stopTimeout: DefaultStopTimeout,
		log:         logger.Get("component"),
	}
}

// SetStopTimeout changes the per-component stop deadline.
func (r *Registry) SetStopTimeout(d time.Duration) {
	r.mu.Lock()
	r.stopTimeout = d
	r.mu.Unlock()
}

// Register adds c. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if name == "" {
		return errors.MissingField("name")
	}
	if _, exists := r.lookup[name]; exists {
		return errors.InvalidInput("name", fmt.Sprintf("component %s already registered", name))
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("component registered", logger.Fields("name", name))
	return nil
}

// StartAll starts every component in registration order. Components already
// started are skipped; on failure the ones started so far stay running and
// StopAll stops them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields("name", name, logger.FieldError, err.Error()))
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields("name", name))
	}
	return nil
}

// StopAll stops every started component in reverse registration order and
// returns the first stop error. All components are stopped regardless.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := e.component.Stop(stopCtx)
		cancel()
		e.started = false

		if err != nil {
			r.log.Error("component stop failed", logger.Fields("name", name, logger.FieldError, err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("stop %s: %w", name, err)
			}
			continue
		}
		r.log.Debug("component stopped", logger.Fields("name", name))
	}
	return firstErr
}

// HealthAll reports the health of every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []observability.Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]observability.Health, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, healthOf(ctx, e.component, e.started))
	}
	return out
}

// CheckHealth folds HealthAll into one report so the registry itself can be
// handed to observability.CheckAll.
func (r *Registry) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "components", Status: observability.HealthStatusUp}
	for _, ch := range r.HealthAll(ctx) {
		if ch.Status == observability.HealthStatusUp {
			continue
		}
		if h.Details == nil {
			h.Details = make(map[string]string)
		}
		h.Details[ch.Name] = string(ch.Status)
		if ch.Status == observability.HealthStatusDown || h.Status == observability.HealthStatusUp {
			h.Status = ch.Status
		}
	}
	return h
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.component.Name())
	}
	return names
}
