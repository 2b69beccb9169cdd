package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/edlflash/observability"
)

// Component owns a Hub and the goroutine running it.
type Component struct {
	hub     *Hub
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

var _ observability.HealthChecker = (*Component)(nil)

// NewComponent creates a new SSE component with a fresh Hub.
func NewComponent() *Component {
	return &Component{hub: NewHub()}
}

// Hub returns the underlying Hub.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start launches the Hub's event loop in a background goroutine.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop signals the Hub to shut down and waits for Run to return.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hub.Stop()
	c.wg.Wait()
	return nil
}

// CheckHealth reports the number of connected clients.
func (c *Component) CheckHealth(_ context.Context) observability.Health {
	return observability.Health{
		Name:    c.Name(),
		Status:  observability.HealthStatusUp,
		Message: fmt.Sprintf("%d clients connected", c.hub.GetClientCount()),
	}
}
