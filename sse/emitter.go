package sse

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/kbukum/edlflash/events"
	"github.com/kbukum/edlflash/logger"
)

// Emitter publishes tool events to every SSE client of a hub. Emit never
// blocks: when the hub queue is full the event is dropped and counted.
type Emitter struct {
	hub     Broadcaster
	pattern string
	dropped atomic.Int64
	now     func() time.Time
}

var _ events.Emitter = (*Emitter)(nil)

// NewEmitter creates an Emitter broadcasting to all clients of hub.
func NewEmitter(hub Broadcaster) *Emitter {
	return &Emitter{hub: hub, pattern: PatternAll, now: time.Now}
}

// Emit implements events.Emitter.
func (e *Emitter) Emit(name, payload string) {
	data, err := json.Marshal(events.Event{Name: name, Payload: payload, Time: e.now()})
	if err != nil {
		return
	}
	if !e.hub.TryBroadcastToPattern(e.pattern, data) {
		n := e.dropped.Add(1)
		logger.Get("sse").Debug("event queue full, dropping event", logger.Fields("event", name, "dropped_total", n))
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (e *Emitter) Dropped() int64 {
	return e.dropped.Load()
}
