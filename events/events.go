package events

import (
	"sync"
	"time"

	"github.com/kbukum/edlflash/logger"
)

// Event names understood by the front end.
const (
	// NameLog carries one line of operator-facing text.
	NameLog = "log_event"
	// NameProgress signals that a tool produced more output.
	NameProgress = "update_working_percentage"
)

// ProgressPlaceholder is the payload of every progress event. Tools do not
// report a percentage, so the front end only uses the event as a heartbeat.
const ProgressPlaceholder = "0"

// Event is one notification sent towards the presentation layer.
type Event struct {
	Name    string    `json:"event"`
	Payload string    `json:"payload"`
	Time    time.Time `json:"time"`
}

// Emitter delivers events. Emit is fire-and-forget: it must not block the
// caller for long and has no way to report delivery failure.
type Emitter interface {
	Emit(name, payload string)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(name, payload string)

// Emit calls f(name, payload).
func (f EmitterFunc) Emit(name, payload string) { f(name, payload) }

// Nop discards every event.
var Nop Emitter = EmitterFunc(func(string, string) {})

// Log emits text as a log event.
func Log(e Emitter, text string) {
	e.Emit(NameLog, text)
}

// Progress emits the progress placeholder.
func Progress(e Emitter) {
	e.Emit(NameProgress, ProgressPlaceholder)
}

// LogEmitter writes events as log records: log events at info level,
// everything else at debug.
type LogEmitter struct {
	log *logger.Logger
}

// NewLogEmitter creates a LogEmitter writing to log.
func NewLogEmitter(log *logger.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

// Emit implements Emitter.
func (l *LogEmitter) Emit(name, payload string) {
	if name == NameLog {
		l.log.Info(payload)
		return
	}
	l.log.Debug("event", logger.Fields("event", name, "payload", payload))
}

// Multi fans each event out to every emitter in order.
func Multi(emitters ...Emitter) Emitter {
	return EmitterFunc(func(name, payload string) {
		for _, e := range emitters {
			if e != nil {
				e.Emit(name, payload)
			}
		}
	})
}

// Recorder keeps every event it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Emitter.
func (r *Recorder) Emit(name, payload string) {
	r.mu.Lock()
	r.events = append(r.events, Event{Name: name, Payload: payload, Time: time.Now()})
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Payloads returns the payloads of every recorded event with the given name.
func (r *Recorder) Payloads(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e.Payload)
		}
	}
	return out
}

// Count returns how many events with the given name were recorded.
func (r *Recorder) Count(name string) int {
	return len(r.Payloads(name))
}

// Reset discards the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
