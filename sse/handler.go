package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/edlflash/logger"
)

// KeepAliveInterval is how often an idle connection gets a comment line.
var KeepAliveInterval = 30 * time.Second

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ServeSSE streams hub events to one HTTP client until the request ends or
// the hub stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ClientOption) {
	log := logger.Get("sse").WithFields(logger.Fields("client_id", clientID))

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.Fields(logger.FieldError, err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, opts...)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: clientID, Metadata: client.Metadata()})
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventTypeConnected, connected)
	flusher.Flush()
	log.Debug("client connected", logger.Fields("remote_addr", r.RemoteAddr))

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("reason", ctx.Err().Error()))
			return

		case event, ok := <-client.Events():
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": %s %d\n\n", EventTypeKeepAlive, time.Now().Unix())
			flusher.Flush()
		}
	}
}
