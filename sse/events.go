package sse

// SSE event types written by the handler itself. Tool events travel as
// data frames whose JSON body names the event.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive is used for keep-alive comments.
	EventTypeKeepAlive = "keepalive"
)

// PatternAll matches every connected client.
const PatternAll = "*"
