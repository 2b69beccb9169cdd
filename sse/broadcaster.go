package sse

// Broadcaster is an interface for broadcasting events to clients.
// This allows handlers to depend on an abstraction rather than a concrete Hub.
type Broadcaster interface {
	// BroadcastToPattern queues data for all clients whose ID matches the
	// glob pattern (e.g. "*" or "gui:*"). It blocks while the queue is full.
	BroadcastToPattern(pattern string, data []byte)
	// TryBroadcastToPattern is BroadcastToPattern without blocking. It
	// reports false when the data was dropped.
	TryBroadcastToPattern(pattern string, data []byte) bool
}
