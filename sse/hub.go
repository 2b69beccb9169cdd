package sse

import (
	"path/filepath"
	"sync"

	"github.com/kbukum/edlflash/logger"
)

const (
	clientBuffer    = 256
	broadcastBuffer = 1024
)

// Client represents a connected SSE client.
type Client struct {
	id       string
	metadata map[string]string
	events   chan []byte
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		c.metadata[key] = value
	}
}

// WithRemoteAddr records where the client connected from.
func WithRemoteAddr(addr string) ClientOption {
	return WithMetadata("remote_addr", addr)
}

// NewClient creates a new SSE client with optional metadata.
func NewClient(id string, opts ...ClientOption) *Client {
	c := &Client{
		id:       id,
		metadata: make(map[string]string),
		events:   make(chan []byte, clientBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string {
	return c.id
}

// Metadata returns all client metadata.
func (c *Client) Metadata() map[string]string {
	return c.metadata
}

// Events returns the channel for receiving events.
func (c *Client) Events() <-chan []byte {
	return c.events
}

// Send queues data for the client.
// Returns false if the channel is full (client is slow).
func (c *Client) Send(data []byte) bool {
	select {
	case c.events <- data:
		return true
	default:
		logger.Get("sse").Warn("client channel full, dropping event", logger.Fields("client_id", c.id))
		return false
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.events)
}

// Hub manages SSE client connections and message broadcasting.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
	log        *logger.Logger
}

// Message is one queued broadcast.
type Message struct {
	Pattern string
	Data    []byte
}

// NewHub creates a new SSE hub. Run must be started before clients register.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, broadcastBuffer),
		done:       make(chan struct{}),
		log:        logger.Get("sse"),
	}
}

// Run is the hub's event loop. It blocks until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", client.id, "total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", client.id, "total_clients", total))

		case msg := <-h.broadcast:
			h.broadcastWithPattern(msg.Pattern, msg.Data)
		}
	}
}

// Stop signals the hub to shut down. It closes all client connections
// and causes Run to return. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
	h.log.Debug("all clients closed during shutdown")
}

// Register adds a client to the hub. It returns false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub. No-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToPattern queues data for all clients matching the pattern.
func (h *Hub) BroadcastToPattern(pattern string, data []byte) {
	select {
	case h.broadcast <- &Message{Pattern: pattern, Data: data}:
	case <-h.done:
	}
}

// TryBroadcastToPattern queues data without blocking.
func (h *Hub) TryBroadcastToPattern(pattern string, data []byte) bool {
	select {
	case h.broadcast <- &Message{Pattern: pattern, Data: data}:
		return true
	default:
		return false
	}
}

func (h *Hub) broadcastWithPattern(pattern string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matchCount := 0
	for clientID, client := range h.clients {
		matched, err := filepath.Match(pattern, clientID)
		if err != nil {
			h.log.Error("pattern match error", logger.Fields("pattern", pattern, logger.FieldError, err.Error()))
			return
		}
		if matched && client.Send(data) {
			matchCount++
		}
	}

	h.log.Debug("broadcast sent", logger.Fields(
		"pattern", pattern,
		"match_count", matchCount,
		"data_size", len(data),
	))
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetClient returns a client by ID, or nil if not found.
func (h *Hub) GetClient(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

var _ Broadcaster = (*Hub)(nil)
