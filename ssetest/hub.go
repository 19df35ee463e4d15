package ssetest

import (
	"path/filepath"
	"sync"

	"github.com/kbukum/sseclient/logger"
)

// Client metadata keys.
const (
	MetaAccessToken = "access_token"
	MetaSubject     = "subject"
	MetaProjectName = "project_name"
)

const clientBuffer = 256

// Frame is one unit written to a stream. A comment frame is written as
// ": data"; anything else as an event with optional id and event name.
type Frame struct {
	ID      string
	Event   string
	Data    []byte
	Comment bool
}

// Client is one open stream.
type Client struct {
	id       string
	metadata map[string]string
	frames   chan Frame
	log      *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		c.metadata[key] = value
	}
}

// NewClient creates a client with optional metadata.
func NewClient(id string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		id:       id,
		metadata: make(map[string]string),
		frames:   make(chan Frame, clientBuffer),
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Metadata returns a metadata value, or "".
func (c *Client) Metadata(key string) string { return c.metadata[key] }

// Frames returns the channel the stream handler drains.
func (c *Client) Frames() <-chan Frame { return c.frames }

// Send queues f. It returns false if the client is too slow to keep up.
func (c *Client) Send(f Frame) bool {
	select {
	case c.frames <- f:
		return true
	default:
		c.log.Warn("client buffer full, dropping frame", logger.Fields(logger.FieldClientID, c.id))
		return false
	}
}

func (c *Client) close() { close(c.frames) }

// Message is a frame addressed to the clients whose ID matches Pattern
// (glob syntax, empty matches all) and, when set, Match.
type Message struct {
	Pattern string
	Match   func(*Client) bool
	// Frame is skipped when nil.
	Frame *Frame
	// Disconnect ends the matched streams after Frame is queued.
	Disconnect bool
}

// Hub tracks open streams and fans messages out to them. All mutation
// happens on the Run goroutine.
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

// NewHub creates a hub. Run must be started before clients register.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, clientBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields(logger.FieldClientID, c.id, "total_clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				c.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields(logger.FieldClientID, c.id, "total_clients", n))

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop closes every stream and makes Run return. Safe to call twice.
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
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
	h.log.Debug("all clients closed during shutdown")
}

// Register adds c. It returns false if the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its frame channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues msg for the Run loop. Messages are applied in order.
func (h *Hub) Publish(msg *Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) deliver(msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	matched := 0
	for id, c := range h.clients {
		if msg.Pattern != "" {
			ok, err := filepath.Match(msg.Pattern, id)
			if err != nil {
				h.log.Error("pattern match error", logger.MergeWithError(logger.Fields("pattern", msg.Pattern), err))
				return
			}
			if !ok {
				continue
			}
		}
		if msg.Match != nil && !msg.Match(c) {
			continue
		}
		matched++
		if msg.Frame != nil {
			c.Send(*msg.Frame)
		}
		if msg.Disconnect {
			delete(h.clients, id)
			c.close()
		}
	}
	h.log.Debug("message delivered", logger.Fields(
		"pattern", msg.Pattern, "match_count", matched, "disconnect", msg.Disconnect))
}

// ClientCount returns the number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ClientIDs returns the IDs of all open streams.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// Client returns a client by ID, or nil.
func (h *Hub) Client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}
