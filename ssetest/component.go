package ssetest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/sseclient/component"
	"github.com/kbukum/sseclient/logger"
)

const shutdownTimeout = 5 * time.Second

// Component serves a Server on a TCP address under a component.Registry.
type Component struct {
	srv  *Server
	addr string
	log  *logger.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps srv. Start binds addr.
func NewComponent(srv *Server, addr string) *Component {
	return &Component{srv: srv, addr: addr, log: srv.log}
}

// Server returns the wrapped Server.
func (c *Component) Server() *Server { return c.srv }

// Addr returns the bound address once started, else the configured one.
func (c *Component) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener != nil {
		return c.listener.Addr().String()
	}
	return c.addr
}

// Name returns the component name.
func (c *Component) Name() string { return "ssetest" }

// Start binds the address and serves in the background. It returns once
// the port is ready.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("ssetest: failed to bind %s: %w", c.addr, err)
	}
	c.listener = ln
	c.srv.URL = "http://" + ln.Addr().String()
	c.httpServer = &http.Server{
		Handler:           c.srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := c.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.log.Error("server error", logger.MergeWithError(nil, err))
		}
	}()
	c.log.Info("fake backend listening", logger.Fields(logger.FieldURL, c.srv.URL))
	return nil
}

// Stop ends every stream and shuts the listener down.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.srv.Close()
	if c.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := c.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ssetest: shutdown: %w", err)
	}
	return nil
}

// Health reports the hub's client count.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.srv.ClientCount()),
	}
	if c.srv.closed.Load() {
		h.Status = component.StatusUnhealthy
		h.Message = "closed"
	}
	return h
}

// Describe returns a one-line summary for startup output.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Fake SSE backend",
		Type:    "ssetest",
		Details: fmt.Sprintf("login %s, hubs %s/:id/login, stream %s", LoginPath, HubsPath, StreamPath),
	}
}
