package session

import (
	"context"
	"fmt"

	"github.com/kbukum/sseclient/component"
)

// Authenticator obtains a token before the stream starts, typically by
// calling Login or HubLogin.
type Authenticator func(ctx context.Context, s *Session) error

// Component runs a Session under a component.Registry.
type Component struct {
	name     string
	session  *Session
	callback Callback
	auth     Authenticator
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps s. auth may be nil when a token is already installed
// or authentication is not required.
func NewComponent(name string, s *Session, cb Callback, auth Authenticator) *Component {
	if name == "" {
		name = "sse-session"
	}
	return &Component{name: name, session: s, callback: cb, auth: auth}
}

// Name returns the registration name.
func (c *Component) Name() string { return c.name }

// Session returns the wrapped session.
func (c *Component) Session() *Session { return c.session }

// Start authenticates, then starts the stream and waits for the first open.
func (c *Component) Start(ctx context.Context) error {
	if c.auth != nil {
		if err := c.auth(ctx, c.session); err != nil {
			return fmt.Errorf("%s: authenticate: %w", c.name, err)
		}
	}
	return c.session.Start(ctx, c.callback)
}

// Stop stops the session and waits for queued events to be delivered or
// ctx to end.
func (c *Component) Stop(ctx context.Context) error {
	c.session.Stop()
	done := make(chan struct{})
	go func() {
		c.session.Flush()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health maps the session state onto component health.
func (c *Component) Health(_ context.Context) component.Health {
	state := c.session.State()
	h := component.Health{Name: c.name, Message: state.String()}
	switch state {
	case StateOpen:
		h.Status = component.StatusHealthy
	case StateConnecting, StateReconnecting, StateRefreshing:
		h.Status = component.StatusDegraded
	default:
		h.Status = component.StatusUnhealthy
	}
	return h
}

// Describe reports the stream URL and client identifier.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.name,
		Type:    "sse-session",
		Details: fmt.Sprintf("%s (client %s)", c.session.cfg.SSEURL, c.session.clientID),
	}
}
