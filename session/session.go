package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/sseclient/clock"
	"github.com/kbukum/sseclient/eventsource"
	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
	"github.com/kbukum/sseclient/password"
	"github.com/kbukum/sseclient/provider"
	"github.com/kbukum/sseclient/version"
)

// Session is a persistent, self-recovering SSE client.
//
// All mutable state is guarded by mu. Every dial bumps gen; listener and
// timer callbacks carry the generation they were created for and do nothing
// once it is superseded.
type Session struct {
	cfg      Config
	clientID string

	log       *logger.Logger
	userLogin provider.RequestResponse[userLoginInput, string]
	hubLogin  provider.RequestResponse[hubLoginInput, string]
	dialer    eventsource.Dialer
	clock     clock.Clock
	hasher    password.Hasher
	metrics   *observability.SessionMetrics
	onError   func(error)
	events    *dispatcher

	mu            sync.Mutex
	token         string
	credential    Credential
	autoReconnect bool
	state         State
	callback      Callback
	stream        eventsource.Stream
	gen           uint64
	waiters       []chan error
	heartbeat     clock.Timer
	beat          uint64
	poll          clock.Timer
	reconnect     clock.Timer
	cancelRefresh context.CancelFunc
}

// New creates a Session. It does not connect until Start.
func New(cfg Config, opts ...Option) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	log := o.log.WithComponent("sse-session")

	if o.httpClient == nil {
		c, err := httpclient.New(httpclient.Config{
			Timeout: cfg.LoginTimeout,
			Headers: map[string]string{"Accept": "application/json"},
			HTTP2:   &httpclient.HTTP2Config{},
			TLS:     cfg.TLS,
		})
		if err != nil {
			return nil, fmt.Errorf("session: http client: %w", err)
		}
		o.httpClient = c
	}
	if o.dialer == nil {
		o.dialer = eventsource.NewDialer(o.httpClient, eventsource.WithLogger(o.log))
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	if o.hasher == nil {
		h, err := password.NewHasher(cfg.Hash)
		if err != nil {
			return nil, fmt.Errorf("session: hasher: %w", err)
		}
		o.hasher = h
	}

	var metrics *observability.SessionMetrics
	if o.meter != nil {
		m, err := observability.NewSessionMetrics(o.meter)
		if err != nil {
			return nil, fmt.Errorf("session: metrics: %w", err)
		}
		metrics = m
	}

	exchange := newLoginExchange(o.httpClient, loginRetry(cfg))
	s := &Session{
		cfg:           cfg,
		clientID:      version.ClientID(cfg.ProjectName),
		log:           log,
		userLogin:     newUserLogin(exchange, cfg),
		hubLogin:      newHubLogin(exchange, cfg),
		dialer:        o.dialer,
		clock:         o.clock,
		hasher:        o.hasher,
		metrics:       metrics,
		onError:       o.onError,
		events:        newDispatcher(log),
		autoReconnect: cfg.Reconnects(),
	}
	log.Debug("session created", logger.Fields(
		logger.FieldClientID, s.clientID,
		logger.FieldURL, cfg.SSEURL,
	))
	return s, nil
}

// ClientID returns the identifier sent as projectName on the stream URL.
func (s *Session) ClientID() string { return s.clientID }

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Flush blocks until every event queued so far has been delivered. It must
// not be called from a Callback.
func (s *Session) Flush() {
	s.events.wait()
}

// reportError passes err to the error handler. Call without mu held.
func (s *Session) reportError(err error) {
	if s.onError != nil && err != nil {
		s.onError(err)
	}
}

// resolveWaitersLocked completes every Start call still waiting.
func (s *Session) resolveWaitersLocked(err error) {
	for _, w := range s.waiters {
		w <- err
	}
	s.waiters = nil
}
