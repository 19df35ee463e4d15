package ssetest

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/sseclient/errors"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/password"
)

// Routes served by the fake backend.
const (
	LoginPath  = "/api/Users/login"
	HubsPath   = "/api/Hubs"
	StreamPath = "/api/sse"
	HealthPath = "/health"
)

// Defaults.
const (
	DefaultTokenTTL     = 14 * 24 * time.Hour
	DefaultPingInterval = 10 * time.Second
)

// Server is an in-process stand-in for the event backend: it issues access
// tokens, serves the event stream, and lets tests push events, expire
// tokens, and drop connections.
type Server struct {
	engine  *gin.Engine
	handler http.Handler
	hub     *Hub
	hubDone chan struct{}
	tokens  *tokenIssuer
	hasher  password.Hasher
	log     *logger.Logger

	pingInterval time.Duration
	tokenTTL     time.Duration
	signingKey   []byte
	anonymous    bool

	mu    sync.RWMutex
	users map[string]user
	hubs  map[string]string

	logins      atomic.Int64
	connections atomic.Int64
	closed      atomic.Bool
	closeOnce   sync.Once

	ts *httptest.Server
	// URL is the base URL when started with NewTestServer.
	URL string
}

type user struct {
	hash     string
	verified bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l.WithComponent("ssetest")
		}
	}
}

// WithHasher sets the digest used to store user passwords. It must match
// the client's.
func WithHasher(h password.Hasher) Option {
	return func(s *Server) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithPingInterval sets how often keepalive comments are written. Zero
// disables them.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) { s.pingInterval = d }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithSigningKey sets the HMAC key for issued tokens. A random key is used
// otherwise.
func WithSigningKey(key []byte) Option {
	return func(s *Server) { s.signingKey = key }
}

// WithAnonymousStreams accepts stream requests that carry no access token.
func WithAnonymousStreams() Option {
	return func(s *Server) { s.anonymous = true }
}

// New builds a Server and starts its hub. Serve it with Handler, or use
// NewTestServer.
func New(opts ...Option) *Server {
	s := &Server{
		hasher:       password.NewDigestHasher(),
		log:          logger.WithComponent("ssetest"),
		pingInterval: DefaultPingInterval,
		tokenTTL:     DefaultTokenTTL,
		users:        make(map[string]user),
		hubs:         make(map[string]string),
		hubDone:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokens = newTokenIssuer(s.signingKey, s.tokenTTL)
	s.hub = NewHub(s.log)
	go func() {
		defer close(s.hubDone)
		s.hub.Run()
	}()

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	s.engine = gin.New()
	s.engine.Use(recovery(s.log), requestID(), requestLogger(s.log))
	s.routes()

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	s.handler = h2c.NewHandler(s.engine, h2s)
	return s
}

// NewTestServer starts a Server on a loopback httptest listener.
func NewTestServer(opts ...Option) *Server {
	s := New(opts...)
	s.ts = httptest.NewServer(s.handler)
	s.URL = s.ts.URL
	return s
}

// NewTLSTestServer is NewTestServer over HTTPS with cert, negotiating
// HTTP/2 through ALPN.
func NewTLSTestServer(cert tls.Certificate, opts ...Option) *Server {
	s := New(opts...)
	s.ts = httptest.NewUnstartedServer(s.handler)
	s.ts.EnableHTTP2 = true
	s.ts.TLS = &tls.Config{Certificates: []tls.Certificate{cert}}
	s.ts.StartTLS()
	s.URL = s.ts.URL
	return s
}

func (s *Server) routes() {
	s.engine.POST(LoginPath, s.handleLogin)
	s.engine.POST(HubsPath+"/:id/login", s.handleHubLogin)
	s.engine.GET(StreamPath, s.handleStream)
	s.engine.GET(HealthPath, s.handleHealth)
}

// Handler returns the h2c-wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// LoginURL returns the user login endpoint.
func (s *Server) LoginURL() string { return s.URL + LoginPath }

// HubLoginBaseURL returns the base of the hub login endpoints.
func (s *Server) HubLoginBaseURL() string { return s.URL + HubsPath }

// StreamURL returns the event stream endpoint.
func (s *Server) StreamURL() string { return s.URL + StreamPath }

// Close ends every stream, stops the hub, and shuts down the test listener
// if there is one.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.hub.Stop()
		<-s.hubDone
		if s.ts != nil {
			s.ts.Close()
		}
	})
}

// AddUser registers a user. The stored hash is what a client sends after
// hashing password with the same digest.
func (s *Server) AddUser(email, pass string, verified bool) error {
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.users[email] = user{hash: hash, verified: verified}
	s.mu.Unlock()
	return nil
}

// RemoveUser deletes a user so later logins fail.
func (s *Server) RemoveUser(email string) {
	s.mu.Lock()
	delete(s.users, email)
	s.mu.Unlock()
}

// AddHub registers a hub and its token.
func (s *Server) AddHub(id, token string) {
	s.mu.Lock()
	s.hubs[id] = token
	s.mu.Unlock()
}

// RemoveHub deletes a hub so later hub logins fail.
func (s *Server) RemoveHub(id string) {
	s.mu.Lock()
	delete(s.hubs, id)
	s.mu.Unlock()
}

// Broadcast sends v as JSON to every open stream.
func (s *Server) Broadcast(v any) error {
	return s.Send("", v)
}

// Send sends v as JSON to the streams whose client ID matches pattern.
func (s *Server) Send(pattern string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.InvalidFormat("event", err)
	}
	s.hub.Publish(&Message{Pattern: pattern, Frame: &Frame{Data: data}})
	return nil
}

// SendRaw sends data unchanged to every open stream.
func (s *Server) SendRaw(data string) {
	s.hub.Publish(&Message{Frame: &Frame{Data: []byte(data)}})
}

// Ping sends an empty data frame to every open stream.
func (s *Server) Ping() {
	s.hub.Publish(&Message{Frame: &Frame{}})
}

// ExpireToken revokes token and tells the streams using it.
func (s *Server) ExpireToken(token string) error {
	if _, err := s.tokens.revoke(token); err != nil {
		return errors.InvalidInput("token", err.Error())
	}
	s.hub.Publish(&Message{
		Match: func(c *Client) bool { return c.Metadata(MetaAccessToken) == token },
		Frame: systemFrame(errors.ErrCodeTokenExpired, "Access token expired."),
	})
	s.log.Info("token expired", logger.Fields(logger.FieldReason, errors.ErrCodeTokenExpired))
	return nil
}

// ExpireAll revokes every issued token and tells every stream.
func (s *Server) ExpireAll() {
	s.tokens.revokeAll()
	s.hub.Publish(&Message{Frame: systemFrame(errors.ErrCodeTokenExpired, "Access token expired.")})
	s.log.Info("all tokens expired")
}

// DropConnections ends every open stream without a message.
func (s *Server) DropConnections() {
	s.hub.Publish(&Message{Disconnect: true})
}

// ClientCount returns the number of open streams.
func (s *Server) ClientCount() int { return s.hub.ClientCount() }

// Clients describes the open streams.
func (s *Server) Clients() []ClientInfo {
	ids := s.hub.ClientIDs()
	out := make([]ClientInfo, 0, len(ids))
	for _, id := range ids {
		if c := s.hub.Client(id); c != nil {
			out = append(out, ClientInfo{
				ID:          id,
				Subject:     c.Metadata(MetaSubject),
				ProjectName: c.Metadata(MetaProjectName),
			})
		}
	}
	return out
}

// Logins returns the number of successful logins.
func (s *Server) Logins() int64 { return s.logins.Load() }

// Connections returns the number of streams accepted so far.
func (s *Server) Connections() int64 { return s.connections.Load() }

// ClientInfo describes one open stream.
type ClientInfo struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	ProjectName string `json:"projectName"`
}

type systemEvent struct {
	Type    string           `json:"type"`
	SubType errors.ErrorCode `json:"subType"`
	Code    int              `json:"code"`
	Message string           `json:"message,omitempty"`
}

func systemFrame(subType errors.ErrorCode, message string) *Frame {
	data, _ := json.Marshal(systemEvent{
		Type:    "system",
		SubType: subType,
		Code:    http.StatusUnauthorized,
		Message: message,
	})
	return &Frame{Data: data}
}
