package eventsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/httpclient/sse"
	"github.com/kbukum/sseclient/logger"
)

// ErrStreamEnded is reported when the server closes the response cleanly.
var ErrStreamEnded = fmt.Errorf("eventsource: stream ended by server")

// HTTPDialer opens streams with an httpclient.Client.
type HTTPDialer struct {
	client  *httpclient.Client
	log     *logger.Logger
	headers map[string]string
}

// DialerOption configures an HTTPDialer.
type DialerOption func(*HTTPDialer)

// WithLogger sets the dialer's logger.
func WithLogger(l *logger.Logger) DialerOption {
	return func(d *HTTPDialer) {
		if l != nil {
			d.log = l.WithComponent("eventsource")
		}
	}
}

// WithHeader adds a header to every stream request.
func WithHeader(key, value string) DialerOption {
	return func(d *HTTPDialer) { d.headers[key] = value }
}

// NewDialer returns a Dialer backed by client.
func NewDialer(client *httpclient.Client, opts ...DialerOption) *HTTPDialer {
	d := &HTTPDialer{
		client:  client,
		log:     logger.WithComponent("eventsource"),
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial starts opening url in the background and returns immediately.
func (d *HTTPDialer) Dial(url string, l Listeners) Stream {
	ctx, cancel := context.WithCancel(context.Background())
	s := &source{
		id:        uuid.NewString(),
		url:       url,
		listeners: l,
		cancel:    cancel,
	}
	s.state.Store(int32(Connecting))
	go s.run(ctx, d)
	return s
}

type source struct {
	id     string
	url    string
	state  atomic.Int32
	cancel context.CancelFunc

	mu        sync.Mutex
	listeners Listeners
	closed    bool
	resp      *httpclient.StreamResponse
}

func (s *source) ID() string  { return s.id }
func (s *source) URL() string { return s.url }

func (s *source) ReadyState() ReadyState {
	return ReadyState(s.state.Load())
}

func (s *source) RemoveListeners() {
	s.mu.Lock()
	s.listeners = Listeners{}
	s.mu.Unlock()
}

func (s *source) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	resp := s.resp
	s.mu.Unlock()

	s.state.Store(int32(Closed))
	s.cancel()
	if resp != nil {
		_ = resp.Close()
	}
}

func (s *source) run(ctx context.Context, d *HTTPDialer) {
	fields := logger.Fields(logger.FieldConnectionID, s.id)

	headers := map[string]string{
		"Accept":        "text/event-stream",
		"Cache-Control": "no-cache",
	}
	for k, v := range d.headers {
		headers[k] = v
	}

	resp, err := d.client.DoStream(ctx, httpclient.Request{
		Method:     http.MethodGet,
		Path:       s.url,
		Headers:    headers,
		SSEOptions: []sse.Option{sse.WithComments()},
	})
	if err == nil && resp.SSE == nil {
		ct := resp.Headers["Content-Type"]
		_ = resp.Close()
		resp, err = nil, httpclient.NewContentTypeError(ct)
	}
	if err != nil {
		d.log.Debug("stream request failed", logger.MergeWithError(fields, err))
		s.fail(err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = resp.Close()
		return
	}
	s.resp = resp
	s.mu.Unlock()

	s.state.Store(int32(Open))
	d.log.Debug("stream open", fields)
	if l := s.snapshot(); l.Open != nil {
		l.Open()
	}

	for {
		ev, err := resp.SSE.Next()
		if err != nil {
			if err == io.EOF {
				err = ErrStreamEnded
			}
			d.log.Debug("stream ended", logger.MergeWithError(fields, err))
			s.fail(err)
			return
		}
		if l := s.snapshot(); l.Message != nil {
			l.Message(MessageEvent{
				Type:    ev.Event,
				Data:    ev.Data,
				ID:      ev.ID,
				Comment: ev.IsComment(),
			})
		}
	}
}

// fail moves the stream to Closed and fires Error unless Close was called.
func (s *source) fail(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	l := s.listeners
	resp := s.resp
	s.mu.Unlock()

	s.state.Store(int32(Closed))
	s.cancel()
	if resp != nil {
		_ = resp.Close()
	}
	if l.Error != nil {
		l.Error(err)
	}
}

func (s *source) snapshot() Listeners {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Listeners{}
	}
	return s.listeners
}
