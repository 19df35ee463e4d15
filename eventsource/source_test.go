package eventsource

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/logger"
)

type recorder struct {
	opened   chan struct{}
	messages chan MessageEvent
	errs     chan error
}

func newRecorder() *recorder {
	return &recorder{
		opened:   make(chan struct{}, 1),
		messages: make(chan MessageEvent, 16),
		errs:     make(chan error, 4),
	}
}

func (r *recorder) listeners() Listeners {
	return Listeners{
		Open:    func() { r.opened <- struct{}{} },
		Message: func(m MessageEvent) { r.messages <- m },
		Error:   func(err error) { r.errs <- err },
	}
}

func newTestDialer(t *testing.T) *HTTPDialer {
	t.Helper()
	client, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewDialer(client, WithLogger(logger.NewNop()), WithHeader("X-Client-Id", "test"))
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func sseHandler(frames string, hold <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, frames)
		w.(http.Flusher).Flush()
		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
			}
		}
	}
}

func TestSource_OpenMessagesAndEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("expected Accept text/event-stream, got %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("X-Client-Id") != "test" {
			t.Errorf("expected dialer header, got %q", r.Header.Get("X-Client-Id"))
		}
		sseHandler(": keepalive\n\nevent: notice\nid: 1\ndata: {\"type\":\"x\"}\n\ndata:\n\n", nil)(w, r)
	}))
	defer srv.Close()

	rec := newRecorder()
	s := newTestDialer(t).Dial(srv.URL+"/sse", rec.listeners())
	if s.URL() != srv.URL+"/sse" {
		t.Errorf("unexpected URL %q", s.URL())
	}
	if s.ID() == "" {
		t.Error("expected a connection id")
	}

	waitFor(t, rec.opened, "open")

	m := waitFor(t, rec.messages, "comment")
	if !m.Comment || !m.IsPing() {
		t.Errorf("expected comment ping, got %+v", m)
	}
	m = waitFor(t, rec.messages, "frame")
	if m.Type != "notice" || m.ID != "1" || m.Data != `{"type":"x"}` || m.IsPing() {
		t.Errorf("unexpected frame %+v", m)
	}
	m = waitFor(t, rec.messages, "empty data ping")
	if !m.IsPing() || m.Comment {
		t.Errorf("expected data ping, got %+v", m)
	}

	err := waitFor(t, rec.errs, "end of stream")
	if !errors.Is(err, ErrStreamEnded) {
		t.Errorf("expected ErrStreamEnded, got %v", err)
	}
	if s.ReadyState() != Closed {
		t.Errorf("expected closed, got %s", s.ReadyState())
	}
}

func TestSource_UnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	rec := newRecorder()
	s := newTestDialer(t).Dial(srv.URL, rec.listeners())
	err := waitFor(t, rec.errs, "error")
	if httpclient.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("expected 401 error, got %v", err)
	}
	if s.ReadyState() != Closed {
		t.Errorf("expected closed, got %s", s.ReadyState())
	}
	select {
	case <-rec.opened:
		t.Error("open must not fire for a rejected stream")
	default:
	}
}

func TestSource_WrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rec := newRecorder()
	newTestDialer(t).Dial(srv.URL, rec.listeners())
	err := waitFor(t, rec.errs, "error")
	var he *httpclient.Error
	if !errors.As(err, &he) || he.Code != httpclient.ErrCodeContentType {
		t.Errorf("expected content type error, got %v", err)
	}
}

func TestSource_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := newRecorder()
	newTestDialer(t).Dial(url, rec.listeners())
	err := waitFor(t, rec.errs, "error")
	if !httpclient.IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestSource_CloseSuppressesError(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	srv := httptest.NewServer(sseHandler("data: first\n\n", hold))
	defer srv.Close()

	rec := newRecorder()
	s := newTestDialer(t).Dial(srv.URL, rec.listeners())
	waitFor(t, rec.opened, "open")
	waitFor(t, rec.messages, "first frame")

	s.Close()
	s.Close()
	if s.ReadyState() != Closed {
		t.Errorf("expected closed, got %s", s.ReadyState())
	}
	select {
	case err := <-rec.errs:
		t.Errorf("no error expected after Close, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSource_RemoveListeners(t *testing.T) {
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-gate
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := newRecorder()
	s := newTestDialer(t).Dial(srv.URL, rec.listeners())
	s.RemoveListeners()
	close(gate)
	deadline := time.Now().Add(3 * time.Second)
	for s.ReadyState() != Closed && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.ReadyState() != Closed {
		t.Fatal("expected stream to close after the failed request")
	}
	select {
	case err := <-rec.errs:
		t.Errorf("detached listener fired: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReadyState_String(t *testing.T) {
	if Connecting.String() != "connecting" || Open.String() != "open" || Closed.String() != "closed" {
		t.Error("unexpected ready state names")
	}
	if ReadyState(9).String() != "ReadyState(9)" {
		t.Errorf("unexpected fallback name %q", ReadyState(9).String())
	}
}
