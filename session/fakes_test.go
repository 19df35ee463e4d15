package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/sseclient/clock"
	"github.com/kbukum/sseclient/eventsource"
	"github.com/kbukum/sseclient/logger"
)

type fakeStream struct {
	id  string
	url string

	mu        sync.Mutex
	state     eventsource.ReadyState
	listeners eventsource.Listeners
	closed    bool
}

func (f *fakeStream) ID() string  { return f.id }
func (f *fakeStream) URL() string { return f.url }

func (f *fakeStream) ReadyState() eventsource.ReadyState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStream) RemoveListeners() {
	f.mu.Lock()
	f.listeners = eventsource.Listeners{}
	f.mu.Unlock()
}

func (f *fakeStream) Close() {
	f.mu.Lock()
	f.closed = true
	f.state = eventsource.Closed
	f.mu.Unlock()
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeStream) snapshot() eventsource.Listeners {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listeners
}

func (f *fakeStream) open() {
	f.mu.Lock()
	f.state = eventsource.Open
	f.mu.Unlock()
	if l := f.snapshot(); l.Open != nil {
		l.Open()
	}
}

func (f *fakeStream) send(data string) {
	if l := f.snapshot(); l.Message != nil {
		l.Message(eventsource.MessageEvent{Data: data})
	}
}

func (f *fakeStream) ping() {
	if l := f.snapshot(); l.Message != nil {
		l.Message(eventsource.MessageEvent{Comment: true})
	}
}

func (f *fakeStream) fail(err error) {
	f.mu.Lock()
	f.state = eventsource.Closed
	f.mu.Unlock()
	if l := f.snapshot(); l.Error != nil {
		l.Error(err)
	}
}

// dropSilently marks the stream closed without firing Error.
func (f *fakeStream) dropSilently() {
	f.mu.Lock()
	f.state = eventsource.Closed
	f.mu.Unlock()
}

type fakeDialer struct {
	mu      sync.Mutex
	streams []*fakeStream
}

func (d *fakeDialer) Dial(url string, l eventsource.Listeners) eventsource.Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &fakeStream{
		id:        fmt.Sprintf("fake-%d", len(d.streams)+1),
		url:       url,
		state:     eventsource.Connecting,
		listeners: l,
	}
	d.streams = append(d.streams, s)
	return s
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.streams)
}

func (d *fakeDialer) last() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

// live returns the streams that were never closed.
func (d *fakeDialer) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.streams {
		if !s.isClosed() {
			n++
		}
	}
	return n
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) callback(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// loginServer answers every login with "tok-N" unless fail returns a status.
// While hold is set, requests wait until unblock.
type loginServer struct {
	*httptest.Server
	calls atomic.Int32
	fail  atomic.Int32
	hold  atomic.Bool

	release chan struct{}
	once    sync.Once
}

func (ls *loginServer) unblock() { ls.once.Do(func() { close(ls.release) }) }

func newLoginServer(t *testing.T) *loginServer {
	t.Helper()
	ls := &loginServer{release: make(chan struct{})}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ls.calls.Add(1)
		if ls.hold.Load() {
			<-ls.release
		}
		w.Header().Set("Content-Type", "application/json")
		if status := int(ls.fail.Load()); status != 0 {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"statusCode":%d,"code":"LOGIN_FAILED"}}`, status)
			return
		}
		fmt.Fprintf(w, `{"id":"tok-%d"}`, n)
	}))
	t.Cleanup(ls.Close)
	t.Cleanup(ls.unblock)
	return ls
}

type harness struct {
	session *Session
	dialer  *fakeDialer
	clock   *clock.Fake
	events  *recorder
	errs    chan error
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := Config{SSEURL: "http://stream.test/sse"}
	if mutate != nil {
		mutate(&cfg)
	}
	h := &harness{
		dialer: &fakeDialer{},
		clock:  clock.NewFake(),
		events: &recorder{},
		errs:   make(chan error, 16),
	}
	s, err := New(cfg,
		WithLogger(logger.NewNop()),
		WithDialer(h.dialer),
		WithClock(h.clock),
		WithErrorHandler(func(err error) {
			select {
			case h.errs <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Stop)
	h.session = s
	return h
}

// startOpen starts the session and opens the first stream.
func (h *harness) startOpen(t *testing.T) *fakeStream {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- h.session.Start(context.Background(), h.events.callback) }()
	eventually(t, "first dial", func() bool { return h.dialer.count() == 1 })
	st := h.dialer.last()
	st.open()
	if err := waitFor(t, done, "Start to return"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return st
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
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
