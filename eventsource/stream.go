package eventsource

import "fmt"

// ReadyState mirrors the EventSource readyState values.
type ReadyState int32

const (
	// Connecting means the request is in flight.
	Connecting ReadyState = iota
	// Open means the response headers arrived and frames are flowing.
	Open
	// Closed means the stream ended, failed, or was closed locally.
	Closed
)

// String returns the state name.
func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("ReadyState(%d)", int32(s))
	}
}

// MessageEvent is one frame received on the stream.
type MessageEvent struct {
	// Type is the "event:" field, empty for default messages.
	Type string
	// Data is the frame payload.
	Data string
	// ID is the "id:" field.
	ID string
	// Comment is true for ":" keepalive lines. Data is empty for them.
	Comment bool
}

// IsPing reports whether the frame carries no payload. Pings and comments
// only prove the connection is alive.
func (m MessageEvent) IsPing() bool {
	return m.Comment || m.Data == ""
}

// Listeners receive stream notifications. Any field may be nil. Calls for a
// single stream are made from one goroutine, in order.
type Listeners struct {
	Open    func()
	Message func(MessageEvent)
	Error   func(error)
}

// Stream is an open or opening event stream.
type Stream interface {
	// ID identifies this connection attempt in logs.
	ID() string
	// URL is the address the stream was opened with.
	URL() string
	// ReadyState reports the current connection state.
	ReadyState() ReadyState
	// RemoveListeners detaches all listeners. No listener is invoked after
	// it returns, except one already running.
	RemoveListeners()
	// Close ends the stream. It is idempotent and does not fire Error.
	Close()
}

// Dialer opens streams. Listeners are attached before any I/O starts so
// no notification can be missed. Dial must return before any listener runs.
type Dialer interface {
	Dial(url string, l Listeners) Stream
}
