// Package sse reads text/event-stream bodies frame by frame.
package sse

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// Event represents a single server-sent event.
type Event struct {
	// Event is the SSE event type (from "event:" line). Empty for data-only events.
	Event string
	// Data is the event payload (from "data:" line(s)). Multi-line data is joined with newlines.
	Data string
	// ID is the event ID (from "id:" line).
	ID string
	// Comment holds the text of a ":" line when comments are surfaced.
	Comment string
}

// IsComment reports whether the event is a surfaced comment line rather
// than a dispatched frame.
func (e *Event) IsComment() bool {
	return e.Comment != "" && e.Data == "" && e.Event == "" && e.ID == ""
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next SSE event. Returns io.EOF when the stream ends; a
// trailing frame that was never terminated by a blank line is not returned.
	Next() (*Event, error)
	// Close releases the underlying resources.
	Close() error
}

// Option configures a Reader.
type Option func(*reader)

// WithComments makes Next return comment lines (": keepalive") as events.
// Servers send them as heartbeats; by default they are skipped.
func WithComments() Option {
	return func(r *reader) { r.comments = true }
}

type reader struct {
	scanner  *bufio.Scanner
	body     io.ReadCloser
	comments bool
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser, opts ...Option) Reader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	r := &reader{scanner: scanner, body: body}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next SSE event. Returns io.EOF when the stream ends; a
// trailing frame that was never terminated by a blank line is not returned.
func (r *reader) Next() (*Event, error) {
	var event Event
	var hasData, pending bool

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Blank line dispatches the frame.
		if line == "" {
			if hasData {
				return &event, nil
			}
			event, pending = Event{}, false
			continue
		}

		if strings.HasPrefix(line, ":") {
			if r.comments && !pending {
				text := strings.TrimPrefix(line[1:], " ")
				if text == "" {
					text = ":"
				}
				return &Event{Comment: text}, nil
			}
			continue
		}

		field, value := parseSSELine(line)
		switch field {
		case "data":
			if hasData {
				event.Data += "\n" + value
			} else {
				event.Data = value
				hasData = true
			}
			pending = true
		case "event":
			event.Event = value
			pending = true
		case "id":
			event.ID = value
			pending = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	// A frame without its closing blank line is incomplete and discarded.
	return nil, io.EOF
}

// Close releases the underlying stream.
func (r *reader) Close() error {
	return r.body.Close()
}

// parseSSELine parses a single SSE line into field and value.
func parseSSELine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
