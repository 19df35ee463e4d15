// Package eventsource is a minimal EventSource-style transport: it opens a
// text/event-stream response, reports the open, every frame and the first
// failure to a set of listeners, and exposes a ready state that can be
// polled. It never reconnects on its own; callers own recovery.
package eventsource
