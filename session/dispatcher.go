package session

import (
	"sync"

	"github.com/kbukum/sseclient/logger"
)

type delivery struct {
	cb    Callback
	event Event
}

// dispatcher delivers events to callbacks in FIFO order on its own
// goroutine. The queue is unbounded; the goroutine exits when it drains and
// is restarted by the next enqueue.
type dispatcher struct {
	log *logger.Logger

	mu      sync.Mutex
	queue   []delivery
	running bool
	idle    *sync.Cond
}

func newDispatcher(log *logger.Logger) *dispatcher {
	d := &dispatcher{log: log}
	d.idle = sync.NewCond(&d.mu)
	return d
}

func (d *dispatcher) enqueue(cb Callback, e Event) {
	if cb == nil {
		return
	}
	d.mu.Lock()
	d.queue = append(d.queue, delivery{cb: cb, event: e})
	if !d.running {
		d.running = true
		go d.drain()
	}
	d.mu.Unlock()
}

func (d *dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.idle.Broadcast()
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue[0] = delivery{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.deliver(next)
	}
}

func (d *dispatcher) deliver(dl delivery) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("event callback panicked", logger.Fields(
				logger.FieldEventType, dl.event.Type, "panic", r))
		}
	}()
	dl.cb(dl.event)
}

// wait blocks until every queued event has been delivered.
func (d *dispatcher) wait() {
	d.mu.Lock()
	for d.running {
		d.idle.Wait()
	}
	d.mu.Unlock()
}
