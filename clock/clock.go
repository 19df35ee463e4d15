// Package clock provides the timer primitives the session state machine is
// built on: a delayed single-shot call and a repeating call, each with a
// canceller. Real returns wall-clock timers; Fake lets tests drive time.
package clock

import (
	"sync"
	"time"
)

// Timer is a pending single-shot or repeating call.
type Timer interface {
	// Stop cancels the timer. It returns false if the timer already fired
	// (single-shot) or was already stopped.
	Stop() bool
}

// Clock schedules delayed and repeating calls.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once, in its own goroutine, after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f every d until the returned Timer is stopped.
	Every(d time.Duration, f func()) Timer
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Every(d time.Duration, f func()) Timer {
	t := &ticker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			select {
			case <-t.done:
				return
			default:
			}
			f()
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
