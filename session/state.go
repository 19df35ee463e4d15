package session

import "fmt"

// State is the lifecycle state of a Session.
type State int

const (
	// StateIdle means no stream is open and no recovery is scheduled.
	StateIdle State = iota
	// StateConnecting means a stream was dialed and has not opened yet.
	StateConnecting
	// StateOpen means the stream is delivering frames.
	StateOpen
	// StateReconnecting means a plain reconnect is scheduled.
	StateReconnecting
	// StateRefreshing means a re-login is in flight or its restart is scheduled.
	StateRefreshing
	// StateStopped means Stop was called.
	StateStopped
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateConnecting:   "connecting",
	StateOpen:         "open",
	StateReconnecting: "reconnecting",
	StateRefreshing:   "refreshing",
	StateStopped:      "stopped",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Active reports whether a stream is open or being brought back.
func (s State) Active() bool {
	switch s {
	case StateConnecting, StateOpen, StateReconnecting, StateRefreshing:
		return true
	}
	return false
}
