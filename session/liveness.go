package session

import (
	"github.com/kbukum/sseclient/clock"
	"github.com/kbukum/sseclient/eventsource"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
)

// armHeartbeatLocked replaces the heartbeat deadline. Only the most recently
// armed deadline can fire.
func (s *Session) armHeartbeatLocked(gen uint64) {
	if s.heartbeat != nil {
		s.heartbeat.Stop()
	}
	s.beat++
	beat := s.beat
	s.heartbeat = s.clock.AfterFunc(s.cfg.HeartbeatTimeout, func() {
		s.heartbeatExpired(gen, beat)
	})
}

func (s *Session) heartbeatExpired(gen, beat uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || beat != s.beat {
		return
	}
	s.log.Warn("no heartbeat before deadline, reconnecting", logger.Fields(
		logger.FieldGeneration, gen,
		"timeout", s.cfg.HeartbeatTimeout.String(),
	))
	s.detachLocked()
	s.reconnectLocked(0, observability.ReasonHeartbeat, nil)
}

// startPollLocked watches for a transport that reports Closed without
// firing its error listener.
func (s *Session) startPollLocked(gen uint64) {
	if s.poll != nil {
		s.poll.Stop()
	}
	s.poll = s.clock.Every(s.cfg.LivenessPollInterval, func() {
		s.checkLiveness(gen)
	})
}

func (s *Session) checkLiveness(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.stream == nil {
		return
	}
	if s.stream.ReadyState() != eventsource.Closed {
		return
	}
	s.log.Warn("stream closed without an error, reconnecting", logger.Fields(
		logger.FieldGeneration, gen,
		logger.FieldConnectionID, s.stream.ID(),
	))
	s.detachLocked()
	s.reconnectLocked(0, observability.ReasonClosed, nil)
}

func (s *Session) cancelTimersLocked() {
	for _, t := range []*clock.Timer{&s.heartbeat, &s.poll, &s.reconnect} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}
