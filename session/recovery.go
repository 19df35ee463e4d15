package session

import (
	"context"
	"time"

	"github.com/kbukum/sseclient/errors"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
)

// reconnectLocked restarts the stream with the same token after delay.
// The stream must already be detached.
func (s *Session) reconnectLocked(delay time.Duration, reason string, cause error) {
	if !s.autoReconnect {
		s.state = StateIdle
		s.log.Info("auto-reconnect disabled, leaving stream closed", logger.Fields(logger.FieldReason, reason))
		if cause == nil {
			cause = errors.StreamError(nil)
		}
		s.resolveWaitersLocked(cause)
		return
	}

	s.metrics.RecordReconnect(context.Background(), reason)
	if delay <= 0 {
		s.restartLocked()
		return
	}

	s.state = StateReconnecting
	gen := s.gen
	s.log.Info("reconnecting", logger.Fields(
		logger.FieldReason, reason,
		"delay", delay.String(),
	))
	s.reconnect = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen || !s.autoReconnect {
			return
		}
		s.restartLocked()
	})
}

// refreshLocked closes the stream, logs in again with the recorded
// credential, and restarts after the reconnect delay. When no refresh is
// possible the terminal event is delivered instead.
func (s *Session) refreshLocked(cause error) {
	s.detachLocked()
	if !s.autoReconnect || s.credential.IsZero() {
		s.giveUpLocked(cause)
		return
	}

	s.state = StateRefreshing
	s.metrics.RecordReconnect(context.Background(), observability.ReasonTokenRefresh)

	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelRefresh = cancel
	go s.refresh(ctx, gen)
}

func (s *Session) refresh(ctx context.Context, gen uint64) {
	err := s.RetryLogin(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.autoReconnect {
		return
	}
	s.releaseRefreshLocked()
	if err != nil {
		s.giveUpLocked(err)
		return
	}

	s.log.Info("access token refreshed, reconnecting", logger.Fields(
		"delay", s.cfg.ReconnectDelay.String(),
	))
	s.reconnect = s.clock.AfterFunc(s.cfg.ReconnectDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen || !s.autoReconnect {
			return
		}
		s.restartLocked()
	})
}

// releaseRefreshLocked cancels the re-login context, if any.
func (s *Session) releaseRefreshLocked() {
	if s.cancelRefresh != nil {
		s.cancelRefresh()
		s.cancelRefresh = nil
	}
}

// giveUpLocked delivers the terminal event once and stops recovering.
func (s *Session) giveUpLocked(cause error) {
	s.state = StateIdle
	s.events.enqueue(s.callback, TerminalEvent())
	s.metrics.RecordTerminal(context.Background())

	err := errors.TokenRefreshFailed(cause)
	s.log.Error("could not refresh access token", logger.MergeWithError(nil, err))
	s.resolveWaitersLocked(err)
}
