package session

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kbukum/sseclient/errors"
	"github.com/kbukum/sseclient/eventsource"
	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
)

// Start opens the stream and delivers every parsed event to cb until Stop.
//
// It fails at once with AUTH_REQUIRED when authentication is required and
// no token is installed. Otherwise it blocks until the first open, until ctx
// is done, or until the session is stopped or closed. ctx only bounds the
// wait: the session keeps connecting after Start returns ctx.Err(). Internal
// restarts reuse cb and never complete a Start call a second time.
func (s *Session) Start(ctx context.Context, cb Callback) error {
	s.mu.Lock()
	if s.cfg.Authenticated() && s.token == "" {
		s.mu.Unlock()
		return errors.AuthRequired()
	}
	s.callback = cb
	s.autoReconnect = s.cfg.Reconnects()
	wait := make(chan error, 1)
	s.waiters = append(s.waiters, wait)
	s.restartLocked()
	s.mu.Unlock()

	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseEventSource cancels every timer and pending recovery and closes the
// stream. Safe to call when nothing is open.
func (s *Session) CloseEventSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
	if s.state != StateStopped {
		s.state = StateIdle
	}
	s.resolveWaitersLocked(errors.Stopped())
}

// Stop disables automatic recovery and closes the stream. No connection is
// opened afterwards unless Start is called again.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoReconnect = false
	s.detachLocked()
	s.state = StateStopped
	s.resolveWaitersLocked(errors.Stopped())
	s.log.Info("session stopped", logger.Fields(logger.FieldClientID, s.clientID))
}

// detachLocked cancels all timers and any in-flight re-login, closes the
// stream, and supersedes every outstanding callback.
func (s *Session) detachLocked() {
	s.cancelTimersLocked()
	s.releaseRefreshLocked()
	if s.stream != nil {
		s.stream.RemoveListeners()
		s.stream.Close()
		s.stream = nil
	}
	s.gen++
}

// restartLocked replaces the current stream with a new one. The heartbeat
// deadline is armed at dial time too, so a connect that never completes is
// retried like a silent stream.
func (s *Session) restartLocked() {
	s.detachLocked()
	gen := s.gen
	s.state = StateConnecting
	s.stream = s.dialer.Dial(s.streamURLLocked(), eventsource.Listeners{
		Open:    func() { s.handleOpen(gen) },
		Message: func(m eventsource.MessageEvent) { s.handleMessage(gen, m) },
		Error:   func(err error) { s.handleError(gen, err) },
	})
	s.armHeartbeatLocked(gen)
	s.log.Debug("dialing event stream", logger.Fields(
		logger.FieldURL, s.cfg.SSEURL,
		logger.FieldGeneration, gen,
		logger.FieldConnectionID, s.stream.ID(),
	))
}

// streamURLLocked appends accessToken and projectName when authentication
// is required.
func (s *Session) streamURLLocked() string {
	if !s.cfg.Authenticated() {
		return s.cfg.SSEURL
	}
	u, err := url.Parse(s.cfg.SSEURL)
	if err != nil {
		// Config validation rejects unparseable URLs.
		return s.cfg.SSEURL
	}
	q := u.Query()
	q.Set("accessToken", s.token)
	q.Set("projectName", s.clientID)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Session) handleOpen(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = StateOpen
	s.armHeartbeatLocked(gen)
	s.startPollLocked(gen)
	s.resolveWaitersLocked(nil)
	id := s.stream.ID()
	s.mu.Unlock()

	s.metrics.RecordOpen(context.Background())
	s.log.Info("event stream open", logger.Fields(
		logger.FieldConnectionID, id,
		logger.FieldGeneration, gen,
	))
}

func (s *Session) handleMessage(gen uint64, m eventsource.MessageEvent) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.armHeartbeatLocked(gen)
	if m.IsPing() {
		s.mu.Unlock()
		return
	}

	ev, err := ParseEvent(m.Data)
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("dropping unparseable event", logger.MergeWithError(logger.Fields(
			logger.FieldGeneration, gen, "data", truncate(m.Data, 256)), err))
		s.reportError(err)
		return
	}
	ev.Name, ev.ID = m.Type, m.ID

	s.events.enqueue(s.callback, ev)
	if ev.IsTokenExpiry() {
		s.log.Warn("server rejected the access token", logger.Fields(
			logger.FieldReason, ev.SubType, logger.FieldGeneration, gen))
		s.refreshLocked(errors.New(errors.ErrorCode(ev.SubType), ev.Message, http.StatusUnauthorized))
	}
	s.mu.Unlock()

	s.metrics.RecordEvent(context.Background(), ev.Type)
	s.log.Debug("event received", logger.Fields(logger.FieldEventType, ev.Type, "sub_type", ev.SubType))
}

func (s *Session) handleError(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	streamErr := errors.StreamError(err)
	status := httpclient.StatusCode(err)
	s.log.Warn("event stream error", logger.MergeWithError(logger.Fields(
		logger.FieldGeneration, gen, logger.FieldStatus, status), err))

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		s.refreshLocked(streamErr)
	} else {
		s.detachLocked()
		s.reconnectLocked(s.cfg.ReconnectDelay, observability.ReasonTransportError, streamErr)
	}
	s.mu.Unlock()

	s.reportError(streamErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
