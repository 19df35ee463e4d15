// Package session implements a persistent Server-Sent Events client.
//
// A Session logs in (user email and password hash, or hub id and hub
// token), opens the event stream with the resulting access token, and keeps
// it alive on its own:
//
//   - a transport error reconnects after ReconnectDelay;
//   - silence past HeartbeatTimeout, or a stream found closed by the
//     liveness poll, reconnects at once;
//   - a system event with code 401 and subType TOKEN_EXPIRED or
//     INVALID_ACCESS_TOKEN, or a stream rejected with 401/403, logs in again
//     with the recorded credential and reconnects after ReconnectDelay.
//
// When a token cannot be refreshed the callback receives one terminal event
// {type: system, subType: COULD_NOT_REFRESH_TOKEN, code: 401} and recovery
// stops. Errors after Start has returned are never raised to the caller.
//
// Events are delivered in order on a dedicated goroutine, so a slow
// callback does not delay heartbeat bookkeeping. Config.TLS carries a
// private CA or client certificate for both login and stream requests.
//
//	s, err := session.New(session.Config{
//	    SSEURL:   "https://api.example.com/sse",
//	    LoginURL: "https://api.example.com/Users/login",
//	})
//	if err != nil { ... }
//	if err := s.Login(ctx, email, password); err != nil { ... }
//	err = s.Start(ctx, func(e session.Event) { ... })
//	defer s.Stop()
package session
