// Package ssetest provides a fake event backend for exercising sessions
// against real HTTP.
//
// The Server speaks the same wire protocol as the production backend:
//
//   - POST /api/Users/login with {"email", "password"} answers {"id": token}
//     or a {"error": {statusCode, code, message}} body;
//   - POST /api/Hubs/{id}/login?token=... does the same for hubs;
//   - GET /api/sse?accessToken=...&projectName=... streams events;
//   - GET /health reports the hub.
//
// Tests drive it directly:
//
//	srv := ssetest.NewTestServer(ssetest.WithPingInterval(0))
//	defer srv.Close()
//	_ = srv.AddUser("a@example.com", "password", true)
//	...
//	_ = srv.Broadcast(map[string]any{"type": "alarm"})
//	_ = srv.ExpireToken(s.AccessToken())
//	srv.DropConnections()
//
// Access tokens are HS256 JWTs; expiring one revokes it and pushes
// {type: system, subType: TOKEN_EXPIRED, code: 401} to the streams using it.
// NewTLSTestServer serves the same routes over HTTPS with HTTP/2.
package ssetest
