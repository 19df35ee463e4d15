package ssetest

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/sseclient/errors"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
	"github.com/kbukum/sseclient/validation"
	"github.com/kbukum/sseclient/version"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID      string `json:"id"`
	TTL     int64  `json:"ttl"`
	Created string `json:"created"`
	UserID  string `json:"userId"`
}

type connectedEvent struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, errors.InvalidInput("body", err.Error()))
		return
	}
	if appErr := validation.New().
		Required("email", req.Email).
		Required("password", req.Password).
		Validate(); appErr != nil {
		respondWithError(c, appErr)
		return
	}

	s.mu.RLock()
	u, ok := s.users[req.Email]
	s.mu.RUnlock()
	if !ok || subtle.ConstantTimeCompare([]byte(u.hash), []byte(req.Password)) != 1 {
		respondWithError(c, errors.New(errors.ErrCodeLoginFailed, "login failed", http.StatusUnauthorized))
		return
	}
	if !u.verified {
		respondWithError(c, errors.New(errors.ErrCodeEmailNotVerified, "login failed as the email has not been verified", http.StatusForbidden))
		return
	}
	s.issue(c, req.Email)
}

func (s *Server) handleHubLogin(c *gin.Context) {
	id, token := c.Param("id"), c.Query("token")
	if appErr := validation.New().Required("token", token).Validate(); appErr != nil {
		respondWithError(c, appErr)
		return
	}

	s.mu.RLock()
	want, ok := s.hubs[id]
	s.mu.RUnlock()
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(token)) != 1 {
		respondWithError(c, errors.New(errors.ErrCodeLoginFailed, "login failed", http.StatusUnauthorized))
		return
	}
	s.issue(c, "hub:"+id)
}

func (s *Server) issue(c *gin.Context, subject string) {
	token, err := s.tokens.issue(subject)
	if err != nil {
		respondWithError(c, errors.Internal(err))
		return
	}
	s.logins.Add(1)
	s.log.Debug("token issued", logger.Fields("subject", subject))
	c.JSON(http.StatusOK, loginResponse{
		ID:      token,
		TTL:     int64(s.tokenTTL / time.Second),
		Created: time.Now().UTC().Format(time.RFC3339),
		UserID:  subject,
	})
}

func (s *Server) handleStream(c *gin.Context) {
	token := c.Query("accessToken")
	subject := ""
	switch {
	case token == "" && s.anonymous:
	case token == "":
		respondWithError(c, errors.New(errors.ErrCodeAuthRequired, "access token required", http.StatusUnauthorized))
		return
	default:
		claims, err := s.tokens.verify(token)
		if err != nil {
			respondWithError(c, errors.New(errors.ErrCodeInvalidAccessToken, "invalid access token", http.StatusUnauthorized).WithCause(err))
			return
		}
		subject = claims.Subject
	}

	client := NewClient(uuid.NewString(), s.log,
		WithMetadata(MetaAccessToken, token),
		WithMetadata(MetaSubject, subject),
		WithMetadata(MetaProjectName, c.Query("projectName")),
	)
	s.serveStream(c.Writer, c.Request, client)
}

// serveStream writes client's frames until the request ends or the hub
// closes the client.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, client *Client) {
	fields := logger.Fields(logger.FieldClientID, client.ID())

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.log.Error("streaming not supported", fields)
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive any server write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug("could not clear write deadline", logger.MergeWithError(fields, err))
	}

	if !s.hub.Register(client) {
		respondError(w, errors.ConnectionFailed("event hub", nil))
		return
	}
	defer s.hub.Unregister(client)
	s.connections.Add(1)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hello, _ := json.Marshal(connectedEvent{Type: "connected", ClientID: client.ID()})
	_ = writeFrame(w, Frame{Event: "connected", Data: hello})
	flusher.Flush()
	s.log.Debug("client connected", logger.Fields(
		logger.FieldClientID, client.ID(), "subject", client.Metadata(MetaSubject), "remote_addr", r.RemoteAddr))

	var keepAlive <-chan time.Time
	if s.pingInterval > 0 {
		t := time.NewTicker(s.pingInterval)
		defer t.Stop()
		keepAlive = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("client disconnected", fields)
			return

		case f, ok := <-client.Frames():
			if !ok {
				s.log.Debug("client closed by hub", fields)
				return
			}
			if err := writeFrame(w, f); err != nil {
				s.log.Debug("write failed", logger.MergeWithError(fields, err))
				return
			}
			flusher.Flush()

		case <-keepAlive:
			if err := writeFrame(w, Frame{Comment: true, Data: []byte("keepalive " + strconv.FormatInt(time.Now().Unix(), 10))}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	health := observability.NewServiceHealth("ssetest", version.Short())
	hub := observability.Health{
		Name:    "hub",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"clients": strconv.Itoa(s.hub.ClientCount())},
	}
	if s.closed.Load() {
		hub.Status = observability.HealthStatusDown
	}
	health.AddComponent(hub)

	status := http.StatusOK
	if health.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// writeFrame encodes f in text/event-stream framing.
func writeFrame(w io.Writer, f Frame) error {
	var b strings.Builder
	if f.Comment {
		fmt.Fprintf(&b, ": %s\n\n", f.Data)
		_, err := io.WriteString(w, b.String())
		return err
	}
	if f.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", f.ID)
	}
	if f.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", f.Event)
	}
	for _, line := range strings.Split(string(f.Data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func respondError(w http.ResponseWriter, appErr *errors.AppError) {
	resp := appErr.ToResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Error.StatusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
