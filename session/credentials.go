package session

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/sseclient/errors"
	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
	"github.com/kbukum/sseclient/util"
)

// Login flows, as recorded in metrics and logs.
const (
	FlowUser = "user"
	FlowHub  = "hub"
)

// Credential is the login the session replays when the server rejects its
// token. Each login flow fills its own half; a login attempt records its
// half before the request is sent, whether or not it succeeds.
type Credential struct {
	Email        string
	PasswordHash string
	HubID        string
	HubToken     string
}

// HasUser reports whether a user login is recorded.
func (c Credential) HasUser() bool { return c.Email != "" }

// HasHub reports whether a hub login is recorded.
func (c Credential) HasHub() bool { return c.HubID != "" }

// IsZero reports whether nothing is recorded.
func (c Credential) IsZero() bool { return !c.HasUser() && !c.HasHub() }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID    string `json:"id"`
	Error *struct {
		StatusCode int    `json:"statusCode"`
		Code       string `json:"code"`
		Message    string `json:"message"`
	} `json:"error"`
}

// Login hashes password and logs in with LoginHashed.
func (s *Session) Login(ctx context.Context, email, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return errors.Internal(err)
	}
	return s.LoginHashed(ctx, email, hash)
}

// LoginHashed logs in with an already hashed password and installs the
// returned access token.
func (s *Session) LoginHashed(ctx context.Context, email, hash string) error {
	s.mu.Lock()
	s.credential.Email = email
	s.credential.PasswordHash = hash
	s.mu.Unlock()

	if s.cfg.LoginURL == "" {
		return errors.Validation("login_url is not configured")
	}
	return s.doLogin(ctx, FlowUser, logger.Fields(logger.FieldEmail, email), func(ctx context.Context) (string, error) {
		return s.userLogin.Execute(ctx, userLoginInput{Email: email, Hash: hash})
	})
}

// HubLogin logs in as a hub with its token and installs the returned access
// token.
func (s *Session) HubLogin(ctx context.Context, hubID, hubToken string) error {
	s.mu.Lock()
	s.credential.HubID = hubID
	s.credential.HubToken = hubToken
	s.mu.Unlock()

	if s.cfg.HubLoginBaseURL == "" {
		return errors.Validation("hub_login_base_url is not configured")
	}
	return s.doLogin(ctx, FlowHub, logger.Fields(logger.FieldHubID, hubID), func(ctx context.Context) (string, error) {
		return s.hubLogin.Execute(ctx, hubLoginInput{ID: hubID, Token: hubToken})
	})
}

// RetryLogin replays the recorded credential, preferring the hub login.
func (s *Session) RetryLogin(ctx context.Context) error {
	cred := s.Credential()
	switch {
	case cred.HasHub():
		return s.HubLogin(ctx, cred.HubID, cred.HubToken)
	case cred.HasUser():
		return s.LoginHashed(ctx, cred.Email, cred.PasswordHash)
	default:
		return errors.NoCredentials()
	}
}

// SetAccessToken installs token directly. The recorded credential is left
// alone, so a session set up this way cannot refresh an expired token.
func (s *Session) SetAccessToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.inspectToken(token)
}

// AccessToken returns the installed token, or "".
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Credential returns a copy of the recorded credential.
func (s *Session) Credential() Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *Session) doLogin(ctx context.Context, flow string, fields map[string]interface{}, exchange func(context.Context) (string, error)) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoginTimeout)
	defer cancel()

	ctx, op := observability.StartLogin(ctx, flow, s.metrics)
	fields[logger.FieldOperation] = flow + "_login"

	token, err := exchange(ctx)
	if _, ok := errors.AsAppError(err); err != nil && !ok {
		// The context ended between retries.
		err = errors.LoginFailed("", 0, err)
	}
	if err != nil {
		status := "error"
		if appErr, ok := errors.AsAppError(err); ok {
			status = string(appErr.Code)
		}
		op.End(ctx, status, err)
		s.logLoginFailure(err, fields)
		return err
	}
	op.End(ctx, "ok", nil)

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	fields[logger.FieldDuration] = time.Since(op.StartTime).Milliseconds()
	s.log.Info("login succeeded", fields)
	s.inspectToken(token)
	return nil
}

// loginToken classifies a login response and returns its access token.
func loginToken(resp *httpclient.TypedResponse[loginResponse], err error) (string, error) {
	var parsed loginResponse
	var status int
	if resp != nil {
		parsed, status = resp.Data, resp.StatusCode
	}
	var httpErr *httpclient.Error
	if status == 0 && stderrors.As(err, &httpErr) {
		status = httpErr.StatusCode
	}

	if status == http.StatusUnauthorized ||
		(parsed.Error != nil && parsed.Error.StatusCode == http.StatusUnauthorized) {
		reason := ""
		if parsed.Error != nil {
			reason = parsed.Error.Message
		}
		return "", errors.Unauthorized(reason)
	}

	if err == nil && parsed.Error == nil && parsed.ID != "" {
		return parsed.ID, nil
	}

	var serverCode string
	if parsed.Error != nil {
		serverCode = parsed.Error.Code
	}
	cause := err
	if cause == nil && parsed.ID == "" {
		cause = stderrors.New("login response has no id")
	}
	return "", errors.LoginFailed(serverCode, status, cause)
}

func (s *Session) logLoginFailure(err error, fields map[string]interface{}) {
	fields = logger.MergeWithError(fields, err)
	switch {
	case errors.HasCode(err, errors.ErrCodeUnauthorized):
		s.log.Warn("login rejected: unauthorized", fields)
	case errors.HasCode(err, errors.ErrCodeEmailNotVerified):
		s.log.Warn("login failed: email not verified", fields)
	case errors.HasCode(err, errors.ErrCodeLoginFailed):
		s.log.Warn("login failed: invalid credentials", fields)
	default:
		s.log.Error("login failed: unknown reason", fields)
	}
}

// inspectToken logs the expiry of JWT access tokens. Opaque tokens are
// accepted without comment.
func (s *Session) inspectToken(token string) {
	if token == "" {
		return
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return
	}
	exp := claims.ExpiresAt.Time
	fields := logger.Fields("expires_at", exp.Format(time.RFC3339), "token", util.MaskSecret(token, 6))
	if !exp.After(s.clock.Now()) {
		s.log.Warn("access token is already expired", fields)
		return
	}
	s.log.Debug("access token installed", fields)
}
