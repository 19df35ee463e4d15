package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthQuery places a token in a URL query parameter.
	AuthQuery
	// AuthHeader places a token in a named request header.
	AuthHeader
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the credential value.
	Token string
	// Name is the query parameter or header name (AuthQuery, AuthHeader).
	Name string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// QueryAuth creates an auth config that sends the token as ?name=token.
// Hub logins and event stream URLs authenticate this way.
func QueryAuth(name, token string) *AuthConfig {
	return &AuthConfig{Type: AuthQuery, Token: token, Name: name}
}

// HeaderAuth creates an auth config that sends the token in a custom header.
func HeaderAuth(name, token string) *AuthConfig {
	return &AuthConfig{Type: AuthHeader, Token: token, Name: name}
}

// apply applies authentication to an HTTP request.
func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthQuery:
		name := a.Name
		if name == "" {
			name = "token"
		}
		q := req.URL.Query()
		q.Set(name, a.Token)
		req.URL.RawQuery = q.Encode()
	case AuthHeader:
		name := a.Name
		if name == "" {
			name = "X-Access-Token"
		}
		req.Header.Set(name, a.Token)
	}
}
