package session

import (
	"context"

	"github.com/kbukum/sseclient/httpclient"
	"github.com/kbukum/sseclient/provider"
	"github.com/kbukum/sseclient/resilience"
)

// loginCall is one login request on the wire.
type loginCall struct {
	URL  string
	Body any
	Auth *httpclient.AuthConfig
}

type userLoginInput struct {
	Email string
	Hash  string
}

type hubLoginInput struct {
	ID    string
	Token string
}

// newLoginExchange posts a loginCall and returns the access token. Retry,
// when configured, is limited to connection failures and 5xx responses.
func newLoginExchange(c *httpclient.Client, retry *resilience.RetryConfig) provider.RequestResponse[loginCall, string] {
	exchange := provider.Func("login", func(ctx context.Context, call loginCall) (string, error) {
		resp, err := httpclient.Post[loginResponse](c, ctx, call.URL, call.Body, httpclient.WithRequestAuth(call.Auth))
		return loginToken(resp, err)
	})
	return provider.WithResilience(exchange, provider.ResilienceConfig{Retry: retry})
}

func newUserLogin(exchange provider.RequestResponse[loginCall, string], cfg Config) provider.RequestResponse[userLoginInput, string] {
	return provider.Adapt(exchange, FlowUser+"-login",
		func(_ context.Context, in userLoginInput) (loginCall, error) {
			return loginCall{
				URL:  cfg.LoginURL,
				Body: loginRequest{Email: in.Email, Password: in.Hash},
			}, nil
		},
		keepToken,
	)
}

func newHubLogin(exchange provider.RequestResponse[loginCall, string], cfg Config) provider.RequestResponse[hubLoginInput, string] {
	return provider.Adapt(exchange, FlowHub+"-login",
		func(_ context.Context, in hubLoginInput) (loginCall, error) {
			return loginCall{
				URL:  cfg.hubLoginURL(in.ID),
				Auth: httpclient.QueryAuth("token", in.Token),
			}, nil
		},
		keepToken,
	)
}

func keepToken(token string) (string, error) { return token, nil }

func loginRetry(cfg Config) *resilience.RetryConfig {
	if cfg.LoginRetry == nil {
		return nil
	}
	rc := *cfg.LoginRetry
	rc.RetryIf = httpclient.IsRetryable
	return &rc
}
