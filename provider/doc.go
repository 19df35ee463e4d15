// Package provider defines a small generic shape for unary backend calls and
// the wrappers that compose around it.
//
//   - RequestResponse[I, O]: one input, one output (an HTTP login exchange)
//   - Adapt: map domain inputs and outputs onto a backend call
//   - WithResilience: retry the call with exponential backoff
//
// Usage:
//
//	exchange := provider.Func("login", postLogin)
//	exchange = provider.WithResilience(exchange, provider.ResilienceConfig{Retry: &retryCfg})
//	userLogin := provider.Adapt(exchange, "user-login", toLoginCall, keepToken)
//	token, err := userLogin.Execute(ctx, creds)
package provider
