package provider

import "context"

// Provider is the base interface all providers implement.
type Provider interface {
	// Name returns the provider's name, used in logs.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse takes one input and returns one output.
// Login exchanges and other unary HTTP calls have this shape.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Func adapts a plain function to a RequestResponse.
func Func[I, O any](name string, fn func(ctx context.Context, input I) (O, error)) RequestResponse[I, O] {
	return &funcRR[I, O]{name: name, fn: fn}
}

type funcRR[I, O any] struct {
	name string
	fn   func(ctx context.Context, input I) (O, error)
}

func (f *funcRR[I, O]) Name() string                       { return f.name }
func (f *funcRR[I, O]) IsAvailable(_ context.Context) bool { return true }
func (f *funcRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.fn(ctx, input)
}
