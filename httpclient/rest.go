package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithRequestAuth overrides authentication for the request. A nil auth keeps
// the client default.
func WithRequestAuth(auth *AuthConfig) RequestOption {
	return func(r *Request) {
		if auth != nil {
			r.Auth = auth
		}
	}
}

// Post sends body as JSON and decodes the JSON response into T.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPost, path, body, opts...)
}

// doTyped executes a request and decodes its JSON body.
//
// On a non-2xx status the error is returned together with the decoded error
// body when it is valid JSON. The body is taken from the response, or from
// the classified *Error when retry has dropped the response.
func doTyped[T any](c *Client, ctx context.Context, method, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	req := Request{
		Method: method,
		Path:   path,
		Body:   body,
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		raw, status, headers := errorBody(resp, err)
		if len(raw) > 0 {
			var data T
			if jsonErr := json.Unmarshal(raw, &data); jsonErr == nil {
				return &TypedResponse[T]{StatusCode: status, Headers: headers, Data: data}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, fmt.Errorf("httpclient: decode response: %w", err)
		}
	}

	return &TypedResponse[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}

func errorBody(resp *Response, err error) ([]byte, int, map[string]string) {
	if resp != nil {
		return resp.Body, resp.StatusCode, resp.Headers
	}
	var httpErr *Error
	if errors.As(err, &httpErr) && httpErr.StatusCode > 0 {
		return httpErr.Body, httpErr.StatusCode, nil
	}
	return nil, 0, nil
}
