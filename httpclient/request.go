package httpclient

import (
	"io"
	"net/http"

	"github.com/kbukum/sseclient/httpclient/sse"
)

// Request is one outbound call: a login POST or the GET that opens an
// event stream.
type Request struct {
	Method string
	// Path is joined to Config.BaseURL. Login and stream URLs are usually
	// absolute, in which case BaseURL is ignored.
	Path string
	// Headers override Config.Headers for this call.
	Headers map[string]string
	// Query is merged into the URL's existing query; the stream URL already
	// carries accessToken and projectName.
	Query map[string]string
	// Body is sent as-is for io.Reader, []byte and string; anything else is
	// JSON-encoded, as the login payload is.
	Body any
	// Auth replaces Config.Auth for this call. Hub login passes its token
	// this way as a query parameter.
	Auth *AuthConfig
	// SSEOptions configure the event reader when DoStream gets a
	// text/event-stream response.
	SSEOptions []sse.Option
}

// Response is a fully read response. On a non-2xx status Do returns it
// alongside the classified *Error.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError reports a 4xx or 5xx status.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// StreamResponse is an open streaming response. SSE is set for
// text/event-stream bodies, Body otherwise.
type StreamResponse struct {
	StatusCode int
	Headers    map[string]string
	SSE        sse.Reader
	Body       io.ReadCloser

	rawResp *http.Response
}

// Close closes the reader or body, whichever is set.
func (r *StreamResponse) Close() error {
	if r.SSE != nil {
		return r.SSE.Close()
	}
	if r.Body != nil {
		return r.Body.Close()
	}
	if r.rawResp != nil && r.rawResp.Body != nil {
		return r.rawResp.Body.Close()
	}
	return nil
}
