// Package httpclient provides the HTTP client used for login calls and for
// opening event streams. It handles authentication, retry with backoff,
// status-code classification, and optional HTTP/2 health checking.
//
// Do returns the full response body together with a classified *Error for
// non-2xx statuses, so callers can decode error payloads:
//
//	client, _ := httpclient.New(httpclient.Config{
//	    Timeout: 30 * time.Second,
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "https://api.example.com/Users/login",
//	    Body:   map[string]string{"email": email, "password": hash},
//	})
//
// Post decodes the JSON body, error bodies included:
//
//	res, err := httpclient.Post[loginResponse](client, ctx, loginURL, body)
//
// DoStream opens a long-lived response. For text/event-stream bodies the
// StreamResponse carries an sse.Reader.
package httpclient
