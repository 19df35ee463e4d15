// Package resilience provides retry with exponential backoff for
// request/response calls such as login requests.
//
//	resp, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (*Response, error) {
//	    return client.doOnce(ctx, req)
//	})
//
// Long-lived streams are not retried here; their recovery is owned by the
// session state machine.
package resilience
