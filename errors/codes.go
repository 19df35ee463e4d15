package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeStreamError indicates the event stream closed or failed.
	ErrCodeStreamError ErrorCode = "STREAM_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidFormat indicates a payload could not be decoded.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Authentication errors
const (
	// ErrCodeAuthRequired indicates a stream was started without a token
	// while authentication is required.
	ErrCodeAuthRequired ErrorCode = "AUTH_REQUIRED"
	// ErrCodeUnauthorized indicates a login endpoint answered 401.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeLoginFailed is the generic login rejection.
	ErrCodeLoginFailed ErrorCode = "LOGIN_FAILED"
	// ErrCodeEmailNotVerified indicates the account email is not verified.
	ErrCodeEmailNotVerified ErrorCode = "LOGIN_FAILED_EMAIL_NOT_VERIFIED"
	// ErrCodeUnknown is a login failure the server did not classify.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
	// ErrCodeNoCredentials indicates a re-login was requested with nothing to replay.
	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"
	// ErrCodeTokenExpired is the server signal for an expired access token.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidAccessToken is the server signal for a rejected access token.
	ErrCodeInvalidAccessToken ErrorCode = "INVALID_ACCESS_TOKEN"
	// ErrCodeTokenRefreshFailed indicates automatic re-authentication gave up.
	ErrCodeTokenRefreshFailed ErrorCode = "COULD_NOT_REFRESH_TOKEN"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStopped indicates the session was stopped while an operation waited.
	ErrCodeStopped ErrorCode = "STOPPED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeStreamError:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
