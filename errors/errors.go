package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status code associated with this error, if any.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// ConnectionFailed creates a new AppError for a failed connection to a service.
func ConnectionFailed(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// InvalidFormat creates a new AppError for a payload that failed to decode.
func InvalidFormat(what string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("Could not decode %s.", what),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Cause: cause,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// --- Session error taxonomy ---

// AuthRequired is returned by Start when authentication is required and no
// access token is installed.
func AuthRequired() *AppError {
	return &AppError{
		Code: ErrCodeAuthRequired, Message: "Authentication required: log in or set an access token before starting the stream.",
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Unauthorized is returned when a login endpoint answers 401.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication failed."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// LoginFailed classifies a non-401 login failure by the server's error code.
// Codes other than LOGIN_FAILED and LOGIN_FAILED_EMAIL_NOT_VERIFIED map to UNKNOWN.
func LoginFailed(serverCode string, status int, cause error) *AppError {
	var code ErrorCode
	var msg string
	switch ErrorCode(serverCode) {
	case ErrCodeEmailNotVerified:
		code, msg = ErrCodeEmailNotVerified, "Login failed: email address is not verified."
	case ErrCodeLoginFailed:
		code, msg = ErrCodeLoginFailed, "Login failed: invalid credentials."
	default:
		code, msg = ErrCodeUnknown, "Login failed for an unknown reason."
	}
	e := &AppError{
		Code: code, Message: msg, HTTPStatus: status, Retryable: false, Cause: cause,
	}
	if serverCode != "" {
		e.WithDetail("server_code", serverCode)
	}
	return e
}

// NoCredentials is returned by RetryLogin when no credential was recorded.
func NoCredentials() *AppError {
	return &AppError{
		Code: ErrCodeNoCredentials, Message: "No stored credentials to retry login with.",
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// StreamError wraps a transport-level failure of the event stream.
func StreamError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeStreamError, Message: "The event stream failed.",
		Retryable: true, Cause: cause,
	}
}

// TokenRefreshFailed describes a failed automatic re-authentication.
func TokenRefreshFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTokenRefreshFailed, Message: "Could not refresh the access token.",
		HTTPStatus: http.StatusUnauthorized, Retryable: false, Cause: cause,
	}
}

// Stopped is returned to callers waiting on a session that was stopped.
func Stopped() *AppError {
	return &AppError{
		Code: ErrCodeStopped, Message: "The session was stopped.",
		Retryable: false,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsLoginFailure reports whether err is any LoginFailedError sub-kind.
func IsLoginFailure(err error) bool {
	return HasCode(err, ErrCodeLoginFailed) ||
		HasCode(err, ErrCodeEmailNotVerified) ||
		HasCode(err, ErrCodeUnknown)
}
