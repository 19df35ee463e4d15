package errors

import "net/http"

// ErrorResponse is the JSON body returned by the login endpoints on failure.
//
//	{"error": {"statusCode": 401, "code": "LOGIN_FAILED", "message": "..."}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	StatusCode int       `json:"statusCode,omitempty"`
	Code       ErrorCode `json:"code,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	status := e.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return ErrorResponse{
		Error: ErrorBody{
			StatusCode: status,
			Code:       e.Code,
			Message:    e.Message,
		},
	}
}
