package onboardsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vaultsuite/onboard/pkg/httpx"
)

// Error codes used in API error responses.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeRetryLimitReached = "retry_limit_reached"
	ErrorCodeServerError       = "server_error"
)

// APIError is the service's error envelope. It implements the error
// interface and is used both by the HTTP handlers to write responses and
// by the SDK client to represent failures.
type APIError struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// NewAPIError creates an APIError with the given status, code and message.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

var (
	// ErrInvalidRequest is returned when the request body is malformed or
	// missing required fields.
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrServerError is returned when the service hit an unexpected fault.
	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}

	// ErrMethodNotAllowed is returned when the HTTP method is not allowed.
	ErrMethodNotAllowed = &APIError{
		StatusCode: http.StatusMethodNotAllowed,
		Code:       ErrorCodeInvalidRequest,
		Message:    "method not allowed",
	}
)

// parseErrorResponse turns a non-2xx response body into a typed APIError.
func parseErrorResponse(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = statusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
	}
}
