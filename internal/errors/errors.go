package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeNetworkFailure    = "NETWORK_FAILURE"
	ErrCodeUpstreamRejection = "UPSTREAM_REJECTION"
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "UPSTREAM_REJECTION")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown in the dashboard error banner. Malformed
// responses are reported the same way as network failures.
func (e *AppError) UserMessage() string {
	if e.Code == ErrCodeMalformedResponse {
		return "Failed to fetch user data: " + e.Message
	}
	return e.Message
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNetworkError reports a transport failure or a non-success HTTP status.
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeNetworkFailure,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewUpstreamRejection reports a FAILED status from the data source, such as
// an unknown handle. The upstream comment becomes the message.
func NewUpstreamRejection(comment string) *AppError {
	return &AppError{
		Code:    ErrCodeUpstreamRejection,
		Message: comment,
		Status:  http.StatusBadGateway,
	}
}

func NewMalformedResponse(what string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedResponse,
		Message: fmt.Sprintf("unexpected %s payload", what),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// Message extracts the user-facing text of err, falling back to fallback
// when err carries none.
func Message(err error, fallback string) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if msg := appErr.UserMessage(); msg != "" {
			return msg
		}
		return fallback
	}
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
