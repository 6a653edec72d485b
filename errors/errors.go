package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified failure type.
type AppError struct {
	// Code is the machine-readable failure reason.
	Code ErrorCode `json:"code"`
	// Message is the human-readable detail.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
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

// Reason returns the human-facing name of the error's code.
func (e *AppError) Reason() string { return e.Code.Reason() }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
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

// --- Taxonomy constructors ---

// Auth creates an AppError for a missing or rejected credential.
func Auth(provider, reason string) *AppError {
	if reason == "" {
		reason = "credential missing"
	}
	return &AppError{
		Code: ErrCodeAuth, Message: fmt.Sprintf("%s: %s", provider, reason),
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
		Details: map[string]any{"provider": provider},
	}
}

// MissingCredential creates an AppError for a provider whose required key is not configured.
func MissingCredential(provider, key string) *AppError {
	return Auth(provider, fmt.Sprintf("%s is not set", key)).WithDetail("credential", key)
}

// Upstream creates an AppError for a provider-reported failure.
// status is the HTTP status returned by the provider, or 0 when the provider
// reported the failure inside a successful response.
func Upstream(provider string, status int, detail string) *AppError {
	details := map[string]any{"provider": provider}
	if status > 0 {
		details["status"] = status
	}
	return &AppError{
		Code: ErrCodeUpstream, Message: detail,
		HTTPStatus: http.StatusBadGateway, Retryable: true, Details: details,
	}
}

// Timeout creates an AppError for a deadline exceeded during the named operation.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s: deadline exceeded", operation),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Cancelled creates an AppError for a request aborted by the caller.
// It shares the TIMEOUT code and carries the fixed detail "cancelled".
func Cancelled() *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "cancelled",
		HTTPStatus: 499, Retryable: false,
	}
}

// InvalidResponse creates an AppError for a response that does not match the expected shape.
func InvalidResponse(detail string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidResponse, Message: detail,
		HTTPStatus: http.StatusBadGateway, Retryable: false,
	}
}

// MissingField creates an AppError for an expected response field that is absent.
func MissingField(provider, field string) *AppError {
	return InvalidResponse(fmt.Sprintf("%s: response missing %s", provider, field)).
		WithDetails(map[string]any{"provider": provider, "field": field})
}

// Validation creates an AppError for a request that violates its invariants.
// It shares the INVALID_RESPONSE code but maps to 400.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidResponse, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// UnknownProvider creates an AppError for a provider id with no registered adapter.
func UnknownProvider(id string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidResponse, Message: "unknown provider",
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"provider": id},
	}
}

// IO creates an AppError for a failed local filesystem operation.
func IO(op, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeIO, Message: fmt.Sprintf("%s %s failed", op, path),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"path": path}, Cause: cause,
	}
}
