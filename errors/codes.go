package errors

// ErrorCode represents a machine-readable failure reason.
type ErrorCode string

// Generation failure taxonomy. Every failed request carries exactly one of these.
const (
	// ErrCodeAuth indicates a missing or rejected provider credential.
	ErrCodeAuth ErrorCode = "AUTH_ERROR"
	// ErrCodeUpstream indicates the provider reported a failure or returned a non-2xx status.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrCodeTimeout indicates a deadline was exceeded or the caller cancelled the request.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidResponse indicates a response (or request) did not match the expected contract.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	// ErrCodeIO indicates the local artifact write failed.
	ErrCodeIO ErrorCode = "IO_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeUpstream: true,
	ErrCodeTimeout:  true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Retrying is the caller's decision; nothing in this module retries on its own.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// Reason returns the human-facing name of the code (e.g. "AuthError").
func (c ErrorCode) Reason() string {
	switch c {
	case ErrCodeAuth:
		return "AuthError"
	case ErrCodeUpstream:
		return "UpstreamError"
	case ErrCodeTimeout:
		return "Timeout"
	case ErrCodeInvalidResponse:
		return "InvalidResponse"
	case ErrCodeIO:
		return "IOError"
	default:
		return string(c)
	}
}
