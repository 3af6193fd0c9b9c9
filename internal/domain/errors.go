package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Caller supplied insufficient data; the request is never sent to the gateway
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// Programmer error: the operation name has no registered schema
	ErrorCodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"

	// Transport is misconfigured or missing; fatal, never retried
	ErrorCodeTransportUnavailable ErrorCode = "TRANSPORT_UNAVAILABLE"

	// Remote resource absent; used as a signal (e.g. customer not yet vaulted)
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// Gateway rejected the request with structured field-level errors
	ErrorCodeAPIError ErrorCode = "API_ERROR"

	// Error body could not be parsed
	ErrorCodeParseError ErrorCode = "PARSE_ERROR"
)

// GatewayError represents a structured error from the gateway integration layer.
// Messages carries the translated, deduplicated per-field error messages when
// the gateway returned a structured error document.
type GatewayError struct {
	Err      error
	Code     ErrorCode
	Message  string
	Messages []string
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new gateway error
func NewGatewayError(code ErrorCode, message string) *GatewayError {
	return &GatewayError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a gateway error code
func WrapError(code ErrorCode, message string, err error) *GatewayError {
	return &GatewayError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsGatewayError checks if an error is a GatewayError with the given code
func IsGatewayError(err error, code ErrorCode) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a GatewayError
func GetErrorCode(err error) ErrorCode {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Code
	}
	return ""
}

// IsNotFound reports whether an error represents a missing remote resource
func IsNotFound(err error) bool {
	return IsGatewayError(err, ErrorCodeNotFound)
}

// UserMessages extracts the caller-safe message list from an error. For API
// errors this is the translated field-error list; for everything else a single
// sanitized message. Raw transport errors are never exposed to shoppers.
func UserMessages(err error) []string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		if len(gwErr.Messages) > 0 {
			return gwErr.Messages
		}
		return []string{gwErr.Message}
	}
	return []string{"An unexpected error occurred. Please try again."}
}

var (
	ErrTransportUnavailable = NewGatewayError(ErrorCodeTransportUnavailable, "gateway transport is not configured")
	ErrCustomerNotFound     = NewGatewayError(ErrorCodeNotFound, "customer not found in vault")
	ErrEmptyParams          = NewGatewayError(ErrorCodeInvalidRequest, "request parameters are empty")
)
