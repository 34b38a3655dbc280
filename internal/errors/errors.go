// Package errors provides custom error types for the Gemini API client.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrRateLimited     = errors.New("rate limited")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
)

// AuthError represents a rejected or missing API key
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: API key rejected"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// APIError represents an API request failure
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// RateLimitError represents a quota or rate limit rejection
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// Is allows comparison with the ErrRateLimited sentinel
func (e *RateLimitError) Is(target error) bool {
	if target == ErrRateLimited {
		return true
	}
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// NetworkError represents a transport-level failure before any response
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with the ErrInvalidResponse sentinel
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsRateLimitError reports whether err is a quota or rate limit rejection
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// GetHTTPStatus extracts the HTTP status code from an APIError chain.
// Returns 0 when the error carries no status.
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// FromStatusCode maps an HTTP status to the appropriate typed error.
// The API reports an invalid key as 400 with an "API key" message rather
// than a 401, so that case is classified as an auth failure too.
func FromStatusCode(statusCode int, endpoint, message string) error {
	switch statusCode {
	case 400:
		if strings.Contains(message, "API key") {
			return NewAuthError(message)
		}
		return NewAPIError(statusCode, endpoint, message)
	case 401, 403:
		return NewAuthError(message)
	case 429:
		return NewRateLimitError(message)
	default:
		return NewAPIError(statusCode, endpoint, message)
	}
}
