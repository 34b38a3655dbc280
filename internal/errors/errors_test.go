package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError_Is(t *testing.T) {
	err := NewAuthError("key rejected")

	if !errors.Is(err, ErrAuthFailed) {
		t.Error("AuthError should match ErrAuthFailed")
	}
	if !IsAuthError(err) {
		t.Error("IsAuthError should report true for AuthError")
	}
	if !IsAuthError(fmt.Errorf("send: %w", err)) {
		t.Error("IsAuthError should see through wrapping")
	}
}

func TestRateLimitError_Is(t *testing.T) {
	err := NewRateLimitError("quota exceeded")

	if !errors.Is(err, ErrRateLimited) {
		t.Error("RateLimitError should match ErrRateLimited")
	}
	if !IsRateLimitError(fmt.Errorf("send: %w", err)) {
		t.Error("IsRateLimitError should see through wrapping")
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("generate", "https://example.com", cause)

	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError should report true for NetworkError")
	}
	if IsNetworkError(NewAuthError("nope")) {
		t.Error("IsNetworkError should report false for AuthError")
	}
}

func TestParseError_Is(t *testing.T) {
	err := NewParseError("no candidates found", "candidates")

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	err := NewAPIError(503, "https://example.com", "overloaded")

	if got := GetHTTPStatus(err); got != 503 {
		t.Errorf("GetHTTPStatus = %d, want 503", got)
	}
	if got := GetHTTPStatus(fmt.Errorf("send: %w", err)); got != 503 {
		t.Errorf("GetHTTPStatus through wrapping = %d, want 503", got)
	}
	if got := GetHTTPStatus(errors.New("plain")); got != 0 {
		t.Errorf("GetHTTPStatus for plain error = %d, want 0", got)
	}
}

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		status  int
		message string
		check   func(error) bool
		name    string
	}{
		{400, "API key not valid", IsAuthError, "invalid key as 400"},
		{400, "malformed request", func(e error) bool { return !IsAuthError(e) }, "plain 400 is not auth"},
		{401, "unauthorized", IsAuthError, "401"},
		{403, "forbidden", IsAuthError, "403"},
		{429, "resource exhausted", IsRateLimitError, "429"},
		{500, "internal", func(e error) bool { return GetHTTPStatus(e) == 500 }, "500 keeps status"},
	}

	for _, tt := range tests {
		err := FromStatusCode(tt.status, "https://example.com", tt.message)
		if !tt.check(err) {
			t.Errorf("%s: classification failed for %v", tt.name, err)
		}
	}
}

func TestAPIError_Message(t *testing.T) {
	err := NewAPIError(404, "https://example.com/models/x", "model not found")

	want := "API error [404] at https://example.com/models/x: model not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
