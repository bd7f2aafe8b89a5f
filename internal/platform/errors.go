package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ============================================================================
// PLATFORM ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.

const (
	codeInternal    = "internal"
	codeInvalid     = "invalid"
	codeUnavailable = "unavailable"
)

// ============================================================================
// PLATFORM ERROR TYPES
// ============================================================================

// PlatformError represents a client configuration or decoding error.
type PlatformError struct {
	Code    string
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}

// ErrorCode returns the error code.
func (e *PlatformError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *PlatformError) ErrorMessage() string {
	return e.Message
}

func newPlatformError(code, message string) *PlatformError {
	return &PlatformError{Code: code, Message: message}
}

var (
	// ErrBaseURLRequired is returned when the client has no API URI.
	ErrBaseURLRequired = newPlatformError(codeInvalid, "Platform URI is required")

	// ErrCredentialsRequired is returned when username or password is missing.
	ErrCredentialsRequired = newPlatformError(codeInvalid, "Platform username and password are required")
)

// ErrMalformedResponse creates an error for a response body that could not be decoded.
func ErrMalformedResponse(path string, err error) error {
	return &PlatformError{
		Code:    codeInternal,
		Message: fmt.Sprintf("malformed response from %s: %v", path, err),
	}
}

// APIError is returned for any non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Path       string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("platform API error (status %d) on %s", e.StatusCode, e.Path)
	}
	return fmt.Sprintf("platform API error (status %d) on %s: %s", e.StatusCode, e.Path, e.Message())
}

// Message joins the platform's error messages the way they are reported in run logs.
func (e *APIError) Message() string {
	return strings.Join(e.Messages, ", ")
}

// ErrorMessage returns the platform's messages, or the status line when the
// platform sent none.
func (e *APIError) ErrorMessage() string {
	if len(e.Messages) == 0 {
		return e.Error()
	}
	return e.Message()
}

// ErrorCode maps the status to a domain-style code.
func (e *APIError) ErrorCode() string {
	if e.IsClientError() {
		return codeInvalid
	}
	return codeUnavailable
}

// IsClientError reports whether the platform rejected the request itself
// rather than failing to serve it.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusRequestTimeout && e.StatusCode != http.StatusTooManyRequests
}

// newAPIError builds an APIError from a failed response body. The platform
// reports messages as a string, a list, or a map of field to messages.
func newAPIError(status int, path string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Path: path}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if msgs := flattenMessages(env.Error.Message); len(msgs) > 0 {
			apiErr.Messages = msgs
			return apiErr
		}
		if msgs := flattenMessages(env.Data); len(msgs) > 0 {
			apiErr.Messages = msgs
			return apiErr
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Messages = []string{text}
	}
	return apiErr
}

func flattenMessages(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, flattenMessages(item)...)
		}
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			out = append(out, flattenMessages(obj[k])...)
		}
		return out
	}

	return []string{string(raw)}
}
