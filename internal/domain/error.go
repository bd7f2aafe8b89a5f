package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These determine how a failure is reported in run logs and exit codes.
const (
	EINTERNAL    = "internal"    // Unexpected failure (bug, I/O)
	EINVALID     = "invalid"     // Bad input in the import file or a rejected row
	ENOTFOUND    = "not_found"   // Import file or resource missing
	EUNAVAILABLE = "unavailable" // Remote service unreachable or failing
)

// Error represents an application error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error code (e.g., EINVALID, ENOTFOUND).
	Code string

	// Message is a human-readable error message written to run logs.
	Message string

	// Op is the operation where the error occurred (e.g., "import.validate").
	// Used for debugging and logging.
	Op string

	// Err is the underlying error, if any. Used for error wrapping.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// coded is implemented by the package-level error types (address, platform)
// that carry their own code without importing this package.
type coded interface {
	ErrorCode() string
}

// messaged is implemented by package-level error types with a user-facing message.
type messaged interface {
	ErrorMessage() string
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for errors that carry no code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}

	return EINTERNAL
}

// ErrorMessage extracts the message to record for a failed row. Domain and
// package errors report their own message; anything else reports err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil && e.Code == EINTERNAL {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}

	var m messaged
	if errors.As(err, &m) {
		return m.ErrorMessage()
	}

	return err.Error()
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}

	return ""
}

// Errorf creates a new domain error with formatted message.
// Example: domain.Errorf(domain.EINVALID, "import.validate", "column %d is empty", n)
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a domain error code and operation.
// Preserves the underlying error for logging while providing structure.
// Returns nil if err is nil.
// Example: domain.WrapError(err, domain.ENOTFOUND, "import.open", "file could not be opened")
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
