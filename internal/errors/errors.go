package errors

import "errors"

// Code identifies a structured error type used across themekit.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Construction errors. A controller is never returned alongside these.
	CodeDuplicateID           Code = "duplicate_id"
	CodeUnknownDefaultID      Code = "unknown_default_id"
	CodeConflictingInitPolicy Code = "conflicting_init_policy"
	CodeInvalidTheme          Code = "invalid_theme"
	CodeConfigurationError    Code = "configuration_error"

	// Usage errors, recoverable by retrying with a valid id.
	CodeUnknownID          Code = "unknown_id"
	CodeActiveThemeRemoval Code = "active_theme_removal"

	// Storage and fan-out errors.
	CodePersistenceFailed Code = "persistence_failed"
	CodeSubscriberPanic   Code = "subscriber_panic"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
