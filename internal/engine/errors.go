// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeNavigationTimeout ErrorCode = "NAVIGATION_TIMEOUT"
	ErrCodeBrowserLaunch     ErrorCode = "BROWSER_LAUNCH"
	ErrCodeParseError        ErrorCode = "PARSE_ERROR"
	ErrCodeSchemaMismatch    ErrorCode = "SCHEMA_MISMATCH"
	ErrCodePersistError      ErrorCode = "PERSIST_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION"
)

// Sentinels for errors.Is checks. They match any EngineError carrying the same code.
var (
	ErrNavigationTimeout = &EngineError{Code: ErrCodeNavigationTimeout, Message: "required page element did not appear"}
	ErrBrowserLaunch     = &EngineError{Code: ErrCodeBrowserLaunch, Message: "browser could not be started"}
	ErrParse             = &EngineError{Code: ErrCodeParseError, Message: "failed to parse results table"}
	ErrSchemaMismatch    = &EngineError{Code: ErrCodeSchemaMismatch, Message: "archive columns differ from scraped columns"}
	ErrPersist           = &EngineError{Code: ErrCodePersistError, Message: "archive was not written"}
	ErrValidation        = &EngineError{Code: ErrCodeValidation, Message: "invalid input"}
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first EngineError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// NavigationTimeout reports that selector did not satisfy its wait condition in time.
func NavigationTimeout(selector string, err error) *EngineError {
	return NewEngineError(ErrCodeNavigationTimeout, fmt.Sprintf("waiting for %q", selector), err).
		WithDetail("selector", selector)
}
