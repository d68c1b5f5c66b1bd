// Package errors provides structured error handling for hostsweep operations.
// It defines error codes, error types, and utilities for creating and
// classifying errors with context and structured information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeInputParse    ErrorCode = "INPUT_PARSE"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"
	CodePermission    ErrorCode = "PERMISSION"
	CodeIdentity      ErrorCode = "IDENTITY_UNKNOWN"

	// Network and scanning errors.
	CodeHostUnreachable ErrorCode = "HOST_UNREACHABLE"
	CodeProbeFailed     ErrorCode = "PROBE_FAILED"
	CodeTargetInvalid   ErrorCode = "TARGET_INVALID"
)

// Process exit codes returned by ExitCode.
const (
	ExitFailure       = 1
	ExitPermission    = 1
	ExitIdentity      = 2
	ExitConfiguration = 3
	ExitInput         = 4
)

// ScanError represents an error that occurred during scanning operations.
type ScanError struct {
	Code      ErrorCode
	Message   string
	Target    string
	Operation string
	Cause     error
	Context   map[string]interface{}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Target != "" {
		msg = fmt.Sprintf("%s (target: %s)", msg, e.Target)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ScanError) WithContext(key string, value interface{}) *ScanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Context: make(map[string]interface{}),
	}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// WrapScanErrorWithTarget wraps an error with target information.
func WrapScanErrorWithTarget(code ErrorCode, message, target string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// ConfigError represents configuration-related errors: invalid source
// addresses, address blocks and configuration file values.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// InputError represents text that could not be parsed at the point of entry,
// either from a flag or typed interactively.
type InputError struct {
	Code  ErrorCode
	Field string
	Input string
	Cause error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	msg := fmt.Sprintf("[%s] invalid %s %q", e.Code, e.Field, e.Input)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error {
	return e.Cause
}

// NewInputError creates an input parse error for the named field.
func NewInputError(field, input string, cause error) *InputError {
	return &InputError{
		Code:  CodeInputParse,
		Field: field,
		Input: input,
		Cause: cause,
	}
}

// coded is satisfied by every error type in this package.
type coded interface {
	error
	code() ErrorCode
}

func (e *ScanError) code() ErrorCode   { return e.Code }
func (e *ConfigError) code() ErrorCode { return e.Code }
func (e *InputError) code() ErrorCode  { return e.Code }

// IsCode checks if an error, or any error it wraps, has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from the first coded error in the chain.
func GetCode(err error) ErrorCode {
	var c coded
	if stderrors.As(err, &c) {
		return c.code()
	}
	return CodeUnknown
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ExitCode maps an error to the process exit code the CLI terminates with.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case CodePermission:
		return ExitPermission
	case CodeIdentity:
		return ExitIdentity
	case CodeConfiguration:
		return ExitConfiguration
	case CodeInputParse, CodeValidation:
		return ExitInput
	default:
		return ExitFailure
	}
}

// Common error creation functions

// ErrInvalidTarget creates an error for invalid scan targets.
func ErrInvalidTarget(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTargetInvalid, "Invalid target specification", target)
}

// ErrProbeFailed creates an error for a probing unit of work that terminated abnormally.
func ErrProbeFailed(target string, cause error) *ScanError {
	return WrapScanErrorWithTarget(CodeProbeFailed, "Probe task failed", target, cause)
}

// ErrPermission creates an error for a process lacking the required privilege.
func ErrPermission(message string, cause error) *ScanError {
	return WrapScanError(CodePermission, message, cause)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}
