// Package errors provides structured error types and exit codes for treediff.
package errors

import (
	"errors"
	"fmt"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// Exit codes returned by the command line.
const (
	ExitSuccess     = 0 // Success, every comparison matched
	ExitFailure     = 1 // Mismatches found or a runtime error
	ExitConfigError = 2 // Invalid configuration or tolerance policy
	ExitInputError  = 3 // Unreadable or malformed fixture or data input
)

// Is and As mirror the standard library functions.
var (
	Is = errors.Is
	As = errors.As
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindInput
	KindMismatch
)

// Error is the base error type for treediff commands.
type Error struct {
	Kind    ErrorKind
	Message string
	Case    string // Fixture case name if applicable
	Path    string // Value path if applicable
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Case != "" {
		msg = fmt.Sprintf("[%s] %s", e.Case, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindInput:
		return ExitInputError
	default:
		return ExitFailure
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...any) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Input creates a new input error.
func Input(message string) *Error {
	return &Error{
		Kind:    KindInput,
		Message: message,
	}
}

// Inputf creates a new input error with formatting.
func Inputf(format string, args ...any) *Error {
	return Input(fmt.Sprintf(format, args...))
}

// Mismatch creates an error reporting that a comparison did not match.
func Mismatch(caseName string, mismatches int) *Error {
	return &Error{
		Kind:    KindMismatch,
		Case:    caseName,
		Message: fmt.Sprintf("%d mismatch(es)", mismatches),
	}
}

// Wrap wraps an error with additional context. The kind is derived from
// the wrapped error.
func Wrap(err error, message string) *Error {
	return &Error{
		Kind:    kindOf(err),
		Message: fmt.Sprintf("%s: %v", message, err),
		Cause:   err,
	}
}

// AsConfig wraps err as a configuration error.
func AsConfig(err error) *Error {
	return &Error{Kind: KindConfig, Message: err.Error(), Cause: err}
}

// AsInput wraps err as an input error.
func AsInput(err error) *Error {
	return &Error{Kind: KindInput, Message: err.Error(), Cause: err}
}

// CaseError attaches a fixture case name to err.
func CaseError(caseName string, err error) *Error {
	return &Error{
		Kind:    kindOf(err),
		Case:    caseName,
		Message: err.Error(),
		Cause:   err,
	}
}

func kindOf(err error) ErrorKind {
	var (
		e  *Error
		pe *treediff.PolicyError
		se *treediff.StructuralError
		me *treediff.MismatchError
	)
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.As(err, &pe):
		return KindConfig
	case errors.As(err, &se):
		return KindInput
	case errors.As(err, &me):
		return KindMismatch
	}
	return KindRuntime
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return (&Error{Kind: kindOf(err)}).ExitCode()
}
