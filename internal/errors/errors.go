package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// Lexical indicates a malformed token in a tweaks file
	Lexical ErrorCode = "LEXICAL"
	// Syntax indicates an unexpected token or premature end of input
	Syntax ErrorCode = "SYNTAX"
	// InvalidType indicates malformed type signature text
	InvalidType ErrorCode = "INVALID_TYPE"
	// Registry indicates a reserved or duplicate rule registration
	Registry ErrorCode = "REGISTRY"
	// RuleValidation indicates a rule rejected its arguments or declaration site
	RuleValidation ErrorCode = "RULE_VALIDATION"
	// UnknownRule indicates a rule id with no registered factory
	UnknownRule ErrorCode = "UNKNOWN_RULE"
	// IO indicates a file could not be read or written
	IO ErrorCode = "IO"
	// Config indicates invalid configuration
	Config ErrorCode = "CONFIG"
	// InternalError indicates a programming-contract violation
	InternalError ErrorCode = "INTERNAL"
)

// Error is a syntax-tweaker error with a code and, for parse errors, a position.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Line    int         `json:"line,omitempty"`
	Column  int         `json:"column,omitempty"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error with an underlying cause
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// At records the 1-based source position the error refers to.
func (e *Error) At(line, column int) *Error {
	e.Line = line
	e.Column = column
	return e
}

// HasPosition reports whether a source position was recorded.
func (e *Error) HasPosition() bool {
	return e.Line > 0
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err's chain contains an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.cause
	}
	return false
}
