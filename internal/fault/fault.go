// Package fault defines the typed error values used throughout taskgraph.
//
// Every operation that can fail returns a *Error carrying a stable machine
// code plus a human-readable message. Callers branch on the code; the CLI
// layer decides exit codes and rendering.
package fault

import (
	"errors"
	"fmt"
)

// Code identifies a failure category. Codes are part of the tool's output
// contract (agents match on them), so they never change spelling.
type Code string

const (
	// Backend layer
	DBQueryFailed  Code = "DB_QUERY_FAILED"
	DBCommitFailed Code = "DB_COMMIT_FAILED"
	DBParseFailed  Code = "DB_PARSE_FAILED"

	// Domain layer
	TaskNotFound      Code = "TASK_NOT_FOUND"
	PlanNotFound      Code = "PLAN_NOT_FOUND"
	InvalidTransition Code = "INVALID_TRANSITION"
	TaskNotRunnable   Code = "TASK_NOT_RUNNABLE"
	CycleDetected     Code = "CYCLE_DETECTED"
	EdgeExists        Code = "EDGE_EXISTS"

	// Config
	ConfigNotFound    Code = "CONFIG_NOT_FOUND"
	ConfigParseFailed Code = "CONFIG_PARSE_FAILED"

	// Importer / parser
	FileReadFailed Code = "FILE_READ_FAILED"
	ParseFailed    Code = "PARSE_FAILED"

	// Catch-all
	ValidationFailed Code = "VALIDATION_FAILED"
	Unknown          Code = "UNKNOWN_ERROR"
)

// Error is a failure value with a stable code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that records cause for errors.Is/As chains.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the Code from err, or Unknown if err carries none.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return Unknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
