package types

import (
	"errors"
	"fmt"
)

// RefactorError represents errors in rename operations
type RefactorError struct {
	Type    ErrorType
	Message string
	File    string
	Line    int
	Column  int
	Cause   error
}

func (e *RefactorError) Error() string {
	msg := e.Message
	if e.File != "" {
		if e.Line > 0 {
			msg = fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
		} else {
			msg = fmt.Sprintf("%s: %s", e.File, e.Message)
		}
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *RefactorError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the same ErrorType.
func (e *RefactorError) Is(target error) bool {
	var s *sentinel
	if errors.As(target, &s) {
		return s.typ == e.Type
	}
	return false
}

type ErrorType int

const (
	ConfigUnavailable ErrorType = iota
	ConfigMalformed
	FileUnreadable
	FileTooLarge
	OperationTimedOut
	ApplyFailed
	InvalidRequest
)

// String returns the string representation of ErrorType
func (t ErrorType) String() string {
	switch t {
	case ConfigUnavailable:
		return "ConfigUnavailable"
	case ConfigMalformed:
		return "ConfigMalformed"
	case FileUnreadable:
		return "FileUnreadable"
	case FileTooLarge:
		return "FileTooLarge"
	case OperationTimedOut:
		return "OperationTimedOut"
	case ApplyFailed:
		return "ApplyFailed"
	case InvalidRequest:
		return "InvalidRequest"
	default:
		return "Unknown"
	}
}

type sentinel struct {
	typ ErrorType
	msg string
}

func (s *sentinel) Error() string { return s.msg }

// Sentinels for errors.Is checks against RefactorError values.
var (
	ErrConfigUnavailable = &sentinel{ConfigUnavailable, "alias configuration unavailable"}
	ErrConfigMalformed   = &sentinel{ConfigMalformed, "alias configuration malformed"}
	ErrFileUnreadable    = &sentinel{FileUnreadable, "file unreadable"}
	ErrFileTooLarge      = &sentinel{FileTooLarge, "file exceeds size limit"}
	ErrOperationTimedOut = &sentinel{OperationTimedOut, "operation timed out"}
	ErrApplyFailed       = &sentinel{ApplyFailed, "apply failed"}
	ErrInvalidRequest    = &sentinel{InvalidRequest, "invalid rename request"}
)

// TypeOf returns the ErrorType carried by err, and false when err is not a RefactorError.
func TypeOf(err error) (ErrorType, bool) {
	var re *RefactorError
	if errors.As(err, &re) {
		return re.Type, true
	}
	return 0, false
}

// TimeoutGuidance is appended to timeout reports.
const TimeoutGuidance = "raise limits.timeout or limits.max_files, or add exclude patterns to narrow the scan"
