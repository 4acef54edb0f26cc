package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorCode classifies an operation failure
type ErrorCode string

const (
	CodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeNoApplicableThesis ErrorCode = "NO_APPLICABLE_THESIS"
	CodeThesisUnavailable  ErrorCode = "THESIS_UNAVAILABLE"
	CodeCorruptDocument    ErrorCode = "CORRUPT_DOCUMENT"
	CodeStoreUnavailable   ErrorCode = "STORE_UNAVAILABLE"
	CodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	CodeInternal           ErrorCode = "INTERNAL"
)

// Stage is a step of petition generation
type Stage string

const (
	StageValidating Stage = "validating"
	StageSelecting  Stage = "selecting"
	StageFetching   Stage = "fetching"
	StageMerging    Stage = "merging"
	StagePersisting Stage = "persisting"
	StageCommitted  Stage = "committed"
	StageFailed     Stage = "failed"
)

// Error is the error returned by service operations
type Error struct {
	Code    ErrorCode
	Message string
	// Stage is set for generation failures
	Stage Stage
	// ThesisID names the thesis whose document caused the failure
	ThesisID uuid.UUID
	Err      error
}

func (e *Error) Error() string {
	msg := e.Reason()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Reason is the message without the underlying cause, safe to show callers
func (e *Error) Reason() string {
	if e.ThesisID != uuid.Nil {
		return fmt.Sprintf("%s (thesis %s)", e.Message, e.ThesisID)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidRequest     = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrNoApplicableThesis = &Error{Code: CodeNoApplicableThesis, Message: "no thesis applies to the given answers"}
	ErrThesisUnavailable  = &Error{Code: CodeThesisUnavailable, Message: "thesis document unavailable"}
	ErrCorruptDocument    = &Error{Code: CodeCorruptDocument, Message: "corrupt document"}
	ErrStoreUnavailable   = &Error{Code: CodeStoreUnavailable, Message: "document store unavailable"}
	ErrPersistenceFailure = &Error{Code: CodePersistenceFailure, Message: "persistence failure"}
)

// CodeOf returns the code of err, or CodeInternal for errors outside the taxonomy
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func invalid(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func persistence(message string, err error) *Error {
	return &Error{Code: CodePersistenceFailure, Message: message, Err: err}
}

func storeUnavailable(message string, err error) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: message, Err: err}
}
