package pawbasic

import (
	"errors"
	"fmt"
)

// Status is the integer status code a statement leaves in @error.
// Zero means success.
type Status int

const (
	StatusOK                Status = 0
	StatusFailed            Status = 1
	StatusSyntax            Status = 2
	StatusUndefined         Status = 3
	StatusOperatorUndefined Status = 4
	StatusArgumentCount     Status = 5
	StatusTypeMismatch      Status = 6
	StatusIndexUnavailable  Status = 7
	StatusIndexOutOfRange   Status = 8
	StatusDivisionByZero    Status = 9
	StatusConstant          Status = 10
	StatusContextCleared    Status = 11
	StatusNotFound          Status = 12
	StatusOverflow          Status = 13
)

var statusNames = map[Status]string{
	StatusOK:                "ok",
	StatusFailed:            "failed",
	StatusSyntax:            "syntax error",
	StatusUndefined:         "undefined object",
	StatusOperatorUndefined: "operator undefined",
	StatusArgumentCount:     "wrong argument count",
	StatusTypeMismatch:      "type mismatch",
	StatusIndexUnavailable:  "index unavailable",
	StatusIndexOutOfRange:   "index out of range",
	StatusDivisionByZero:    "division by zero",
	StatusConstant:          "constant redefinition",
	StatusContextCleared:    "context cleared",
	StatusNotFound:          "not found",
	StatusOverflow:          "overflow",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status %d", int(s))
}

// Sentinel errors usable with errors.Is.
var (
	ErrContextCleared  = &Error{Status: StatusContextCleared, Message: "context cleared"}
	ErrIncompleteBlock = errors.New("incomplete block")
	ErrBadSignature    = errors.New("invalid signature")
)

// Error is an interpreter-domain failure. The dispatcher folds it into the
// statement status instead of aborting the run.
type Error struct {
	Status  Status
	Message string
	Name    string // offending callee or identifier, if any
	Pos     int    // offset into the evaluated text, -1 if unknown
	wrapped error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is matches domain errors by status, so errors.Is(err, ErrContextCleared)
// holds for any error carrying StatusContextCleared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Status == e.Status
}

// NewError creates a domain error with a formatted message
func NewError(status Status, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...), Pos: -1}
}

func syntaxError(pos int, format string, args ...interface{}) *Error {
	return &Error{Status: StatusSyntax, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func undefinedError(name string) *Error {
	return &Error{Status: StatusUndefined, Message: "undefined object", Name: name, Pos: -1}
}

// withName returns err annotated with name when it is a domain error without
// one. Errors already tied to a line pass through.
func withName(err error, name string) error {
	var le *LineError
	if errors.As(err, &le) {
		return err
	}
	var de *Error
	if errors.As(err, &de) && de.Name == "" {
		cp := *de
		cp.Name = name
		return &cp
	}
	return err
}

// AsError reports whether err is (or wraps) a domain error.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// LineError is returned by a run configured with ThrowOnError. It attaches
// the failing line to the underlying domain error.
type LineError struct {
	Line int
	Name string
	Text string
	Err  error
}

func (e *LineError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Name, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
