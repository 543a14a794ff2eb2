package services

import (
	"errors"
	"strings"
)

// Error kinds returned by the services. Handlers map each kind to an HTTP
// status; the wrapped message is the user-facing text.
var (
	ErrNotFound              = errors.New("not found")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrBlockedByDependencies = errors.New("blocked by dependencies")
	ErrConflict              = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// errKind attaches a user-facing message to one of the sentinel kinds so that
// errors.Is(err, kind) still matches.
func errKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// ValidationErrors collects one message per offending input. For batch
// dependency validation the messages are positional, 1-indexed.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, " ")
}
