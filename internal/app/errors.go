package app

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrTimetableNotFound = errors.New("timetable not found")
)

// ValidationError carries the full ordered reason list from the
// validator. It is deterministic and surfaced to the caller as a client
// error, never retried.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "timetable validation failed: " + strings.Join(e.Reasons, "; ")
}
