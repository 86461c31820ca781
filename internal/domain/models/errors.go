package models

import (
	"errors"
	"fmt"
)

// ErrRejected marks input that failed validation. Nothing is stored when a
// submission is rejected.
var ErrRejected = errors.New("input rejected")

// RejectionError explains which field was rejected and why.
type RejectionError struct {
	Field   string
	Message string
}

// Reject builds a RejectionError with a formatted message.
func Reject(field, format string, args ...any) *RejectionError {
	return &RejectionError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *RejectionError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is lets callers match any rejection with errors.Is(err, ErrRejected).
func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}
