// Package errors classifies infrastructure failures as transient or permanent
// so callers can decide whether to retry.
package errors

import (
	"errors"
	"fmt"
)

// TransientError is a failure that may succeed if retried.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a failure that will not go away on retry.
type PermanentError struct {
	Message string
	Err     error
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable.
func NewTransientError(message string, err error) error {
	return &TransientError{Message: message, Err: err}
}

// NewPermanentError wraps err as not retryable.
func NewPermanentError(message string, err error) error {
	return &PermanentError{Message: message, Err: err}
}

// IsTransientError reports whether err, or anything it wraps, is transient.
func IsTransientError(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanentError reports whether err, or anything it wraps, is permanent.
func IsPermanentError(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
