package entity

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every request validation error.
var ErrValidation = errors.New("validation failed")

// MissingFieldError reports the first required field that was empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrValidation
}

// UnknownCommandError reports a slash command outside the allow-list.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Command)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrValidation
}

// PayloadTooLargeError reports command text over the render limit.
// Length and Limit count user-perceived characters.
type PayloadTooLargeError struct {
	Length int
	Limit  int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("text too long: %d characters (limit %d)", e.Length, e.Limit)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrValidation
}
