package stringutil

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every argument validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError reports which argument was rejected and why.
type ArgumentError struct {
	Name   string
	Reason string
}

// Error names the argument and the reason it was rejected.
func (argumentError *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument, argumentError.Name, argumentError.Reason)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (argumentError *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func invalidArgument(name string, reason string) error {
	return &ArgumentError{Name: name, Reason: reason}
}
