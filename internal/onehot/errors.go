package onehot

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a feature matrix cell that cannot be encoded.
type InvalidInputError struct {
	Row    int
	Column int
	Value  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at row %d, column %d (value %d): %s", e.Row, e.Column, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }
