package slicefinder

import (
	"errors"
	"fmt"

	"github.com/hupe1980/slicefinder/dataset"
	"github.com/hupe1980/slicefinder/internal/onehot"
	"github.com/hupe1980/slicefinder/internal/resource"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigurationError.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput is wrapped by every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMemoryLimitExceeded is returned when a level's candidate set does
	// not fit the configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ConfigurationError reports an out-of-range option.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfig }

// InvalidInputError reports a dataset the search cannot run on.
// Row and Column are 1-based; 0 means not applicable.
//
// The underlying error, if any, is reachable through errors.Is and errors.As.
type InvalidInputError struct {
	Row    int
	Column int
	Reason string
	cause  error
}

func (e *InvalidInputError) Error() string {
	if e.Row > 0 && e.Column > 0 {
		return fmt.Sprintf("invalid input at X[%d,%d]: %s", e.Row, e.Column, e.Reason)
	}
	return "invalid input: " + e.Reason
}

func (e *InvalidInputError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidInput}
	}
	return []error{ErrInvalidInput, e.cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ie *onehot.InvalidInputError
	if errors.As(err, &ie) {
		return &InvalidInputError{Row: ie.Row + 1, Column: ie.Column + 1, Reason: ie.Reason, cause: err}
	}
	if errors.Is(err, dataset.ErrShape) || errors.Is(err, dataset.ErrValue) {
		return &InvalidInputError{Reason: err.Error(), cause: err}
	}
	return err
}
