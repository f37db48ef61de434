package dataset

import "errors"

var (
	// ErrCorrupt is returned when a matrix file fails to parse or its checksum does not match.
	ErrCorrupt = errors.New("dataset: corrupt matrix data")
	// ErrShape is returned when matrix dimensions are inconsistent.
	ErrShape = errors.New("dataset: invalid shape")
	// ErrValue is returned when a dataset contains an unusable value.
	ErrValue = errors.New("dataset: invalid value")
	// ErrUnknownFormat is returned when no format can be derived for a blob.
	ErrUnknownFormat = errors.New("dataset: unknown format")
)
