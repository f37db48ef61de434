package dataset

import (
	"fmt"
	"path"
	"strings"
)

// Format identifies a matrix file format.
type Format int

const (
	// FormatAuto derives the format from the blob name.
	FormatAuto Format = iota
	// FormatCSV is comma separated text.
	FormatCSV
	// FormatIJV is sparse "row col value" text triplets.
	FormatIJV
	// FormatBinary is the checksummed binary format.
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatCSV:
		return "csv"
	case FormatIJV:
		return "ijv"
	case FormatBinary:
		return "binary"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name as accepted by String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "ijv", "mtx":
		return FormatIJV, nil
	case "binary", "sfm":
		return FormatBinary, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFor derives the format from a blob name's extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".ijv", ".mtx":
		return FormatIJV, nil
	case ".sfm":
		return FormatBinary, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
