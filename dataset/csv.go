package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DecodeCSV parses a dense matrix from comma separated text.
// A first row that does not parse as numbers is treated as a header and skipped.
func DecodeCSV(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	m := &Matrix{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		line++

		if line == 1 {
			if _, perr := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64); perr != nil {
				continue
			}
		}
		if m.Rows == 0 {
			m.Cols = len(rec)
		} else if len(rec) != m.Cols {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrShape, line, len(rec), m.Cols)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %v", ErrCorrupt, line, j+1, err)
			}
			m.Data = append(m.Data, v)
		}
		m.Rows++
	}
	return m, nil
}

// EncodeCSV writes m as comma separated text without a header.
func EncodeCSV(w io.Writer, m *Matrix) error {
	if err := m.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for i := 0; i < m.Rows; i++ {
		for j, v := range m.Row(i) {
			if j > 0 {
				_ = bw.WriteByte(',')
			}
			buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
			_, _ = bw.Write(buf)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
