package dataset

import (
	"fmt"
)

// Matrix is a dense row-major float64 matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zero-filled rows × cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromRows builds a matrix from row slices of equal length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i+1, len(r), cols)
		}
		copy(m.Data[i*cols:], r)
	}
	return m, nil
}

// FromInts builds a matrix from integer row slices of equal length.
func FromInts(rows [][]int) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i+1, len(r), cols)
		}
		for j, v := range r {
			m.Data[i*cols+j] = float64(v)
		}
	}
	return m, nil
}

// Column builds an n × 1 matrix.
func Column(v []float64) *Matrix {
	m := NewMatrix(len(v), 1)
	copy(m.Data, v)
	return m
}

// At returns the element at row i, column j (0-based).
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.Cols+j] }

// Set sets the element at row i, column j (0-based).
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.Cols+j] = v }

// Row returns row i as a sub-slice of Data.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.Cols : (i+1)*m.Cols] }

// validate checks that Data matches the dimensions.
func (m *Matrix) validate() error {
	if m.Rows < 0 || m.Cols < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrShape, m.Rows, m.Cols)
	}
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %dx%d matrix with %d values", ErrShape, m.Rows, m.Cols, len(m.Data))
	}
	return nil
}
