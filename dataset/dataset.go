package dataset

import (
	"fmt"
	"math"
)

// Dataset is a validated feature matrix and error vector pair.
// It implements the read-only integer source used by the encoder.
type Dataset struct {
	rows   int
	cols   int
	values []int
	errs   []float64
}

// New validates x (m × n, integral) and e (m × 1, finite and non-negative)
// and builds a Dataset.
// Category codes below 1 are left for the encoder to reject with their position.
func New(x, e *Matrix) (*Dataset, error) {
	if x == nil || e == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrShape)
	}
	if err := x.validate(); err != nil {
		return nil, err
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	if e.Rows != x.Rows || (e.Cols != 1 && e.Rows > 0) {
		return nil, fmt.Errorf("%w: error vector is %dx%d, want %dx1", ErrShape, e.Rows, e.Cols, x.Rows)
	}

	d := &Dataset{
		rows:   x.Rows,
		cols:   x.Cols,
		values: make([]int, len(x.Data)),
		errs:   make([]float64, x.Rows),
	}
	if x.Rows == 0 {
		d.cols = 0
	}

	for k, v := range x.Data {
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil, fmt.Errorf("%w: X[%d,%d] = %v is not an integer code", ErrValue, k/x.Cols+1, k%x.Cols+1, v)
		}
		d.values[k] = int(v)
	}
	for i := range d.errs {
		v := e.Data[i*e.Cols]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: e[%d] = %v is not finite", ErrValue, i+1, v)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: e[%d] = %v is negative", ErrValue, i+1, v)
		}
		d.errs[i] = v
	}
	return d, nil
}

// FromSlices builds a Dataset from integer rows and an error slice.
func FromSlices(x [][]int, e []float64) (*Dataset, error) {
	xm, err := FromInts(x)
	if err != nil {
		return nil, err
	}
	return New(xm, Column(e))
}

// Dims returns the number of records and features.
func (d *Dataset) Dims() (rows, cols int) { return d.rows, d.cols }

// At returns the category code of record i, feature j.
func (d *Dataset) At(i, j int) int { return d.values[i*d.cols+j] }

// Errors returns the error vector. It must not be modified.
func (d *Dataset) Errors() []float64 { return d.errs }

// Rows returns m.
func (d *Dataset) Rows() int { return d.rows }

// Features returns n.
func (d *Dataset) Features() int { return d.cols }
