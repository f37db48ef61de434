package onehot

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Source is a read-only integer-coded feature matrix.
// Values are 1-based category codes.
type Source interface {
	Dims() (rows, cols int)
	At(i, j int) int
}

// IntRows adapts a row-major [][]int to Source.
// All rows must have the same length.
type IntRows [][]int

// Dims implements Source.
func (r IntRows) Dims() (int, int) {
	if len(r) == 0 {
		return 0, 0
	}
	return len(r), len(r[0])
}

// At implements Source.
func (r IntRows) At(i, j int) int { return r[i][j] }

// Encoding is the one-hot representation of a feature matrix.
// It is immutable once built and safe for concurrent reads.
type Encoding struct {
	rows    int
	domains []int
	begin   []int
	end     []int

	// columns[c] holds the rows selecting one-hot column c.
	columns []*roaring.Bitmap
	// feature[c] is the feature owning column c.
	feature []int
}

// Encode builds the one-hot encoding of src.
//
// Domain sizes are the column maxima. A feature whose values are all 1 gets
// a singleton domain, which is accepted. Values below 1 are rejected with an
// *InvalidInputError.
func Encode(src Source) (*Encoding, error) {
	m, n := src.Dims()
	if uint64(m) > math.MaxUint32 {
		return nil, &InvalidInputError{Row: m, Reason: "too many rows"}
	}

	domains := make([]int, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := src.At(i, j)
			if v <= 0 {
				return nil, &InvalidInputError{Row: i, Column: j, Value: v, Reason: "category codes must be >= 1"}
			}
			domains[j] = max(domains[j], v)
		}
	}

	e := &Encoding{
		rows:    m,
		domains: domains,
		begin:   make([]int, n),
		end:     make([]int, n),
	}
	width := 0
	for j, d := range domains {
		e.begin[j] = width
		width += d
		e.end[j] = width
	}

	e.columns = make([]*roaring.Bitmap, width)
	e.feature = make([]int, width)
	for c := range e.columns {
		e.columns[c] = roaring.New()
	}
	for j := 0; j < n; j++ {
		for c := e.begin[j]; c < e.end[j]; c++ {
			e.feature[c] = j
		}
	}

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			e.columns[e.begin[j]+src.At(i, j)-1].Add(uint32(i))
		}
	}
	for _, b := range e.columns {
		b.RunOptimize()
	}

	return e, nil
}

// Rows returns the number of encoded records (m).
func (e *Encoding) Rows() int { return e.rows }

// Features returns the number of original features (n).
func (e *Encoding) Features() int { return len(e.domains) }

// Width returns the number of one-hot columns (n2).
func (e *Encoding) Width() int { return len(e.columns) }

// Domain returns the domain size of feature j.
func (e *Encoding) Domain(j int) int { return e.domains[j] }

// Offsets returns the half-open column range [begin, end) of feature j.
func (e *Encoding) Offsets(j int) (begin, end int) { return e.begin[j], e.end[j] }

// Feature returns the feature that owns column c.
func (e *Encoding) Feature(c int) int { return e.feature[c] }

// Value returns the 1-based category code that column c encodes.
func (e *Encoding) Value(c int) int { return c - e.begin[e.feature[c]] + 1 }

// Column returns the column encoding feature j == v.
func (e *Encoding) Column(j, v int) (int, bool) {
	if j < 0 || j >= len(e.domains) || v < 1 || v > e.domains[j] {
		return 0, false
	}
	return e.begin[j] + v - 1, true
}

// Posting returns the rows selecting column c.
// The bitmap is shared and must not be modified.
func (e *Encoding) Posting(c int) *roaring.Bitmap { return e.columns[c] }

// Count returns the number of rows selecting column c.
func (e *Encoding) Count(c int) int { return int(e.columns[c].GetCardinality()) }

// Match returns the rows that satisfy every column in cols.
// An empty column set matches all rows.
func (e *Encoding) Match(cols []int) *roaring.Bitmap {
	if len(cols) == 0 {
		all := roaring.New()
		all.AddRange(0, uint64(e.rows))
		return all
	}
	if len(cols) == 1 {
		return e.columns[cols[0]].Clone()
	}
	bms := make([]*roaring.Bitmap, len(cols))
	for i, c := range cols {
		bms[i] = e.columns[c]
	}
	return roaring.FastAnd(bms...)
}

// Decode maps a set of columns to a length-n vector of 1-based values,
// with 0 for features that carry no predicate.
func (e *Encoding) Decode(cols []int) []int {
	out := make([]int, len(e.domains))
	for _, c := range cols {
		out[e.feature[c]] = e.Value(c)
	}
	return out
}

// Columns is the inverse of Decode. It returns the sorted columns for a
// length-n value vector, skipping zeros.
func (e *Encoding) Columns(values []int) ([]int, bool) {
	if len(values) != len(e.domains) {
		return nil, false
	}
	cols := make([]int, 0, len(values))
	for j, v := range values {
		if v == 0 {
			continue
		}
		c, ok := e.Column(j, v)
		if !ok {
			return nil, false
		}
		cols = append(cols, c)
	}
	return cols, true
}
