package lattice

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/slicefinder/internal/onehot"
)

// Slice is a conjunction of predicates, stored as ascending one-hot column
// indices. Level is len(Slice).
type Slice []int

// Level returns the number of predicates.
func (s Slice) Level() int { return len(s) }

// Equal reports whether both slices select the same columns.
func (s Slice) Equal(o Slice) bool { return slices.Equal(s, o) }

// Shared returns the number of columns present in both slices.
func (s Slice) Shared(o Slice) int {
	n, i, j := 0, 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] == o[j]:
			n++
			i++
			j++
		case s[i] < o[j]:
			i++
		default:
			j++
		}
	}
	return n
}

// Union returns the sorted union of both slices.
func (s Slice) Union(o Slice) Slice {
	out := make(Slice, 0, len(s)+len(o))
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] == o[j]:
			out = append(out, s[i])
			i++
			j++
		case s[i] < o[j]:
			out = append(out, s[i])
			i++
		default:
			out = append(out, o[j])
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, o[j:]...)
}

// Valid reports whether the slice has at most one column per feature.
// Columns of one feature are contiguous, so adjacent columns suffice.
func (s Slice) Valid(enc *onehot.Encoding) bool {
	for i := 1; i < len(s); i++ {
		if enc.Feature(s[i]) == enc.Feature(s[i-1]) {
			return false
		}
	}
	return true
}

// Hash returns the canonical 64-bit identifier of the slice.
// Distinct slices may collide; callers compare with Equal.
func (s Slice) Hash() uint64 {
	var buf [64]byte
	b := buf[:0]
	for _, c := range s {
		b = binary.LittleEndian.AppendUint32(b, uint32(c))
	}
	return xxhash.Sum64(b)
}

func (s Slice) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Stats are the statistics of a slice. For join candidates they are upper
// bounds until the slice is evaluated.
type Stats struct {
	Score    float64
	Error    float64
	MaxError float64
	Size     int
}

// Candidate is a slice with its statistics.
type Candidate struct {
	Slice Slice
	Stats Stats
}

// Params are the scoring parameters shared by all levels.
type Params struct {
	MinSupport int
	Alpha      float64
	AvgError   float64
	// Rows is the number of records (m).
	Rows int
}

// viable reports whether c may act as a join parent.
func (p Params) viable(c *Candidate) bool {
	return c.Stats.Size >= p.MinSupport && c.Stats.Error > 0
}
