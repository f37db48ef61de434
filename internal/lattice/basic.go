package lattice

import (
	"math"

	"github.com/hupe1980/slicefinder/internal/onehot"
	"github.com/hupe1980/slicefinder/internal/score"
)

// BasicStats summarizes level-1 slice creation.
type BasicStats struct {
	// Columns is the number of one-hot columns considered.
	Columns int
	// Kept is the number of level-1 slices with enough support and error.
	Kept int
}

// Basic creates and scores all level-1 slices.
//
// A column becomes a slice iff at least MinSupport rows select it and their
// total error is positive. errs holds one error per encoded row.
func Basic(enc *onehot.Encoding, errs []float64, p Params) ([]Candidate, BasicStats) {
	st := BasicStats{Columns: enc.Width()}
	var out []Candidate

	for c := 0; c < enc.Width(); c++ {
		rows := enc.Posting(c)
		size := int(rows.GetCardinality())
		if size == 0 || size < p.MinSupport {
			continue
		}

		total, maxErr := 0.0, math.Inf(-1)
		it := rows.Iterator()
		for it.HasNext() {
			v := errs[it.Next()]
			total += v
			maxErr = max(maxErr, v)
		}
		if total <= 0 {
			continue
		}

		out = append(out, Candidate{
			Slice: Slice{c},
			Stats: Stats{
				Score:    score.Score(float64(size), total, p.AvgError, p.Alpha, p.Rows),
				Error:    total,
				MaxError: maxErr,
				Size:     size,
			},
		})
	}

	st.Kept = len(out)
	return out, st
}
