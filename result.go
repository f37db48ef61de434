package slicefinder

import (
	"github.com/hupe1980/slicefinder/dataset"
)

// Stats are the statistics of a slice.
type Stats struct {
	Score    float64 `json:"score"`
	Error    float64 `json:"error"`
	MaxError float64 `json:"max_error"`
	Size     int     `json:"size"`
}

// Predicate is one feature == value condition. Feature is 0-based, Value
// is the 1-based category code.
type Predicate struct {
	Feature int `json:"feature"`
	Value   int `json:"value"`
}

// Trace summarizes one lattice level. Level 1 reports the one-hot columns
// as generated and the kept basic slices as valid. MaxScore and MinScore
// describe the top-K list after the level (0 while it is empty).
type Trace struct {
	Level     int     `json:"level"`
	Generated int     `json:"generated"`
	Valid     int     `json:"valid"`
	MaxScore  float64 `json:"max_score"`
	MinScore  float64 `json:"min_score"`
}

// Result is the outcome of a search.
type Result struct {
	// TopK holds one decoded slice per row: 0 where a feature is
	// unconstrained, else the 1-based value. Ordered by descending score.
	TopK [][]int `json:"topk"`
	// Stats are aligned with TopK.
	Stats []Stats `json:"stats"`
	// Slices lists the predicates of each TopK row.
	Slices [][]Predicate `json:"slices"`
	// Trace is only recorded with WithVerbose.
	Trace []Trace `json:"trace,omitempty"`

	features int
}

// Len returns the number of slices found.
func (r *Result) Len() int { return len(r.TopK) }

// TopKMatrix returns TopK as a K' × n matrix.
func (r *Result) TopKMatrix() *dataset.Matrix {
	m := dataset.NewMatrix(len(r.TopK), r.features)
	for i, row := range r.TopK {
		for j, v := range row {
			m.Set(i, j, float64(v))
		}
	}
	return m
}

// StatsMatrix returns Stats as a K' × 4 matrix with columns score, error,
// max error and size.
func (r *Result) StatsMatrix() *dataset.Matrix {
	m := dataset.NewMatrix(len(r.Stats), 4)
	for i, s := range r.Stats {
		m.Set(i, 0, s.Score)
		m.Set(i, 1, s.Error)
		m.Set(i, 2, s.MaxError)
		m.Set(i, 3, float64(s.Size))
	}
	return m
}

func predicates(row []int) []Predicate {
	var out []Predicate
	for j, v := range row {
		if v != 0 {
			out = append(out, Predicate{Feature: j, Value: v})
		}
	}
	return out
}
