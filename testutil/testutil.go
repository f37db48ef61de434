package testutil

import (
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Domains returns n feature domain sizes, each in [2, maxDom].
func (r *RNG) Domains(n, maxDom int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	doms := make([]int, n)
	for j := range doms {
		doms[j] = 2
		if maxDom > 2 {
			doms[j] += r.rand.Intn(maxDom - 1)
		}
	}
	return doms
}

// CategoricalRows generates m rows with uniform 1-based codes per domain.
func (r *RNG) CategoricalRows(m int, doms []int) [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([][]int, m)
	for i := range rows {
		rows[i] = make([]int, len(doms))
		for j, d := range doms {
			rows[i][j] = 1 + r.rand.Intn(d)
		}
	}
	return rows
}

// ZipfRows generates m rows whose codes follow a Zipf distribution with
// exponent s (> 1), so value 1 is the most frequent in every feature.
func (r *RNG) ZipfRows(m int, doms []int, s float64) [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	zipfs := make([]*rand.Zipf, len(doms))
	for j, d := range doms {
		zipfs[j] = rand.NewZipf(r.rand, s, 1, uint64(d-1))
	}
	rows := make([][]int, m)
	for i := range rows {
		rows[i] = make([]int, len(doms))
		for j, z := range zipfs {
			rows[i][j] = 1 + int(z.Uint64())
		}
	}
	return rows
}

// Errors generates m errors in [0, 1); each row is non-zero with
// probability rate.
func (r *RNG) Errors(m int, rate float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := make([]float64, m)
	for i := range errs {
		if r.rand.Float64() < rate {
			errs[i] = r.rand.Float64()
		}
	}
	return errs
}

// PlantError adds boost to the error of every row with rows[i][feature] == value.
func PlantError(rows [][]int, errs []float64, feature, value int, boost float64) {
	for i, row := range rows {
		if row[feature] == value {
			errs[i] += boost
		}
	}
}

// Slice is one enumerated slice with its statistics. Predicates are stored
// like a decoded top-K row: 0 for an unconstrained feature.
type Slice struct {
	Predicates []int
	Score      float64
	Error      float64
	MaxError   float64
	Size       int
}

// BruteForceSlices enumerates every non-empty conjunction of feature
// predicates, keeps those with at least minSup rows, scores them with
// scoreFn and returns them by descending score.
func BruteForceSlices(rows [][]int, errs []float64, minSup int, scoreFn func(size, errSum float64) float64) []Slice {
	if len(rows) == 0 {
		return nil
	}
	n := len(rows[0])
	doms := make([]int, n)
	for _, row := range rows {
		for j, v := range row {
			doms[j] = max(doms[j], v)
		}
	}

	var out []Slice
	pred := make([]int, n)
	var walk func(j int, constrained bool)
	walk = func(j int, constrained bool) {
		if j == n {
			if !constrained {
				return
			}
			s := Slice{Predicates: append([]int(nil), pred...)}
			for i, row := range rows {
				if matches(row, pred) {
					s.Size++
					s.Error += errs[i]
					s.MaxError = max(s.MaxError, errs[i])
				}
			}
			if s.Size == 0 || s.Size < minSup {
				return
			}
			s.Score = scoreFn(float64(s.Size), s.Error)
			out = append(out, s)
			return
		}
		for v := 0; v <= doms[j]; v++ {
			pred[j] = v
			walk(j+1, constrained || v != 0)
		}
		pred[j] = 0
	}
	walk(0, false)

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

func matches(row, pred []int) bool {
	for j, v := range pred {
		if v != 0 && row[j] != v {
			return false
		}
	}
	return true
}
