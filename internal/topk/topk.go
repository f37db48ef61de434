// Package topk maintains the bounded list of best-scoring slices.
package topk

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/slicefinder/internal/lattice"
)

// List keeps at most k slices ordered by descending score.
//
// Entries are unique by slice. Among equal scores, entries already in the
// list come first, then new candidates in the order they were merged.
type List struct {
	k          int
	minSupport int
	entries    []lattice.Candidate
}

// New creates an empty list of capacity k.
func New(k, minSupport int) *List {
	return &List{k: k, minSupport: minSupport, entries: make([]lattice.Candidate, 0, k)}
}

// Merge adds evaluated candidates and truncates the list to k entries.
// Candidates below the minimum support, empty candidates and slices already
// in the list are ignored. It returns the number of candidates that entered
// the list.
func (l *List) Merge(cands []lattice.Candidate) int {
	existing := len(l.entries)
	merged := slices.Clone(l.entries)

	seen := make(map[uint64][]lattice.Slice)
	for _, c := range cands {
		if c.Stats.Size == 0 || c.Stats.Size < l.minSupport || math.IsInf(c.Stats.Score, -1) {
			continue
		}
		h := c.Slice.Hash()
		if l.contains(c.Slice) || slices.ContainsFunc(seen[h], c.Slice.Equal) {
			continue
		}
		seen[h] = append(seen[h], c.Slice)
		merged = append(merged, c)
	}
	if len(merged) == existing {
		return 0
	}

	slices.SortStableFunc(merged, func(a, b lattice.Candidate) int {
		return cmp.Compare(b.Stats.Score, a.Stats.Score)
	})
	if len(merged) > l.k {
		merged = merged[:l.k]
	}

	added := 0
	for _, e := range merged {
		if !l.contains(e.Slice) {
			added++
		}
	}
	l.entries = merged
	return added
}

// contains does a linear scan; k is small.
func (l *List) contains(s lattice.Slice) bool {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Slice.Equal(s) {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (l *List) Len() int { return len(l.entries) }

// Full reports whether the list holds k entries.
func (l *List) Full() bool { return len(l.entries) >= l.k }

// Threshold returns the score a new slice must beat to enter a full list,
// or -Inf while the list is not full.
func (l *List) Threshold() float64 {
	if !l.Full() {
		return math.Inf(-1)
	}
	return l.entries[l.k-1].Stats.Score
}

// Max returns the best score, or 0 for an empty list.
func (l *List) Max() float64 {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[0].Stats.Score
}

// Min returns the worst retained score, or 0 for an empty list.
func (l *List) Min() float64 {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Stats.Score
}

// Entries returns the entries in descending score order.
// The returned slice must not be modified.
func (l *List) Entries() []lattice.Candidate { return l.entries }
