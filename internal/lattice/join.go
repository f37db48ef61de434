package lattice

import (
	"slices"

	"github.com/hupe1980/slicefinder/internal/onehot"
	"github.com/hupe1980/slicefinder/internal/score"
)

// JoinParams configures candidate generation for one level.
type JoinParams struct {
	Params

	// Level is the level of the generated candidates (>= 2).
	Level int

	// Threshold is the score an upper bound must exceed to keep a candidate:
	// the K-th best score so far, or -Inf while the top-K list is not full.
	Threshold float64
}

// JoinStats counts candidates through the pruning stages of one Join.
type JoinStats struct {
	// Parents is the number of viable parents after re-filtering.
	Parents int
	// Pairs is the number of join-compatible parent pairs.
	Pairs int
	// Invalid counts unions with two predicates on one feature.
	Invalid int
	// Groups is the number of distinct candidates after deduplication.
	Groups int

	MissingParents int
	SizePruned     int
	ScorePruned    int

	// Output is the number of candidates returned.
	Output int
}

// group aggregates every parent pair that unions to the same slice.
type group struct {
	slice   Slice
	size    int
	err     float64
	maxErr  float64
	parents []int32
}

func (g *group) addParent(i int32) {
	if !slices.Contains(g.parents, i) {
		g.parents = append(g.parents, i)
	}
}

// Join generates the level-L candidates from the level-(L-1) slices.
//
// Parents without enough support or with non-positive error are dropped
// first; they may still have been kept out of the top-K list, which is fine.
// Two parents are paired iff they share exactly L-2 columns. Each union
// inherits the minimum size, error and max error of its parents, and
// duplicates keep the minimum over all pairs producing them. A candidate
// survives iff all L of its (L-1)-subsets were viable parents, its size
// bound reaches MinSupport, and its score upper bound is positive and
// strictly above Threshold.
//
// The returned candidates are unique and ordered by first appearance; their
// Stats hold the propagated bounds with Score set to the upper bound.
func Join(enc *onehot.Encoding, parents []Candidate, p JoinParams) ([]Candidate, JoinStats) {
	var st JoinStats
	if p.Level < 2 {
		return nil, st
	}

	live := make([]*Candidate, 0, len(parents))
	for i := range parents {
		c := &parents[i]
		if c.Slice.Level() == p.Level-1 && p.viable(c) {
			live = append(live, c)
		}
	}
	st.Parents = len(live)

	var groups []*group
	index := make(map[uint64][]*group)

	for i, a := range live {
		for j := i + 1; j < len(live); j++ {
			b := live[j]
			if a.Slice.Shared(b.Slice) != p.Level-2 {
				continue
			}
			st.Pairs++

			u := a.Slice.Union(b.Slice)
			if !u.Valid(enc) {
				st.Invalid++
				continue
			}

			size := min(a.Stats.Size, b.Stats.Size)
			errSum := min(a.Stats.Error, b.Stats.Error)
			maxErr := min(a.Stats.MaxError, b.Stats.MaxError)

			h := u.Hash()
			var g *group
			for _, cand := range index[h] {
				if cand.slice.Equal(u) {
					g = cand
					break
				}
			}
			if g == nil {
				g = &group{slice: u, size: size, err: errSum, maxErr: maxErr}
				index[h] = append(index[h], g)
				groups = append(groups, g)
			} else {
				g.size = min(g.size, size)
				g.err = min(g.err, errSum)
				g.maxErr = min(g.maxErr, maxErr)
			}
			g.addParent(int32(i))
			g.addParent(int32(j))
		}
	}
	st.Groups = len(groups)

	out := make([]Candidate, 0, len(groups))
	for _, g := range groups {
		if len(g.parents) != p.Level {
			st.MissingParents++
			continue
		}
		if g.size < p.MinSupport {
			st.SizePruned++
			continue
		}
		ub := score.UpperBound(float64(g.size), g.err, g.maxErr, p.AvgError, p.MinSupport, p.Alpha, p.Rows)
		if !(ub > p.Threshold && ub > 0) {
			st.ScorePruned++
			continue
		}
		out = append(out, Candidate{
			Slice: g.slice,
			Stats: Stats{Score: ub, Error: g.err, MaxError: g.maxErr, Size: g.size},
		})
	}
	st.Output = len(out)

	return out, st
}
