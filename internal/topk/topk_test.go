package topk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/slicefinder/internal/lattice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(score float64, size int, cols ...int) lattice.Candidate {
	return lattice.Candidate{
		Slice: lattice.Slice(cols),
		Stats: lattice.Stats{Score: score, Error: 1, MaxError: 1, Size: size},
	}
}

func scores(l *List) []float64 {
	out := make([]float64, 0, l.Len())
	for _, e := range l.Entries() {
		out = append(out, e.Stats.Score)
	}
	return out
}

func TestList_MergeTruncatesAndSorts(t *testing.T) {
	l := New(3, 10)
	assert.True(t, math.IsInf(l.Threshold(), -1))
	assert.Equal(t, 0.0, l.Max())

	added := l.Merge([]lattice.Candidate{
		cand(0.5, 20, 0),
		cand(2.0, 20, 1),
		cand(1.0, 20, 2),
		cand(3.0, 20, 3),
	})
	assert.Equal(t, 3, added)
	assert.Equal(t, []float64{3, 2, 1}, scores(l))
	assert.True(t, l.Full())
	assert.Equal(t, 1.0, l.Threshold())
	assert.Equal(t, 3.0, l.Max())
	assert.Equal(t, 1.0, l.Min())

	added = l.Merge([]lattice.Candidate{cand(1.5, 20, 0, 4), cand(0.1, 20, 1, 4)})
	assert.Equal(t, 1, added)
	assert.Equal(t, []float64{3, 2, 1.5}, scores(l))
}

func TestList_Filters(t *testing.T) {
	l := New(5, 10)
	added := l.Merge([]lattice.Candidate{
		cand(5, 9, 0),
		cand(math.Inf(-1), 0, 1),
		cand(-0.5, 10, 2),
	})
	assert.Equal(t, 1, added)
	require.Equal(t, 1, l.Len())
	// Non-positive but finite scores are kept.
	assert.Equal(t, -0.5, l.Entries()[0].Stats.Score)
}

func TestList_NoDuplicates(t *testing.T) {
	l := New(4, 1)
	l.Merge([]lattice.Candidate{cand(1, 5, 0, 2), cand(1, 5, 0, 2)})
	assert.Equal(t, 1, l.Len())

	added := l.Merge([]lattice.Candidate{cand(1, 5, 0, 2)})
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, l.Len())
}

func TestList_StableTies(t *testing.T) {
	l := New(3, 1)
	l.Merge([]lattice.Candidate{cand(1, 5, 0)})
	l.Merge([]lattice.Candidate{cand(1, 5, 1), cand(1, 5, 2), cand(1, 5, 3)})

	got := l.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, lattice.Slice{0}, got[0].Slice)
	assert.Equal(t, lattice.Slice{1}, got[1].Slice)
	assert.Equal(t, lattice.Slice{2}, got[2].Slice)
}

func TestList_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const k = 5
	l := New(k, 3)

	for round := 0; round < 50; round++ {
		batch := make([]lattice.Candidate, 0, 20)
		for i := 0; i < 20; i++ {
			batch = append(batch, cand(rng.NormFloat64(), rng.Intn(10), rng.Intn(8), 8+rng.Intn(8)))
		}
		l.Merge(batch)

		require.LessOrEqual(t, l.Len(), k)
		for i := 1; i < l.Len(); i++ {
			require.GreaterOrEqual(t, l.Entries()[i-1].Stats.Score, l.Entries()[i].Stats.Score)
		}
		for i := 0; i < l.Len(); i++ {
			require.GreaterOrEqual(t, l.Entries()[i].Stats.Size, 3)
			for j := i + 1; j < l.Len(); j++ {
				require.False(t, l.Entries()[i].Slice.Equal(l.Entries()[j].Slice))
			}
		}
	}
}
