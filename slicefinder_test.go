package slicefinder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/hupe1980/slicefinder/dataset"
	"github.com/hupe1980/slicefinder/internal/onehot"
	"github.com/hupe1980/slicefinder/internal/resource"
	"github.com/hupe1980/slicefinder/internal/score"
	"github.com/hupe1980/slicefinder/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformErrors builds two binary features, every combination
// 25 times, constant error.
func uniformErrors(t *testing.T) *dataset.Dataset {
	t.Helper()
	x := make([][]int, 100)
	e := make([]float64, 100)
	for i := range x {
		x[i] = []int{1 + i%2, 1 + (i/2)%2}
		e[i] = 0.5
	}
	ds, err := dataset.FromSlices(x, e)
	require.NoError(t, err)
	return ds
}

// singleOutlier builds all eight rows of three binary features,
// only row 5 ([2 1 2]) has an error.
func singleOutlier(t *testing.T) *dataset.Dataset {
	t.Helper()
	x := make([][]int, 8)
	e := make([]float64, 8)
	for i := range x {
		x[i] = []int{1 + i&1, 1 + (i>>1)&1, 1 + (i>>2)&1}
	}
	e[5] = 100
	ds, err := dataset.FromSlices(x, e)
	require.NoError(t, err)
	return ds
}

func randomDataset(t *testing.T, seed int64, m, n, maxDom int) *dataset.Dataset {
	t.Helper()
	rng := testutil.NewRNG(seed)
	x := rng.CategoricalRows(m, rng.Domains(n, maxDom))
	e := rng.Errors(m, 0.6)
	// Correlate error with the first feature so deep slices win.
	testutil.PlantError(x, e, 0, 1, 0.5)

	ds, err := dataset.FromSlices(x, e)
	require.NoError(t, err)
	return ds
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		field string
	}{
		{"ZeroK", WithK(0), "K"},
		{"NegativeMaxLevel", WithMaxLevel(-1), "MaxLevel"},
		{"NegativeMinSupport", WithMinSupport(-3), "MinSupport"},
		{"AlphaBelow", WithAlpha(-0.1), "Alpha"},
		{"AlphaAbove", WithAlpha(1.5), "Alpha"},
		{"AlphaNaN", WithAlpha(math.NaN()), "Alpha"},
		{"ZeroBlockSize", WithBlockSize(0), "BlockSize"},
		{"NegativeWorkers", WithWorkers(-1), "Workers"},
		{"NegativeMemoryLimit", WithMemoryLimit(-1), "MemoryLimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)

			_, err = Find(context.Background(), uniformErrors(t), tt.opt)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	f, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultK, f.opts.k)
	assert.Equal(t, DefaultMinSupport, f.opts.minSupport)
	assert.Equal(t, DefaultAlpha, f.opts.alpha)
	assert.True(t, f.opts.taskParallel)
	assert.Equal(t, DefaultBlockSize, f.opts.blockSize)
	assert.Positive(t, f.opts.workers)

	// nil options fall back to no-ops
	f, err = New(WithLogger(nil), WithMetricsCollector(nil), nil)
	require.NoError(t, err)
	assert.NotNil(t, f.opts.logger)
	assert.NotNil(t, f.opts.metricsCollector)
}

func TestFind_UniformErrorPrefersLargeSlices(t *testing.T) {
	res, err := Find(context.Background(), uniformErrors(t),
		WithK(2), WithMinSupport(10), WithAlpha(0.5))
	require.NoError(t, err)

	require.Equal(t, 2, res.Len())
	assert.Equal(t, [][]int{{1, 0}, {2, 0}}, res.TopK)
	for _, s := range res.Stats {
		assert.Equal(t, 50, s.Size)
		assert.InDelta(t, -0.5, s.Score, 1e-12)
		assert.InDelta(t, 25.0, s.Error, 1e-12)
		assert.Equal(t, 0.5, s.MaxError)
	}
	assert.Equal(t, [][]Predicate{{{Feature: 0, Value: 1}}, {{Feature: 0, Value: 2}}}, res.Slices)
}

func TestFind_SingleOutlierSurfaces(t *testing.T) {
	res, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95))
	require.NoError(t, err)

	require.Equal(t, 1, res.Len())
	assert.Equal(t, []int{2, 1, 2}, res.TopK[0])
	assert.Equal(t, 1, res.Stats[0].Size)
	assert.Equal(t, 100.0, res.Stats[0].Error)
	assert.Equal(t, 100.0, res.Stats[0].MaxError)
	assert.InDelta(t, 6.3, res.Stats[0].Score, 1e-9)
}

func TestFind_MinSupportAboveRows(t *testing.T) {
	res, err := Find(context.Background(), uniformErrors(t), WithMinSupport(101), WithVerbose(true))
	require.NoError(t, err)

	assert.Zero(t, res.Len())
	assert.Empty(t, res.Stats)
	require.Len(t, res.Trace, 1)
	assert.Equal(t, 4, res.Trace[0].Generated)
	assert.Zero(t, res.Trace[0].Valid)

	m := res.TopKMatrix()
	assert.Equal(t, 0, m.Rows)
	assert.Equal(t, 2, m.Cols)
}

func TestFind_Degenerate(t *testing.T) {
	empty, err := dataset.FromSlices(nil, nil)
	require.NoError(t, err)

	zero, err := dataset.FromSlices([][]int{{1, 2}, {2, 1}}, []float64{0, 0})
	require.NoError(t, err)

	noFeatures, err := dataset.FromSlices([][]int{{}, {}}, []float64{1, 1})
	require.NoError(t, err)

	for name, ds := range map[string]*dataset.Dataset{
		"Empty":      empty,
		"ZeroError":  zero,
		"NoFeatures": noFeatures,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Find(context.Background(), ds, WithMinSupport(1))
			require.NoError(t, err)
			assert.Zero(t, res.Len())
			assert.NotNil(t, res.TopK)
		})
	}
}

func TestFind_InvalidInput(t *testing.T) {
	ds, err := dataset.FromSlices([][]int{{1, 2}, {0, 1}}, []float64{1, 1})
	require.NoError(t, err)

	_, err = Find(context.Background(), ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, onehot.ErrInvalidInput)

	var ie *InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Row)
	assert.Equal(t, 1, ie.Column)

	_, err = Find(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFind_NegativeErrorsRejected(t *testing.T) {
	// Bounds propagated by the joiner assume non-negative errors; with the
	// negative rows below, {f0=1, f1=1} would be pruned while it wins.
	x := [][]int{{1, 1}, {1, 1}, {1, 2}, {1, 2}, {2, 1}, {2, 1}, {2, 2}, {2, 2}}
	e := []float64{5, 5, -4, -4, 0.1, -0.05, 0.1, 0.1}

	_, err := dataset.FromSlices(x, e)
	require.ErrorIs(t, err, dataset.ErrValue)
	assert.Contains(t, err.Error(), "e[3]")

	err = translateError(err)
	var ie *InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, dataset.ErrValue)
}

func TestFind_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Find(ctx, singleOutlier(t), WithMinSupport(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFind_MaxLevel(t *testing.T) {
	res, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithMaxLevel(2))
	require.NoError(t, err)

	require.Equal(t, 1, res.Len())
	assert.Len(t, res.Slices[0], 2)
	assert.Equal(t, 2, res.Stats[0].Size)
	assert.InDelta(t, 2.7, res.Stats[0].Score, 1e-9)
}

func TestFind_Trace(t *testing.T) {
	res, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithVerbose(true))
	require.NoError(t, err)

	require.Len(t, res.Trace, 3)
	assert.Equal(t, Trace{Level: 1, Generated: 6, Valid: 3, MaxScore: res.Trace[0].MaxScore, MinScore: res.Trace[0].MinScore}, res.Trace[0])
	assert.InDelta(t, 0.9, res.Trace[0].MaxScore, 1e-9)
	assert.Equal(t, 3, res.Trace[1].Generated)
	assert.Equal(t, 3, res.Trace[1].Valid)
	assert.InDelta(t, 2.7, res.Trace[1].MaxScore, 1e-9)
	assert.Equal(t, 1, res.Trace[2].Generated)
	assert.InDelta(t, 6.3, res.Trace[2].MaxScore, 1e-9)

	for i := 1; i < len(res.Trace); i++ {
		assert.GreaterOrEqual(t, res.Trace[i].MaxScore, res.Trace[i-1].MaxScore)
	}

	quiet, err := Find(context.Background(), singleOutlier(t), WithK(1), WithMinSupport(1), WithAlpha(0.95))
	require.NoError(t, err)
	assert.Nil(t, quiet.Trace)
}

func TestFind_TraceRecordsEmptyLevel(t *testing.T) {
	// Uniform errors leave no level-2 candidate with a positive bound.
	mc := &BasicMetricsCollector{}
	res, err := Find(context.Background(), uniformErrors(t),
		WithK(2), WithMinSupport(10), WithVerbose(true), WithMetricsCollector(mc))
	require.NoError(t, err)

	require.Len(t, res.Trace, 2)
	assert.Equal(t, Trace{Level: 1, Generated: 4, Valid: 4, MaxScore: -0.5, MinScore: -0.5}, res.Trace[0])
	assert.Equal(t, Trace{Level: 2, MaxScore: -0.5, MinScore: -0.5}, res.Trace[1])

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.LevelCount)
	assert.Equal(t, int64(2), stats.MaxLevel)
	assert.Zero(t, stats.EvaluationCount)
}

func TestFind_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	_, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithMetricsCollector(mc))
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Zero(t, stats.RunErrors)
	assert.Equal(t, int64(3), stats.LevelCount)
	assert.Equal(t, int64(3), stats.MaxLevel)
	assert.Equal(t, int64(2), stats.EvaluationCount)
	assert.Equal(t, int64(4), stats.CandidatesEvaluated)
	assert.Equal(t, int64(1), stats.SlicesFound)
}

func TestFind_MemoryLimit(t *testing.T) {
	mc := &BasicMetricsCollector{}
	_, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithMemoryLimit(1), WithMetricsCollector(mc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(1), mc.GetStats().RunErrors)

	_, err = Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithMemoryLimit(1<<20))
	assert.NoError(t, err)
}

func TestFind_MemoryLimitPerLevel(t *testing.T) {
	// Level 2 generates three candidates, level 3 one; the limit applies to
	// the generated set of a single level.
	limit := resource.CandidateBytes(3, 2)

	res, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithMemoryLimit(limit))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 1, 2}}, res.TopK)

	_, err = Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithMemoryLimit(limit-1))
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Contains(t, err.Error(), "level 2 with 3 candidates")
}

func TestFind_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithVerbose(true), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"basic slices created"`)
	assert.Contains(t, out, `"msg":"level evaluated"`)
	assert.Contains(t, out, `"msg":"slice search completed"`)
	assert.Contains(t, out, `"max_score"`)
	assert.Contains(t, out, `"entered"`)

	// Without verbose, per-level records drop to Debug.
	buf.Reset()
	_, err = Find(context.Background(), singleOutlier(t),
		WithK(1), WithMinSupport(1), WithAlpha(0.95), WithLogger(logger))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "level evaluated")
	assert.Contains(t, buf.String(), "slice search completed")
}

func TestFind_ModesAgree(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		ds := randomDataset(t, seed, 300, 5, 4)

		want, err := Find(context.Background(), ds, WithK(6), WithMinSupport(5), WithAlpha(0.9), WithTaskParallel(false))
		require.NoError(t, err)

		for _, bs := range []int{1, 3, 16, 1000} {
			got, err := Find(context.Background(), ds, WithK(6), WithMinSupport(5), WithAlpha(0.9),
				WithTaskParallel(true), WithBlockSize(bs), WithWorkers(3))
			require.NoError(t, err)
			assert.Equal(t, want, got, "seed %d block size %d", seed, bs)
		}
	}
}

// bruteForce scores every slice of ds and returns the positive scores of
// slices with enough support, best first.
func bruteForce(ds *dataset.Dataset, minSup int, alpha float64) []float64 {
	m, n := ds.Dims()
	rows := make([][]int, m)
	total := 0.0
	for i := range rows {
		rows[i] = make([]int, n)
		for j := range rows[i] {
			rows[i][j] = ds.At(i, j)
		}
		total += ds.Errors()[i]
	}
	avgErr := total / float64(m)

	var scores []float64
	for _, sl := range testutil.BruteForceSlices(rows, ds.Errors(), minSup, func(size, errSum float64) float64 {
		return score.Score(size, errSum, avgErr, alpha, m)
	}) {
		if sl.Score > 0 {
			scores = append(scores, sl.Score)
		}
	}
	return scores
}

func TestFind_MatchesBruteForce(t *testing.T) {
	const k = 5
	for seed := int64(1); seed <= 8; seed++ {
		ds := randomDataset(t, seed, 120, 4, 3)
		for _, alpha := range []float64{0.6, 0.9, 0.99} {
			res, err := Find(context.Background(), ds, WithK(k), WithMinSupport(3), WithAlpha(alpha))
			require.NoError(t, err)

			want := bruteForce(ds, 3, alpha)
			if len(want) > k {
				want = want[:k]
			}

			var got []float64
			for _, s := range res.Stats {
				if s.Score > 0 {
					got = append(got, s.Score)
				}
			}
			require.Len(t, got, len(want), "seed %d alpha %v", seed, alpha)
			for i := range want {
				assert.InDelta(t, want[i], got[i], 1e-9, "seed %d alpha %v rank %d", seed, alpha, i)
			}
		}
	}
}

func TestFind_DecodeRoundTrip(t *testing.T) {
	ds := randomDataset(t, 42, 200, 4, 4)
	res, err := Find(context.Background(), ds, WithK(8), WithMinSupport(4), WithAlpha(0.9))
	require.NoError(t, err)
	require.NotZero(t, res.Len())

	enc, err := onehot.Encode(ds)
	require.NoError(t, err)

	for i, row := range res.TopK {
		cols, ok := enc.Columns(row)
		require.True(t, ok)
		rows := enc.Match(cols)
		assert.Equal(t, res.Stats[i].Size, int(rows.GetCardinality()))

		sum := 0.0
		it := rows.Iterator()
		for it.HasNext() {
			sum += ds.Errors()[it.Next()]
		}
		assert.InDelta(t, res.Stats[i].Error, sum, 1e-9)

		// One predicate per feature, matching the decoded row.
		assert.Len(t, res.Slices[i], len(cols))
		for _, p := range res.Slices[i] {
			assert.Equal(t, row[p.Feature], p.Value)
		}
	}
}

func TestFind_TopKInvariants(t *testing.T) {
	for seed := int64(10); seed < 15; seed++ {
		res, err := Find(context.Background(), randomDataset(t, seed, 150, 5, 3), WithK(4), WithMinSupport(2), WithAlpha(0.8))
		require.NoError(t, err)

		assert.LessOrEqual(t, res.Len(), 4)
		seen := map[string]bool{}
		for i, row := range res.TopK {
			key := string(mustJSON(t, row))
			assert.False(t, seen[key], "duplicate slice %v", row)
			seen[key] = true
			assert.GreaterOrEqual(t, res.Stats[i].Size, 2)
			if i > 0 {
				assert.GreaterOrEqual(t, res.Stats[i-1].Score, res.Stats[i].Score)
			}
		}
	}
}

func TestResult_Matrices(t *testing.T) {
	res, err := Find(context.Background(), uniformErrors(t), WithK(2), WithMinSupport(10))
	require.NoError(t, err)

	top := res.TopKMatrix()
	assert.Equal(t, &dataset.Matrix{Rows: 2, Cols: 2, Data: []float64{1, 0, 2, 0}}, top)

	stats := res.StatsMatrix()
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 4, stats.Cols)
	assert.Equal(t, []float64{-0.5, 25, 0.5, 50}, stats.Row(0))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, translateError(plain))

	err := translateError(dataset.ErrShape)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, dataset.ErrShape)
}
