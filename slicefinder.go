package slicefinder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/slicefinder/dataset"
	"github.com/hupe1980/slicefinder/internal/eval"
	"github.com/hupe1980/slicefinder/internal/lattice"
	"github.com/hupe1980/slicefinder/internal/onehot"
	"github.com/hupe1980/slicefinder/internal/resource"
	"github.com/hupe1980/slicefinder/internal/topk"
)

// Finder runs top-K slice searches with a fixed configuration.
// It holds no per-search state and is safe for concurrent use.
type Finder struct {
	opts options
}

// New validates the options and creates a Finder.
func New(optFns ...Option) (*Finder, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &Finder{opts: o}, nil
}

// Find is a convenience wrapper for New followed by Finder.Find.
func Find(ctx context.Context, ds *dataset.Dataset, optFns ...Option) (*Result, error) {
	f, err := New(optFns...)
	if err != nil {
		return nil, err
	}
	return f.Find(ctx, ds)
}

// Find returns the top-K slices of ds.
//
// Degenerate inputs (no records, no features, no positive error, or a
// minimum support above the record count) yield an empty Result.
func (f *Finder) Find(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	start := time.Now()
	s := &search{
		opts:   &f.opts,
		logger: f.opts.logger.WithK(f.opts.k),
		levelLog: func() slog.Level {
			if f.opts.verbose {
				return slog.LevelInfo
			}
			return slog.LevelDebug
		}(),
		mem: resource.NewController(resource.Config{MemoryLimitBytes: f.opts.memoryLimit}),
	}

	res, err := s.run(ctx, ds)
	err = translateError(err)

	d := time.Since(start)
	found := 0
	if res != nil {
		found = res.Len()
	}
	f.opts.metricsCollector.RecordRun(s.levels, found, d, err)
	s.logger.LogRun(ctx, s.levels, found, d, err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

// search holds the state of one Find call.
type search struct {
	opts     *options
	logger   *Logger
	levelLog slog.Level
	mem      *resource.Controller

	enc    *onehot.Encoding
	errs   []float64
	list   *topk.List
	trace  []Trace
	levels int
}

func (s *search) run(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if ds == nil {
		return nil, &InvalidInputError{Reason: "nil dataset"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := onehot.Encode(ds)
	if err != nil {
		return nil, err
	}
	s.enc = enc
	s.errs = ds.Errors()

	m, n := enc.Rows(), enc.Features()
	if m == 0 || n == 0 {
		return s.result(), nil
	}

	total := 0.0
	for _, v := range s.errs {
		total += v
	}
	avgErr := total / float64(m)
	if avgErr <= 0 {
		s.logger.Log(ctx, s.levelLog, "no positive error, nothing to search")
		return s.result(), nil
	}

	o := s.opts
	params := lattice.Params{
		MinSupport: o.minSupport,
		Alpha:      o.alpha,
		AvgError:   avgErr,
		Rows:       m,
	}
	s.list = topk.New(o.k, o.minSupport)

	// Level 1.
	levelStart := time.Now()
	parents, bst := lattice.Basic(enc, s.errs, params)
	entered := s.list.Merge(parents)
	s.levels = 1
	s.record(ctx, Trace{Level: 1, Generated: bst.Columns, Valid: bst.Kept}, entered, time.Since(levelStart))
	s.logger.LogBasicSlices(ctx, s.levelLog, bst.Columns, bst.Kept)

	mode := eval.DataParallel
	if o.taskParallel {
		mode = eval.TaskParallel
	}
	ev := eval.New(enc, s.errs, eval.Config{
		Mode:      mode,
		BlockSize: o.blockSize,
		Workers:   o.workers,
		Alpha:     o.alpha,
		AvgError:  avgErr,
	})

	maxLevel := n
	if o.maxLevel > 0 {
		maxLevel = min(maxLevel, o.maxLevel)
	}

	var reserved int64
	defer func() { s.mem.ReleaseMemory(reserved) }()

	for level := 2; level <= maxLevel && hasError(parents); level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		levelStart = time.Now()

		cands, jst := lattice.Join(enc, parents, lattice.JoinParams{
			Params:    params,
			Level:     level,
			Threshold: s.list.Threshold(),
		})
		s.logger.DebugContext(ctx, "candidates joined",
			"level", level,
			"parents", jst.Parents,
			"pairs", jst.Pairs,
			"invalid", jst.Invalid,
			"groups", jst.Groups,
			"missing_parents", jst.MissingParents,
			"size_pruned", jst.SizePruned,
			"score_pruned", jst.ScorePruned,
			"output", jst.Output,
		)

		// The previous level is released once its successors exist.
		need := resource.CandidateBytes(len(cands), level)
		s.mem.ReleaseMemory(reserved)
		reserved = 0
		if err := s.mem.AcquireMemory(need); err != nil {
			return nil, fmt.Errorf("level %d with %d candidates: %w", level, len(cands), err)
		}
		reserved = need

		if len(cands) == 0 {
			s.levels = level
			s.record(ctx, Trace{Level: level}, 0, time.Since(levelStart))
			break
		}

		evalStart := time.Now()
		if err := ev.Evaluate(ctx, cands); err != nil {
			return nil, err
		}
		o.metricsCollector.RecordEvaluation(len(cands), time.Since(evalStart))

		entered = s.list.Merge(cands)
		s.levels = level
		s.record(ctx, Trace{Level: level, Generated: len(cands), Valid: countValid(cands, o.minSupport)}, entered, time.Since(levelStart))

		parents = cands
	}

	s.logger.DebugContext(ctx, "candidate memory", "peak_bytes", s.mem.PeakMemoryUsage())
	return s.result(), nil
}

// record completes t with the top-K score range and reports it.
// entered is the number of slices of the level that made it into the list.
func (s *search) record(ctx context.Context, t Trace, entered int, d time.Duration) {
	t.MaxScore = s.list.Max()
	t.MinScore = s.list.Min()
	if s.opts.verbose {
		s.trace = append(s.trace, t)
	}
	s.opts.metricsCollector.RecordLevel(t.Level, t.Generated, t.Valid, d)
	s.logger.LogLevel(ctx, s.levelLog, t, s.list.Len(), entered, d)
}

func (s *search) result() *Result {
	res := &Result{
		TopK:   [][]int{},
		Stats:  []Stats{},
		Slices: [][]Predicate{},
		Trace:  s.trace,
	}
	if s.enc != nil {
		res.features = s.enc.Features()
	}
	if s.list == nil {
		return res
	}

	for _, c := range s.list.Entries() {
		row := s.enc.Decode(c.Slice)
		res.TopK = append(res.TopK, row)
		res.Stats = append(res.Stats, Stats{
			Score:    c.Stats.Score,
			Error:    c.Stats.Error,
			MaxError: c.Stats.MaxError,
			Size:     c.Stats.Size,
		})
		res.Slices = append(res.Slices, predicates(row))
	}
	return res
}

func hasError(cands []lattice.Candidate) bool {
	for i := range cands {
		if cands[i].Stats.Error > 0 {
			return true
		}
	}
	return false
}

func countValid(cands []lattice.Candidate, minSupport int) int {
	n := 0
	for i := range cands {
		if cands[i].Stats.Size >= minSupport && cands[i].Stats.Error > 0 {
			n++
		}
	}
	return n
}
