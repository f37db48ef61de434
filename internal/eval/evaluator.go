package eval

import (
	"context"
	"math"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/slicefinder/internal/lattice"
	"github.com/hupe1980/slicefinder/internal/onehot"
	"github.com/hupe1980/slicefinder/internal/score"
	"golang.org/x/sync/errgroup"
)

// Mode selects how a candidate batch is scheduled.
type Mode int

const (
	// DataParallel evaluates the batch in one pass.
	DataParallel Mode = iota
	// TaskParallel evaluates blocks of the batch concurrently.
	TaskParallel
)

func (m Mode) String() string {
	switch m {
	case DataParallel:
		return "data-parallel"
	case TaskParallel:
		return "task-parallel"
	default:
		return "unknown"
	}
}

// DefaultBlockSize is the number of candidates per task-parallel block.
const DefaultBlockSize = 16

// Config configures an Evaluator.
type Config struct {
	Mode Mode

	// BlockSize is the task-parallel block size. Defaults to DefaultBlockSize.
	BlockSize int

	// Workers bounds concurrent blocks (task-parallel) or the parallelism of
	// each intersection (data-parallel). Defaults to GOMAXPROCS.
	Workers int

	Alpha    float64
	AvgError float64
}

// Evaluator evaluates candidate slices against an encoding.
// It only reads shared state and is safe for concurrent use.
type Evaluator struct {
	enc  *onehot.Encoding
	errs []float64
	cfg  Config
}

// New creates an Evaluator. errs holds one error per encoded row.
func New(enc *onehot.Encoding, errs []float64, cfg Config) *Evaluator {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{enc: enc, errs: errs, cfg: cfg}
}

// Evaluate replaces the stats of every candidate with its exact statistics.
func (e *Evaluator) Evaluate(ctx context.Context, cands []lattice.Candidate) error {
	if len(cands) == 0 {
		return nil
	}
	if e.cfg.Mode == TaskParallel {
		return e.evaluateBlocks(ctx, cands)
	}

	for i := range cands {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := cands[i].Slice
		var rows *roaring.Bitmap
		if len(s) < 2 {
			rows = e.enc.Match(s)
		} else {
			rows = roaring.ParAnd(e.cfg.Workers, e.postings(s)...)
		}
		cands[i].Stats = e.stats(rows)
	}
	return nil
}

func (e *Evaluator) evaluateBlocks(ctx context.Context, cands []lattice.Candidate) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for beg := 0; beg < len(cands); beg += e.cfg.BlockSize {
		block := cands[beg:min(beg+e.cfg.BlockSize, len(cands))]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := range block {
				rows := e.enc.Match(block[i].Slice)
				block[i].Stats = e.stats(rows)
			}
			return nil
		})
	}

	return g.Wait()
}

func (e *Evaluator) postings(s lattice.Slice) []*roaring.Bitmap {
	bms := make([]*roaring.Bitmap, len(s))
	for i, c := range s {
		bms[i] = e.enc.Posting(c)
	}
	return bms
}

func (e *Evaluator) stats(rows *roaring.Bitmap) lattice.Stats {
	size := int(rows.GetCardinality())
	if size == 0 {
		return lattice.Stats{Score: math.Inf(-1)}
	}

	total, maxErr := 0.0, math.Inf(-1)
	it := rows.Iterator()
	for it.HasNext() {
		v := e.errs[it.Next()]
		total += v
		maxErr = max(maxErr, v)
	}

	return lattice.Stats{
		Score:    score.Score(float64(size), total, e.cfg.AvgError, e.cfg.Alpha, e.enc.Rows()),
		Error:    total,
		MaxError: maxErr,
		Size:     size,
	}
}
