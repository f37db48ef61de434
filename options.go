package slicefinder

import (
	"log/slog"
	"math"
	"runtime"

	"github.com/hupe1980/slicefinder/internal/eval"
)

// Defaults used when an option is not given.
const (
	DefaultK          = 4
	DefaultMinSupport = 32
	DefaultAlpha      = 0.5
	DefaultBlockSize  = eval.DefaultBlockSize
)

type options struct {
	k            int
	maxLevel     int
	minSupport   int
	alpha        float64
	taskParallel bool
	blockSize    int
	workers      int
	verbose      bool
	memoryLimit  int64

	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Finder.
type Option func(*options)

// WithK sets the number of slices to return. Must be positive.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithMaxLevel caps the number of predicates per slice.
// 0 means no cap beyond the number of features.
func WithMaxLevel(level int) Option {
	return func(o *options) {
		o.maxLevel = level
	}
}

// WithMinSupport sets the minimum number of records a slice must match.
func WithMinSupport(n int) Option {
	return func(o *options) {
		o.minSupport = n
	}
}

// WithAlpha sets the weight of the error term against the size term, in [0, 1].
//
// Higher values favor small slices with high error; lower values favor
// large slices.
func WithAlpha(alpha float64) Option {
	return func(o *options) {
		o.alpha = alpha
	}
}

// WithTaskParallel selects task-parallel (true, default) or data-parallel
// candidate evaluation. Results are identical.
func WithTaskParallel(enabled bool) Option {
	return func(o *options) {
		o.taskParallel = enabled
	}
}

// WithBlockSize sets the number of candidates per task-parallel block.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithWorkers bounds evaluation concurrency. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithVerbose records a per-level Trace in the Result and raises per-level
// log records from Debug to Info.
func WithVerbose(enabled bool) Option {
	return func(o *options) {
		o.verbose = enabled
	}
}

// WithMemoryLimit caps the estimated memory of one level's candidate set.
// The estimate is checked once the level's candidates have been generated
// and before they are evaluated, so the limit stops a search from going
// deeper rather than preventing that allocation. A level exceeding it fails
// the search with ErrMemoryLimitExceeded. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMetricsCollector configures a metrics collector for monitoring searches.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &slicefinder.BasicMetricsCollector{}
//	f, _ := slicefinder.New(slicefinder.WithMetricsCollector(metrics))
//	// ... run searches ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Evaluated: %d\n", stats.RunCount, stats.CandidatesEvaluated)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := slicefinder.NewJSONLogger(slog.LevelInfo)
//	f, _ := slicefinder.New(slicefinder.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		k:                DefaultK,
		minSupport:       DefaultMinSupport,
		alpha:            DefaultAlpha,
		taskParallel:     true,
		blockSize:        DefaultBlockSize,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.workers == 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

func (o *options) validate() error {
	switch {
	case o.k <= 0:
		return &ConfigurationError{Field: "K", Value: o.k, Reason: "must be positive"}
	case o.maxLevel < 0:
		return &ConfigurationError{Field: "MaxLevel", Value: o.maxLevel, Reason: "must not be negative"}
	case o.minSupport < 0:
		return &ConfigurationError{Field: "MinSupport", Value: o.minSupport, Reason: "must not be negative"}
	case math.IsNaN(o.alpha) || o.alpha < 0 || o.alpha > 1:
		return &ConfigurationError{Field: "Alpha", Value: o.alpha, Reason: "must be in [0, 1]"}
	case o.blockSize <= 0:
		return &ConfigurationError{Field: "BlockSize", Value: o.blockSize, Reason: "must be positive"}
	case o.workers < 0:
		return &ConfigurationError{Field: "Workers", Value: o.workers, Reason: "must not be negative"}
	case o.memoryLimit < 0:
		return &ConfigurationError{Field: "MemoryLimit", Value: o.memoryLimit, Reason: "must not be negative"}
	}
	return nil
}
