package slicefinder

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting search metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; cmd/slicefinder ships such an implementation.
type MetricsCollector interface {
	// RecordLevel is called after each lattice level. generated is the number
	// of candidates (one-hot columns at level 1), valid the number that met
	// the support and error requirements.
	RecordLevel(level, generated, valid int, duration time.Duration)

	// RecordEvaluation is called after each batch of candidates is evaluated.
	RecordEvaluation(candidates int, duration time.Duration)

	// RecordRun is called once per search. err is nil if successful.
	RecordRun(levels, found int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLevel(int, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordEvaluation(int, time.Duration)      {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount            atomic.Int64
	RunErrors           atomic.Int64
	RunTotalNanos       atomic.Int64
	LevelCount          atomic.Int64
	CandidatesGenerated atomic.Int64
	CandidatesValid     atomic.Int64
	EvaluationCount     atomic.Int64
	CandidatesEvaluated atomic.Int64
	EvaluationNanos     atomic.Int64
	MaxLevel            atomic.Int64
	SlicesFound         atomic.Int64
}

// RecordLevel implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLevel(level, generated, valid int, _ time.Duration) {
	b.LevelCount.Add(1)
	b.CandidatesGenerated.Add(int64(generated))
	b.CandidatesValid.Add(int64(valid))
	for {
		cur := b.MaxLevel.Load()
		if int64(level) <= cur || b.MaxLevel.CompareAndSwap(cur, int64(level)) {
			return
		}
	}
}

// RecordEvaluation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluation(candidates int, duration time.Duration) {
	b.EvaluationCount.Add(1)
	b.CandidatesEvaluated.Add(int64(candidates))
	b.EvaluationNanos.Add(duration.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_, found int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	b.SlicesFound.Add(int64(found))
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:            b.RunCount.Load(),
		RunErrors:           b.RunErrors.Load(),
		RunAvgNanos:         avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		LevelCount:          b.LevelCount.Load(),
		MaxLevel:            b.MaxLevel.Load(),
		CandidatesGenerated: b.CandidatesGenerated.Load(),
		CandidatesValid:     b.CandidatesValid.Load(),
		EvaluationCount:     b.EvaluationCount.Load(),
		CandidatesEvaluated: b.CandidatesEvaluated.Load(),
		EvaluationAvgNanos:  avg(b.EvaluationNanos.Load(), b.EvaluationCount.Load()),
		SlicesFound:         b.SlicesFound.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of metrics from BasicMetricsCollector.
type BasicMetricsStats struct {
	RunCount            int64
	RunErrors           int64
	RunAvgNanos         int64
	LevelCount          int64
	MaxLevel            int64
	CandidatesGenerated int64
	CandidatesValid     int64
	EvaluationCount     int64
	CandidatesEvaluated int64
	EvaluationAvgNanos  int64
	SlicesFound         int64
}
