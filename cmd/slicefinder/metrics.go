package main

import (
	"strconv"
	"time"

	"github.com/hupe1980/slicefinder"
	"github.com/prometheus/client_golang/prometheus"
)

// promCollector implements slicefinder.MetricsCollector.
type promCollector struct {
	levelLatency *prometheus.HistogramVec
	generated    *prometheus.CounterVec
	valid        *prometheus.CounterVec
	evaluated    prometheus.Counter
	evalLatency  prometheus.Histogram
	runs         *prometheus.CounterVec
	runLatency   prometheus.Histogram
	found        prometheus.Gauge
	levels       prometheus.Gauge
}

var _ slicefinder.MetricsCollector = (*promCollector)(nil)

func newPromCollector(reg prometheus.Registerer) *promCollector {
	c := &promCollector{
		levelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slicefinder_level_duration_seconds",
			Help:    "Time spent per lattice level",
			Buckets: prometheus.DefBuckets,
		}, []string{"level"}),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicefinder_candidates_generated_total",
			Help: "Candidate slices generated per level",
		}, []string{"level"}),
		valid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicefinder_candidates_valid_total",
			Help: "Candidate slices meeting support and error requirements per level",
		}, []string{"level"}),
		evaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slicefinder_candidates_evaluated_total",
			Help: "Candidate slices evaluated against the data",
		}),
		evalLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "slicefinder_evaluation_duration_seconds",
			Help:    "Time spent evaluating one level's candidates",
			Buckets: prometheus.DefBuckets,
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slicefinder_runs_total",
			Help: "Completed searches",
		}, []string{"status"}),
		runLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "slicefinder_run_duration_seconds",
			Help:    "End-to-end search time",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		found: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slicefinder_slices_found",
			Help: "Slices returned by the last search",
		}),
		levels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slicefinder_levels",
			Help: "Lattice levels searched by the last search",
		}),
	}

	reg.MustRegister(c.levelLatency, c.generated, c.valid, c.evaluated, c.evalLatency,
		c.runs, c.runLatency, c.found, c.levels)
	return c
}

func (c *promCollector) RecordLevel(level, generated, valid int, d time.Duration) {
	l := strconv.Itoa(level)
	c.levelLatency.WithLabelValues(l).Observe(d.Seconds())
	c.generated.WithLabelValues(l).Add(float64(generated))
	c.valid.WithLabelValues(l).Add(float64(valid))
}

func (c *promCollector) RecordEvaluation(candidates int, d time.Duration) {
	c.evaluated.Add(float64(candidates))
	c.evalLatency.Observe(d.Seconds())
}

func (c *promCollector) RecordRun(levels, found int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(status).Inc()
	c.runLatency.Observe(d.Seconds())
	c.found.Set(float64(found))
	c.levels.Set(float64(levels))
}
