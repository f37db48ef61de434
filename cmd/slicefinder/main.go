// Command slicefinder loads a feature matrix and an error vector, runs the
// top-K slice search and writes the decoded slices and their statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/slicefinder"
	"github.com/hupe1980/slicefinder/codec"
	"github.com/hupe1980/slicefinder/dataset"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "slicefinder: %v\n", err)
		}
		os.Exit(1)
	}
}

type config struct {
	x, e         string
	outTopK      string
	outStats     string
	report       string
	codec        string
	k            int
	maxLevel     int
	minSupport   int
	alpha        float64
	taskParallel bool
	blockSize    int
	workers      int
	verbose      bool
	logFormat    string
	logLevel     string
	metricsAddr  string
	ioLimit      int64
	memoryLimit  int64
	compression  string
	minioSecure  bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet("slicefinder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.x, "x", "", "feature matrix location (path, s3://bucket/key or minio://endpoint/bucket/key)")
	fs.StringVar(&cfg.e, "e", "", "error vector location")
	fs.StringVar(&cfg.outTopK, "out-topk", "", "write the top-K slices to this location")
	fs.StringVar(&cfg.outStats, "out-stats", "", "write the slice statistics to this location")
	fs.StringVar(&cfg.report, "report", "", "write a report to this location (\"-\" for stdout)")
	fs.StringVar(&cfg.codec, "codec", codec.Default.Name(), "report codec")
	fs.IntVar(&cfg.k, "k", slicefinder.DefaultK, "number of slices to return")
	fs.IntVar(&cfg.maxLevel, "max-level", 0, "maximum lattice level (0 = number of features)")
	fs.IntVar(&cfg.minSupport, "min-support", slicefinder.DefaultMinSupport, "minimum slice size")
	fs.Float64Var(&cfg.alpha, "alpha", slicefinder.DefaultAlpha, "weight of the error term in the score")
	fs.BoolVar(&cfg.taskParallel, "task-parallel", true, "evaluate candidates in parallel blocks instead of parallel intersections")
	fs.IntVar(&cfg.blockSize, "block-size", slicefinder.DefaultBlockSize, "candidates per block in task-parallel mode")
	fs.IntVar(&cfg.workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	fs.BoolVar(&cfg.verbose, "verbose", false, "log and record every lattice level")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.Int64Var(&cfg.ioLimit, "io-limit", 0, "dataset read limit in bytes per second (0 = unlimited)")
	fs.Int64Var(&cfg.memoryLimit, "memory-limit", 0, "candidate memory limit in bytes per level (0 = unlimited)")
	fs.StringVar(&cfg.compression, "compression", "none", "compression for binary outputs: none, lz4 or zstd")
	fs.BoolVar(&cfg.minioSecure, "minio-secure", true, "use TLS for minio:// locations")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.x == "" || cfg.e == "" {
		return nil, errors.New("-x and -e are required")
	}
	return cfg, nil
}

func newLogger(cfg *config, stderr io.Writer) (*slicefinder.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q", cfg.logLevel)
	}

	hopts := &slog.HandlerOptions{Level: level}
	switch cfg.logFormat {
	case "text":
		return slicefinder.NewLogger(slog.NewTextHandler(stderr, hopts)), nil
	case "json":
		return slicefinder.NewLogger(slog.NewJSONHandler(stderr, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid -log-format %q", cfg.logFormat)
	}
}

// report is the serialized search outcome.
type report struct {
	X       string                        `json:"x"`
	E       string                        `json:"e"`
	Rows    int                           `json:"rows"`
	Cols    int                           `json:"cols"`
	Elapsed string                        `json:"elapsed"`
	Result  *slicefinder.Result           `json:"result"`
	Metrics slicefinder.BasicMetricsStats `json:"metrics"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	rc, ok := codec.ByName(cfg.codec)
	if !ok {
		return fmt.Errorf("unknown -codec %q, want one of %v", cfg.codec, codec.Names())
	}

	compression, err := dataset.ParseCompression(cfg.compression)
	if err != nil {
		return err
	}

	basic := &slicefinder.BasicMetricsCollector{}
	var collector slicefinder.MetricsCollector = basic
	if cfg.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = multiCollector{basic, newPromCollector(reg)}

		srv, err := serveMetrics(cfg.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", cfg.metricsAddr)
	}

	f, err := slicefinder.New(
		slicefinder.WithK(cfg.k),
		slicefinder.WithMaxLevel(cfg.maxLevel),
		slicefinder.WithMinSupport(cfg.minSupport),
		slicefinder.WithAlpha(cfg.alpha),
		slicefinder.WithTaskParallel(cfg.taskParallel),
		slicefinder.WithBlockSize(cfg.blockSize),
		slicefinder.WithWorkers(cfg.workers),
		slicefinder.WithVerbose(cfg.verbose),
		slicefinder.WithMemoryLimit(cfg.memoryLimit),
		slicefinder.WithMetricsCollector(collector),
		slicefinder.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	st := newStores(cfg.minioSecure)

	var readOpts []dataset.Option
	if cfg.ioLimit > 0 {
		readOpts = append(readOpts, dataset.WithIOLimit(cfg.ioLimit))
	}

	x, err := readLocation(ctx, st, cfg.x, readOpts...)
	if err != nil {
		return err
	}
	e, err := readLocation(ctx, st, cfg.e, readOpts...)
	if err != nil {
		return err
	}
	ds, err := dataset.New(x, e)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "rows", ds.Rows(), "cols", ds.Features())

	start := time.Now()
	res, err := f.Find(ctx, ds)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if cfg.outTopK == "" && cfg.outStats == "" && cfg.report == "" {
		printSlices(stdout, res)
	}

	writeOpts := []dataset.Option{dataset.WithCompression(compression)}
	if cfg.outTopK != "" {
		if err := writeLocation(ctx, st, cfg.outTopK, res.TopKMatrix(), writeOpts...); err != nil {
			return err
		}
	}
	if cfg.outStats != "" {
		if err := writeLocation(ctx, st, cfg.outStats, res.StatsMatrix(), writeOpts...); err != nil {
			return err
		}
	}

	if cfg.report != "" {
		data, err := rc.Marshal(report{
			X:       cfg.x,
			E:       cfg.e,
			Rows:    ds.Rows(),
			Cols:    ds.Features(),
			Elapsed: elapsed.String(),
			Result:  res,
			Metrics: basic.GetStats(),
		})
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

		if cfg.report == "-" {
			_, err = fmt.Fprintln(stdout, string(data))
			return err
		}

		loc, err := parseLocation(cfg.report)
		if err != nil {
			return err
		}
		store, err := st.open(ctx, loc)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, loc.key, data); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func readLocation(ctx context.Context, st *stores, uri string, opts ...dataset.Option) (*dataset.Matrix, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, err
	}
	store, err := st.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	return dataset.ReadMatrix(ctx, store, loc.key, opts...)
}

func writeLocation(ctx context.Context, st *stores, uri string, m *dataset.Matrix, opts ...dataset.Option) error {
	loc, err := parseLocation(uri)
	if err != nil {
		return err
	}
	store, err := st.open(ctx, loc)
	if err != nil {
		return err
	}
	return dataset.WriteMatrix(ctx, store, loc.key, m, opts...)
}

func printSlices(w io.Writer, res *slicefinder.Result) {
	if res.Len() == 0 {
		fmt.Fprintln(w, "no slices found")
		return
	}
	for i, row := range res.TopK {
		s := res.Stats[i]
		fmt.Fprintf(w, "%v score=%.4f error=%.4f max_error=%.4f size=%d\n", row, s.Score, s.Error, s.MaxError, s.Size)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	return srv, nil
}

// multiCollector fans metrics out to several collectors.
type multiCollector []slicefinder.MetricsCollector

func (m multiCollector) RecordLevel(level, generated, valid int, d time.Duration) {
	for _, c := range m {
		c.RecordLevel(level, generated, valid, d)
	}
}

func (m multiCollector) RecordEvaluation(candidates int, d time.Duration) {
	for _, c := range m {
		c.RecordEvaluation(candidates, d)
	}
}

func (m multiCollector) RecordRun(levels, found int, d time.Duration, err error) {
	for _, c := range m {
		c.RecordRun(levels, found, d, err)
	}
}
