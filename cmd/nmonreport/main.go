// nmonreport aggregates nmon captures into per-host reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/xtxerr/nmonreport/internal/batch"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/loader"
	"github.com/xtxerr/nmonreport/internal/logging"
	"github.com/xtxerr/nmonreport/internal/metrics"
	"github.com/xtxerr/nmonreport/internal/report"
	rparquet "github.com/xtxerr/nmonreport/internal/report/parquet"
	"github.com/xtxerr/nmonreport/internal/report/query"
)

// Version is set at build time via ldflags
var Version = "dev"

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	cfgPath := flag.String("config", "nmonreport.yaml", "config file path (.yaml or .toml)")
	inDir := flag.String("in", "", "input directory, one subdirectory per host (overrides config)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	mask := flag.String("mask", "", "file name mask: *<mask>*.nmon")
	date := flag.String("d", "", "keep samples whose date contains this text")
	groupBy := flag.String("g", "", "group by: 10m, h, d (default: full resolution)")
	startHour := flag.Int("start-hour", 0, "first hour of day included")
	endHour := flag.Int("end-hour", 24, "hour of day where samples stop")
	reducer := flag.String("reducer", "", "auto, mean, sum, min, max")
	workers := flag.Int("workers", 0, "hosts processed in parallel")
	logLevel := flag.String("log-level", "", "debug, info, warn, error")
	logFormat := flag.String("log-format", "", "text, json, auto")
	doQuery := flag.Bool("query", false, "print a DuckDB summary of the exported points")
	noSummary := flag.Bool("no-summary", false, "do not print the host summary table")
	metricsFile := flag.String("metrics", "", "write run metrics to this Prometheus textfile")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("nmonreport", Version)
		return exitOK
	}

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = loader.DefaultConfig()
		} else {
			fmt.Fprintf(os.Stderr, "nmonreport: %v\n", err)
			return exitConfig
		}
	}

	// CLI overrides: only flags given on the command line replace file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input.Dir = *inDir
		case "out":
			cfg.Output.Dir = *outDir
		case "mask":
			cfg.Input.Mask = *mask
		case "d":
			cfg.Filter.Date = *date
		case "g":
			cfg.GroupBy = *groupBy
		case "start-hour":
			cfg.Filter.StartHour = *startHour
		case "end-hour":
			cfg.Filter.EndHour = *endHour
		case "reducer":
			cfg.Reducer = *reducer
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		case "query":
			cfg.Output.Query = *doQuery
		case "no-summary":
			cfg.Output.Summary = !*noSummary
		case "metrics":
			cfg.Metrics.Textfile = *metricsFile
		}
	})
	cfg.Normalize()

	// Validate
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "nmonreport: %v\n", err)
		return exitConfig
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "nmonreport: %v\n", err)
		return exitConfig
	}

	log := logging.Component("main")
	log.Info("nmonreport starting",
		"version", Version,
		"input", cfg.Input.Dir,
		"group_by", cfg.Granularity().Name(),
		"workers", cfg.Workers)

	// =========================================================================
	// Signal Handling
	// =========================================================================

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Run
	// =========================================================================

	hosts, err := batch.Discover(cfg.Input.Dir, cfg.Input.Mask)
	if err != nil {
		log.Error("discover hosts", "error", err)
		return exitFailed
	}
	log.Info("hosts discovered", "hosts", len(hosts))

	m, err := metrics.New(nil)
	if err != nil {
		log.Error("create metrics", "error", err)
		return exitFailed
	}

	runner := batch.New(batch.Config{
		Workers: cfg.Workers,
		Nmon:    cfg.NmonOptions(),
		Report:  cfg.ReportConfig(),
	}, m)

	res, err := runner.Run(ctx, hosts)
	if err != nil {
		log.Warn("batch interrupted", "error", err)
	}

	// =========================================================================
	// Sinks
	// =========================================================================

	code := exitOK
	if err != nil || !res.OK() {
		code = exitFailed
	}

	if cfg.Output.Summary {
		report.WriteSummary(os.Stdout, res.Reports)
		report.WriteFailures(os.Stdout, res.Failed)
	}

	if path := cfg.PointsPath(); path != "" && len(res.Reports) > 0 {
		if err := exportPoints(path, cfg.ParquetOptions(), res.Reports); err != nil {
			log.Error("export points", "path", path, "error", err)
			code = exitFailed
		} else if cfg.Output.Query {
			if err := printQuerySummary(ctx, cfg.DuckDBConfig(), path); err != nil {
				log.Error("query summary", "path", path, "error", err)
				code = exitFailed
			}
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("write metrics", "error", err)
			code = exitFailed
		}
	}

	return code
}

func exportPoints(path string, opts rparquet.Options, reports []*report.HostReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	w, err := rparquet.NewPointWriter(path, opts)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if err := w.WriteReport(r); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	info, err := rparquet.GetFileInfo(path)
	if err != nil {
		return fmt.Errorf("verify export: %w", err)
	}
	logging.Info("points exported", "path", path, "rows", info.NumRows, "bytes", info.Size)
	return nil
}

func printQuerySummary(ctx context.Context, cfg *query.Config, path string) error {
	svc, err := query.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	rows, err := svc.Summarize(ctx, path)
	if err != nil {
		return err
	}
	query.WriteSummaries(os.Stdout, rows)
	return nil
}
