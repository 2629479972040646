// Package batch runs the per-host pipeline over a set of host directories.
//
// Hosts are independent: each one is parsed and aggregated on its own
// goroutine, bounded by the worker count. A fatal error in one host fails
// that host only.
package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/logging"
	"github.com/xtxerr/nmonreport/internal/metrics"
	"github.com/xtxerr/nmonreport/internal/nmon"
	"github.com/xtxerr/nmonreport/internal/report"
)

var log = logging.Component("batch")

// Config configures a Runner.
type Config struct {
	// Workers bounds the hosts processed at once.
	Workers int
	Nmon    nmon.Options
	Report  report.Config
}

// Result is the outcome of a batch.
type Result struct {
	// Reports holds the hosts that produced a report, sorted by directory.
	Reports []*report.HostReport
	// Failed maps a host directory to the error that aborted it.
	Failed map[string]error
	// Skipped lists hosts without input files or without timestamps.
	Skipped []string
}

// OK reports whether no host failed.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// Runner processes hosts concurrently.
type Runner struct {
	cfg     Config
	metrics *metrics.Metrics
}

// New creates a Runner. m may be nil.
func New(cfg Config, m *metrics.Metrics) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{cfg: cfg, metrics: m}
}

// Run processes every host. Per-host errors are collected in the Result;
// the returned error is non-nil only when ctx ends the batch early.
func (r *Runner) Run(ctx context.Context, hosts []Host) (*Result, error) {
	res := &Result{Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for _, h := range hosts {
		g.Go(func() error {
			start := time.Now()
			rep, outcome, err := r.runHost(gctx, h)

			mu.Lock()
			switch outcome {
			case metrics.OutcomeOK:
				res.Reports = append(res.Reports, rep)
			case metrics.OutcomeSkipped:
				res.Skipped = append(res.Skipped, h.Name)
			default:
				res.Failed[h.Name] = err
			}
			mu.Unlock()

			if r.metrics != nil {
				r.metrics.HostDone(outcome, time.Since(start))
			}
			return nil
		})
	}

	_ = g.Wait()

	sort.Slice(res.Reports, func(i, j int) bool { return res.Reports[i].Dir < res.Reports[j].Dir })
	sort.Strings(res.Skipped)

	if r.metrics != nil {
		r.metrics.Finish(time.Now())
	}

	log.Info("batch complete",
		"hosts", len(hosts),
		"reports", len(res.Reports),
		"failed", len(res.Failed),
		"skipped", len(res.Skipped))

	return res, ctx.Err()
}

func (r *Runner) runHost(ctx context.Context, h Host) (*report.HostReport, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, metrics.OutcomeFailed, err
	}

	ctx = logging.ContextWithHost(ctx, h.Name)
	hlog := logging.WithContext(ctx).With("component", "batch")

	if len(h.Files) == 0 {
		hlog.Info("host skipped", "reason", errors.ErrNoInput)
		return nil, metrics.OutcomeSkipped, errors.ErrNoInput
	}

	data, err := nmon.ParseFiles(ctx, h.Files, r.cfg.Nmon)
	if errors.Is(err, errors.ErrNoTimestamp) {
		hlog.Warn("host skipped", "files", len(h.Files), "reason", err)
		r.observeStats(data)
		return nil, metrics.OutcomeSkipped, err
	}
	if err != nil {
		hlog.Error("host failed", "fatal", errors.IsFatal(err), "error", err)
		return nil, metrics.OutcomeFailed, err
	}
	r.observeStats(data)

	rep, err := report.Build(data, h.Dir, r.cfg.Report)
	if err != nil {
		hlog.Error("host failed", "error", err)
		return nil, metrics.OutcomeFailed, err
	}
	r.observeReport(rep)

	hlog.Debug("host done",
		"hostname", rep.Host,
		"files", rep.Files,
		"series", len(rep.All()),
		"omitted", len(rep.Omitted))
	return rep, metrics.OutcomeOK, nil
}

func (r *Runner) observeStats(data *nmon.HostData) {
	if r.metrics == nil || data == nil {
		return
	}
	r.metrics.ObserveStats(data.Stats)
	for tag, samples := range data.Series {
		r.metrics.ObserveSamples(tag, len(samples))
	}
}

func (r *Runner) observeReport(rep *report.HostReport) {
	if r.metrics == nil {
		return
	}
	for _, s := range rep.All() {
		r.metrics.ObservePoints(s.Name, len(s.Points))
	}
	for _, tag := range rep.Omitted {
		r.metrics.SeriesOmitted(tag)
	}
}
