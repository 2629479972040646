package nmon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xtxerr/nmonreport/config"
	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/logging"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

// Stats counts lines of a host run.
type Stats struct {
	Files     int
	Lines     int
	Malformed int
	Markers   int
	Devices   int
	Collector CollectorStats
}

// HostData is everything a run extracted from one host's file set.
type HostData struct {
	// Host is the AAA,host name, "" if the files never declared one.
	Host string
	// LastDate is the date text of the last marker read.
	LastDate string
	// Files lists the parsed files in order.
	Files []string
	// Devices lists discovered multipath devices.
	Devices []string
	// Headers maps each tag to its declared column names.
	Headers map[string][]string
	// Series maps reported tags to their samples, in file order.
	Series map[string][]types.Sample

	Stats Stats
}

// Samples returns the samples of tag.
func (h *HostData) Samples(tag string) []types.Sample {
	return h.Series[tag]
}

// Run holds the state of one host's processing run. It must be fed lines
// in file order, then line order, from a single goroutine.
type Run struct {
	opts      Options
	dates     *DateParser
	times     *TimeIndex
	devices   *DeviceResolver
	collector *Collector

	host  string
	files []string
	stats Stats

	log *slog.Logger
}

// NewRun creates the state for one host run.
func NewRun(opts Options) *Run {
	dates := NewDateParser(opts.DateCacheSize)
	return &Run{
		opts:      opts,
		dates:     dates,
		times:     NewTimeIndex(dates),
		devices:   NewDeviceResolver(),
		collector: NewCollector(opts),
		log:       logging.Component("nmon"),
	}
}

// Feed processes one raw line.
//
// Malformed lines are counted and skipped. Any returned error is fatal for
// the run.
func (r *Run) Feed(line string) error {
	r.stats.Lines++

	rec, err := Decode(line)
	if err != nil {
		r.stats.Malformed++
		return nil
	}

	if r.devices.Observe(rec) {
		r.stats.Devices++
	}

	if rec.Tag == constants.TagHostInfo && rec.Ref == constants.HostInfoKeyHost {
		if name, ok := rec.Field(2); ok {
			r.host = name
		}
	}

	isMarker, err := r.times.Observe(rec)
	if err != nil {
		if errors.Is(err, errors.ErrMalformedLine) {
			r.stats.Malformed++
			return nil
		}
		return err
	}
	if isMarker {
		r.stats.Markers++
		return nil
	}

	return r.collector.Observe(rec, r.times, r.devices)
}

// ReadFrom feeds every line of rd. The context is checked every
// CancelCheckLines lines. Errors carry the line number.
func (r *Run) ReadFrom(ctx context.Context, rd io.Reader) error {
	maxLine := r.opts.MaxLineSize
	if maxLine <= 0 {
		maxLine = config.DefaultMaxLineSize
	}
	every := r.opts.CancelCheckLines
	if every <= 0 {
		every = config.DefaultCancelCheckLines
	}

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%every == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := r.Feed(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return ctx.Err()
}

// ParseFile feeds one file into the run.
func (r *Run) ParseFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r.files = append(r.files, path)
	r.stats.Files++

	before := r.stats.Lines
	if err := r.ReadFrom(ctx, f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	r.log.Debug("file parsed",
		"file", path,
		"lines", r.stats.Lines-before,
		"markers", r.times.Markers(),
		"devices", r.devices.Len())
	return nil
}

// Result returns the data collected so far.
func (r *Run) Result() *HostData {
	series := make(map[string][]types.Sample)
	headers := make(map[string][]string)
	for _, tag := range r.collector.Tags() {
		h, _ := r.collector.Header(tag)
		headers[tag] = h
		if s := r.collector.Series(tag); len(s) > 0 {
			series[tag] = s
		}
	}

	stats := r.stats
	stats.Collector = r.collector.Stats()

	return &HostData{
		Host:     r.host,
		LastDate: r.times.LastDate(),
		Files:    append([]string(nil), r.files...),
		Devices:  r.devices.Devices(),
		Headers:  headers,
		Series:   series,
		Stats:    stats,
	}
}

// ParseFiles runs one host's file set in the given order and returns the
// collected data. A fatal error discards everything collected for the host.
// A file set without any marker returns ErrNoTimestamp along with the data.
func ParseFiles(ctx context.Context, paths []string, opts Options) (*HostData, error) {
	if len(paths) == 0 {
		return nil, errors.ErrNoInput
	}

	run := NewRun(opts)
	for _, path := range paths {
		if err := run.ParseFile(ctx, path); err != nil {
			return nil, err
		}
	}

	data := run.Result()
	if !run.times.Seen() {
		return data, errors.ErrNoTimestamp
	}
	return data, nil
}
