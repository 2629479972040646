package nmon

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xtxerr/nmonreport/config"
	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

// Options configures filtering and series selection for a host run.
type Options struct {
	// StartHour is the first hour of day kept (inclusive).
	StartHour int
	// EndHour is the hour of day where samples stop being kept (exclusive).
	EndHour int
	// DateFilter keeps only markers whose date text contains it. Empty disables.
	DateFilter string

	// Selected tags are collected as full series.
	Selected []string
	// DiskTags are summed over multipath device columns.
	DiskTags []string

	// DateCacheSize bounds the parsed-date cache.
	DateCacheSize int
	// MaxLineSize bounds a single input line.
	MaxLineSize int
	// CancelCheckLines is how many lines are read between context checks.
	CancelCheckLines int
}

// DefaultOptions returns options that keep every hour and date and report
// CPU_ALL plus both disk throughput series.
func DefaultOptions() Options {
	return Options{
		StartHour:        config.DefaultStartHour,
		EndHour:          config.DefaultEndHour,
		DateFilter:       config.DefaultDateFilter,
		Selected:         append([]string(nil), constants.DefaultSelectedTags...),
		DiskTags:         append([]string(nil), constants.DefaultDiskTags...),
		DateCacheSize:    config.DefaultDateCacheSize,
		MaxLineSize:      config.DefaultMaxLineSize,
		CancelCheckLines: config.DefaultCancelCheckLines,
	}
}

// CollectorStats counts what happened to data records.
type CollectorStats struct {
	Headers      int // header-defining records
	NotSample    int // repeated records without a sample reference
	FilteredHour int // outside [StartHour, EndHour)
	FilteredDate int // date filter did not match
	Unselected   int // in range but not a reported tag
	Samples      int // samples appended
}

// Collector accumulates filtered, timestamped samples per tag.
type Collector struct {
	opts     Options
	selected map[string]struct{}
	disk     map[string]struct{}

	headers map[string][]string
	series  map[string][]types.Sample
	order   []string

	stats CollectorStats
}

// NewCollector creates a collector for one host run.
func NewCollector(opts Options) *Collector {
	c := &Collector{
		opts:     opts,
		selected: make(map[string]struct{}, len(opts.Selected)),
		disk:     make(map[string]struct{}, len(opts.DiskTags)),
		headers:  make(map[string][]string),
		series:   make(map[string][]types.Sample),
	}
	for _, tag := range opts.Selected {
		c.selected[tag] = struct{}{}
	}
	for _, tag := range opts.DiskTags {
		c.disk[tag] = struct{}{}
	}
	return c
}

// Observe processes one record.
//
// The first record of a tag defines that tag's header and never yields a
// sample. Later records yield a sample only if their reference is a sample
// reference matching the current marker, the marker passes the hour and
// date filters, and the tag is a selected or disk tag. A reference that
// differs from the current marker returns ErrIntervalMismatch.
func (c *Collector) Observe(rec Record, ti *TimeIndex, dr *DeviceResolver) error {
	if _, ok := c.headers[rec.Tag]; !ok {
		c.headers[rec.Tag] = append([]string(nil), rec.Columns()...)
		c.order = append(c.order, rec.Tag)
		c.stats.Headers++
		return nil
	}

	if !rec.IsSample() {
		c.stats.NotSample++
		return nil
	}

	ts, err := ti.Current()
	if err != nil {
		return fmt.Errorf("%s %s: %w", rec.Tag, rec.Ref, err)
	}
	if rec.Ref != ts.Ref {
		return fmt.Errorf("%s %s under marker %s: %w", rec.Tag, rec.Ref, ts.Ref, errors.ErrIntervalMismatch)
	}

	if ts.Hour < c.opts.StartHour || ts.Hour >= c.opts.EndHour {
		c.stats.FilteredHour++
		return nil
	}
	if c.opts.DateFilter != "" && !strings.Contains(ts.Date, c.opts.DateFilter) {
		c.stats.FilteredDate++
		return nil
	}

	var payload types.Payload
	switch {
	case c.isDisk(rec.Tag):
		idxs, err := dr.ResolveColumns(c.headers[rec.Tag])
		if err != nil {
			return fmt.Errorf("%s %s: %w", rec.Tag, rec.Ref, err)
		}
		total, err := sumColumns(rec, idxs)
		if err != nil {
			return err
		}
		payload = types.Scalar{Value: total}
	case c.isSelected(rec.Tag):
		payload, err = selectedPayload(rec, len(c.headers[rec.Tag])-1)
		if err != nil {
			return err
		}
	default:
		c.stats.Unselected++
		return nil
	}

	c.series[rec.Tag] = append(c.series[rec.Tag], types.Sample{
		Date:    ts.Date,
		Time:    ts.Time,
		At:      ts.At,
		Payload: payload,
	})
	c.stats.Samples++
	return nil
}

func (c *Collector) isDisk(tag string) bool {
	_, ok := c.disk[tag]
	return ok
}

func (c *Collector) isSelected(tag string) bool {
	_, ok := c.selected[tag]
	return ok
}

// Header returns the column names declared by the first record of tag.
func (c *Collector) Header(tag string) ([]string, bool) {
	h, ok := c.headers[tag]
	return h, ok
}

// Series returns the samples collected for tag, in file order.
func (c *Collector) Series(tag string) []types.Sample {
	return c.series[tag]
}

// Tags returns every tag seen, in order of first appearance.
func (c *Collector) Tags() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Stats returns the collector counters.
func (c *Collector) Stats() CollectorStats {
	return c.stats
}

// sumColumns adds the data values of the given header columns.
// Columns()[i] of a data record holds header column i.
func sumColumns(rec Record, idxs []int) (float64, error) {
	cols := rec.Columns()
	var total float64
	for _, i := range idxs {
		if i >= len(cols) {
			return 0, fmt.Errorf("%s %s: column %d missing (%d fields): %w", rec.Tag, rec.Ref, i, len(cols), errors.ErrInvalidValue)
		}
		v, err := parseValue(cols[i])
		if err != nil {
			return 0, fmt.Errorf("%s %s: column %d: %v: %w", rec.Tag, rec.Ref, i, err, errors.ErrInvalidValue)
		}
		total += v
	}
	return total, nil
}

// selectedPayload decodes the values after the interval reference. CPU_ALL
// keeps user, sys and wait; other tags keep one value per header column,
// blanks and missing trailing columns as zero. width is the number of value
// columns the header declared; values past it are dropped.
func selectedPayload(rec Record, width int) (types.Payload, error) {
	values := rec.Fields[2:]

	if rec.Tag == constants.TagCPUAll {
		if len(values) < 3 {
			return nil, fmt.Errorf("%s %s: %d values, need user/sys/wait: %w", rec.Tag, rec.Ref, len(values), errors.ErrInvalidValue)
		}
		var cpu [3]float64
		for i := range cpu {
			v, err := parseValue(values[i])
			if err != nil {
				return nil, fmt.Errorf("%s %s: field %d: %v: %w", rec.Tag, rec.Ref, i, err, errors.ErrInvalidValue)
			}
			cpu[i] = v
		}
		return types.CPU{User: cpu[0], Sys: cpu[1], Wait: cpu[2]}, nil
	}

	if width < 1 {
		width = len(values)
	}
	if len(values) > width {
		values = values[:width]
	}
	fields := make(types.Fields, width)
	for i, s := range values {
		if strings.TrimSpace(s) == "" {
			continue
		}
		v, err := parseValue(s)
		if err != nil {
			return nil, fmt.Errorf("%s %s: field %d: %v: %w", rec.Tag, rec.Ref, i, err, errors.ErrInvalidValue)
		}
		fields[i] = v
	}
	return fields, nil
}

// parseValue parses a finite number.
func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
