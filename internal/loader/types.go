// Package loader - Configuration Types
//
// LOCATION: internal/loader/types.go
//
// Defines the configuration file structure for nmonreport. The same
// structure is read from YAML or TOML.
//
//	input:      where host directories live and which files to read
//	filter:     date substring and hour-of-day window
//	group_by:   "", "10m", "h" or "d"
//	series:     extra selected tags, disk tags
//	aggregate:  spread statistics
//	output:     parquet export, console summary, DuckDB summary
//	workers:    hosts processed in parallel
//	logging:    level and format
//	metrics:    Prometheus textfile
//	query:      DuckDB limits

package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xtxerr/nmonreport/config"
	"github.com/xtxerr/nmonreport/internal/constants"
)

// =============================================================================
// Root Configuration
// =============================================================================

// Config is the root configuration structure.
type Config struct {
	// Input selects the host directories and capture files.
	Input InputConfig `yaml:"input" toml:"input"`

	// Filter restricts which samples are kept.
	Filter FilterConfig `yaml:"filter" toml:"filter"`

	// GroupBy is the bucket granularity: "", "10m", "h" or "d".
	// Unknown values fall back to full resolution.
	GroupBy string `yaml:"group_by" toml:"group_by"`

	// Reducer overrides the per-kind reducer: auto, mean, sum, min, max.
	// Default: auto (CPU and generic fields averaged, disk summed).
	Reducer string `yaml:"reducer" toml:"reducer"`

	// Series selects reported tags.
	Series SeriesConfig `yaml:"series" toml:"series"`

	// Aggregate configures spread statistics.
	Aggregate AggregateConfig `yaml:"aggregate" toml:"aggregate"`

	// Output configures the sinks.
	Output OutputConfig `yaml:"output" toml:"output"`

	// Workers is the number of hosts processed in parallel.
	Workers int `yaml:"workers" toml:"workers"`

	// Logging configures the global logger.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// Metrics configures run metrics export.
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`

	// Query configures the DuckDB summary engine.
	Query QueryConfig `yaml:"query" toml:"query"`
}

// InputConfig selects the input files.
type InputConfig struct {
	// Dir holds one subdirectory per host.
	Dir string `yaml:"dir" toml:"dir"`

	// Mask narrows the files of each host to *<mask>*.nmon.
	Mask string `yaml:"mask" toml:"mask"`

	// MaxLineSize bounds a single input line, e.g. "4MB".
	MaxLineSize ByteSize `yaml:"max_line_size" toml:"max_line_size"`

	// DateCacheSize bounds the per-host cache of parsed marker dates.
	DateCacheSize int `yaml:"date_cache_size" toml:"date_cache_size"`
}

// FilterConfig restricts the kept samples.
type FilterConfig struct {
	// Date keeps samples whose date text contains it. Empty disables.
	Date string `yaml:"date" toml:"date"`

	// StartHour is inclusive, EndHour exclusive.
	StartHour int `yaml:"start_hour" toml:"start_hour"`
	EndHour   int `yaml:"end_hour" toml:"end_hour"`
}

// SeriesConfig selects the reported tags.
type SeriesConfig struct {
	// Selected tags are reported as full series. Default: [CPU_ALL].
	Selected []string `yaml:"selected" toml:"selected"`

	// Disk tags are summed over multipath devices. Default: [DISKREAD, DISKWRITE].
	Disk []string `yaml:"disk" toml:"disk"`
}

// AggregateConfig configures spread statistics.
type AggregateConfig struct {
	// Percentiles enables DDSketch p50/p95 per point.
	Percentiles bool `yaml:"percentiles" toml:"percentiles"`

	// Accuracy is the sketch relative accuracy, in (0, 1).
	Accuracy float64 `yaml:"accuracy" toml:"accuracy"`
}

// OutputConfig configures the sinks.
type OutputConfig struct {
	// Dir receives exported files.
	Dir string `yaml:"dir" toml:"dir"`

	// Parquet is the points file name inside Dir. Empty disables the export.
	Parquet string `yaml:"parquet" toml:"parquet"`

	// Compression is the Parquet codec: zstd, snappy, lz4, gzip, none.
	Compression string `yaml:"compression" toml:"compression"`

	// Summary prints a table of every host report.
	Summary bool `yaml:"summary" toml:"summary"`

	// Query prints a DuckDB summary of the exported points.
	Query bool `yaml:"query" toml:"query"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`

	// Format: text, json, auto.
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile receives the run metrics in Prometheus text format.
	// Empty disables the export.
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// QueryConfig configures DuckDB.
type QueryConfig struct {
	// MemoryLimit is passed to DuckDB, e.g. "512MB".
	MemoryLimit string `yaml:"memory_limit" toml:"memory_limit"`

	// Timeout bounds a single query.
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir:           config.DefaultInputDir,
			Mask:          config.DefaultFileMask,
			MaxLineSize:   ByteSize(config.DefaultMaxLineSize),
			DateCacheSize: config.DefaultDateCacheSize,
		},
		Filter: FilterConfig{
			Date:      config.DefaultDateFilter,
			StartHour: config.DefaultStartHour,
			EndHour:   config.DefaultEndHour,
		},
		GroupBy: config.DefaultGroupBy,
		Reducer: "auto",
		Series: SeriesConfig{
			Selected: append([]string(nil), constants.DefaultSelectedTags...),
			Disk:     append([]string(nil), constants.DefaultDiskTags...),
		},
		Aggregate: AggregateConfig{
			Percentiles: true,
			Accuracy:    config.DefaultPercentileAccuracy,
		},
		Output: OutputConfig{
			Dir:         config.DefaultOutputDir,
			Parquet:     config.DefaultPointsFile,
			Compression: config.DefaultCompression,
			Summary:     true,
			Query:       false,
		},
		Workers: config.DefaultWorkers,
		Logging: LoggingConfig{
			Level:  config.DefaultLogLevel,
			Format: config.DefaultLogFormat,
		},
		Query: QueryConfig{
			MemoryLimit: config.DefaultQueryMemoryLimit,
			Timeout:     Duration(config.DefaultQueryTimeout),
		},
	}
}

// =============================================================================
// Custom Types
// =============================================================================

// Duration is a time.Duration that can be unmarshaled from YAML and TOML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		// Try as int (seconds)
		var i int
		if err := unmarshal(&i); err != nil {
			return err
		}
		*d = Duration(time.Duration(i) * time.Second)
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler. A bare integer is
// read as seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if secs, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ByteSize is a size in bytes that can be unmarshaled from YAML and TOML.
// Supports: "4MB", "1GB", "512KB", or plain bytes.
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		// Try as int64
		var i int64
		if err := unmarshal(&i); err != nil {
			return err
		}
		*b = ByteSize(i)
		return nil
	}
	return b.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := parseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = ByteSize(size)
	return nil
}

// byteUnits is ordered longest suffix first so "MB" is not read as "B".
var byteUnits = []struct {
	suffix string
	mult   int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// parseByteSize parses a size string like "4MB" or "1GB".
func parseByteSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	for _, u := range byteUnits {
		if strings.HasSuffix(s, u.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			n, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("parse byte size %q: %w", s, err)
			}
			return n * u.mult, nil
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse byte size %q: %w", s, err)
	}
	return n, nil
}

// Bytes returns the size in bytes.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}
