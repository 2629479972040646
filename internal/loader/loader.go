// Package loader handles configuration file loading, validation, and conversion.
//
// LOCATION: internal/loader/loader.go
//
// This package is responsible for:
//   - Loading YAML or TOML configuration files
//   - Expanding environment variables
//   - Validating the result
//   - Converting the configuration into component options

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/logging"
	"github.com/xtxerr/nmonreport/internal/nmon"
	"github.com/xtxerr/nmonreport/internal/report"
	rparquet "github.com/xtxerr/nmonreport/internal/report/parquet"
	"github.com/xtxerr/nmonreport/internal/report/query"
	"github.com/xtxerr/nmonreport/internal/series/aggregate"
	"github.com/xtxerr/nmonreport/internal/series/types"
	"github.com/xtxerr/nmonreport/internal/validation"
	"gopkg.in/yaml.v3"
)

var log = logging.Component("loader")

// Format is a configuration file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFor picks the syntax from the file extension. Anything other than
// .toml is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// =============================================================================
// Load
// =============================================================================

// Load loads configuration from a YAML or TOML file over the defaults.
// The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debug("config loaded", "path", path)
	return cfg, nil
}

// Parse decodes data over the defaults after expanding environment
// variables.
func Parse(data []byte, format Format) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize trims values and replaces unusable zero values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()

	c.GroupBy = strings.TrimSpace(c.GroupBy)
	c.Reducer = strings.ToLower(strings.TrimSpace(c.Reducer))
	c.Output.Compression = strings.ToLower(strings.TrimSpace(c.Output.Compression))

	for i, tag := range c.Series.Selected {
		c.Series.Selected[i] = strings.TrimSpace(tag)
	}
	for i, tag := range c.Series.Disk {
		c.Series.Disk[i] = strings.TrimSpace(tag)
	}

	if c.Input.MaxLineSize <= 0 {
		c.Input.MaxLineSize = def.Input.MaxLineSize
	}
	if c.Input.DateCacheSize <= 0 {
		c.Input.DateCacheSize = def.Input.DateCacheSize
	}
	if c.Aggregate.Accuracy == 0 {
		c.Aggregate.Accuracy = def.Aggregate.Accuracy
	}
}

// =============================================================================
// Validate
// =============================================================================

// Validate validates the configuration. An unknown group_by is not an
// error; it falls back to full resolution.
func (c *Config) Validate() error {
	errs := errors.NewValidationErrors()

	if c.Input.Dir == "" {
		errs.AddMissing("input.dir")
	}
	if err := validation.ValidateMask(c.Input.Mask); err != nil {
		errs.AddField("input.mask", err.Error())
	}

	if err := validation.ValidateHourWindow(c.Filter.StartHour, c.Filter.EndHour); err != nil {
		errs.AddField("filter", err.Error())
	}
	if err := validation.ValidateDateFilter(c.Filter.Date); err != nil {
		errs.AddField("filter.date", err.Error())
	}

	if _, err := types.ParseReducer(c.Reducer); err != nil {
		errs.AddField("reducer", err.Error())
	}

	if err := validation.ValidateTags(c.Series.Selected); err != nil {
		errs.AddField("series.selected", err.Error())
	}
	if err := validation.ValidateTags(c.Series.Disk); err != nil {
		errs.AddField("series.disk", err.Error())
	}

	if c.Aggregate.Percentiles && (c.Aggregate.Accuracy <= 0 || c.Aggregate.Accuracy >= 1) {
		errs.AddField("aggregate.accuracy", fmt.Sprintf("%v not in (0, 1)", c.Aggregate.Accuracy))
	}

	if c.Output.Dir == "" && c.Output.Parquet != "" {
		errs.AddMissing("output.dir")
	}
	if c.Output.Query && c.Output.Parquet == "" {
		errs.AddField("output.query", "requires output.parquet")
	}
	if strings.ContainsAny(c.Output.Parquet, "/\\") {
		errs.AddField("output.parquet", "must be a file name")
	}
	if !rparquet.ValidCompression(c.Output.Compression) {
		errs.AddField("output.compression", fmt.Sprintf("unknown codec %q", c.Output.Compression))
	}

	if c.Workers < 1 {
		errs.AddField("workers", "must be at least 1")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.AddField("logging.level", err.Error())
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "auto", "text", "json":
	default:
		errs.AddField("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format))
	}

	if c.Query.Timeout < 0 {
		errs.AddField("query.timeout", "cannot be negative")
	}

	return errs.Err()
}

// Validate validates cfg.
func Validate(cfg *Config) error {
	return cfg.Validate()
}

// =============================================================================
// Conversion: Config → component options
// =============================================================================

// Granularity returns the parsed group_by value.
func (c *Config) Granularity() types.Granularity {
	g, ok := types.LookupGranularity(c.GroupBy)
	if !ok {
		log.Debug("unknown group_by, using full resolution", "group_by", c.GroupBy)
	}
	return g
}

// NmonOptions converts the configuration into parser options.
func (c *Config) NmonOptions() nmon.Options {
	opts := nmon.DefaultOptions()
	opts.StartHour = c.Filter.StartHour
	opts.EndHour = c.Filter.EndHour
	opts.DateFilter = c.Filter.Date
	opts.Selected = append([]string(nil), c.Series.Selected...)
	opts.DiskTags = append([]string(nil), c.Series.Disk...)
	opts.DateCacheSize = c.Input.DateCacheSize
	opts.MaxLineSize = int(c.Input.MaxLineSize.Bytes())
	return opts
}

// ReportConfig converts the configuration into report options.
func (c *Config) ReportConfig() report.Config {
	reducer, _ := types.ParseReducer(c.Reducer)
	return report.Config{
		Granularity: c.Granularity(),
		Reducer:     reducer,
		Aggregate: aggregate.Options{
			Percentiles: c.Aggregate.Percentiles,
			Accuracy:    c.Aggregate.Accuracy,
		},
		Selected: append([]string(nil), c.Series.Selected...),
		DiskTags: append([]string(nil), c.Series.Disk...),
	}
}

// ParquetOptions converts the output section into writer options.
func (c *Config) ParquetOptions() rparquet.Options {
	opts := rparquet.DefaultOptions()
	opts.Compression = rparquet.ParseCompressionType(c.Output.Compression)
	return opts
}

// PointsPath returns the Parquet export path, "" if disabled.
func (c *Config) PointsPath() string {
	if c.Output.Parquet == "" {
		return ""
	}
	return filepath.Join(c.Output.Dir, c.Output.Parquet)
}

// DuckDBConfig converts the query section into DuckDB options.
func (c *Config) DuckDBConfig() *query.Config {
	return &query.Config{
		MemoryLimit: c.Query.MemoryLimit,
		Timeout:     c.Query.Timeout.Duration(),
	}
}
