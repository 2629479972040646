// Package config provides configuration defaults and utilities
// for the nmon report tool.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml, config.toml or flags.
package config

import "time"

// =============================================================================
// Input Defaults
// =============================================================================

const (
	// DefaultInputDir holds one subdirectory of nmon files per host.
	// Override via config: input.dir
	DefaultInputDir = "."

	// DefaultFileMask is an empty filename filter: every *.nmon file matches.
	// Override via config: input.mask
	DefaultFileMask = ""
)

// =============================================================================
// Filter Defaults
// =============================================================================

const (
	// DefaultStartHour is the first hour of day included (inclusive).
	// Override via config: filter.start_hour
	DefaultStartHour = 0

	// DefaultEndHour is the hour of day where samples stop being included (exclusive).
	// Override via config: filter.end_hour
	DefaultEndHour = 24

	// DefaultDateFilter disables date filtering.
	// Override via config: filter.date
	DefaultDateFilter = ""
)

// =============================================================================
// Aggregation Defaults
// =============================================================================

const (
	// DefaultGroupBy keeps full resolution.
	// Valid values: "", "10m", "h", "d". Unknown values fall back to "".
	// Override via config: group_by
	DefaultGroupBy = ""

	// DefaultPercentileAccuracy is the DDSketch relative accuracy (1%).
	// Override via config: aggregate.accuracy
	DefaultPercentileAccuracy = 0.01

	// DefaultDateCacheSize bounds the per-host cache of parsed marker dates.
	// nmon captures rarely span more than a few hundred distinct dates.
	DefaultDateCacheSize = 512
)

// =============================================================================
// Batch Defaults
// =============================================================================

const (
	// DefaultWorkers is the number of hosts processed in parallel.
	// A single host's records are always processed sequentially.
	// Override via config: workers
	DefaultWorkers = 4

	// DefaultCancelCheckLines is how many lines are read between context checks.
	DefaultCancelCheckLines = 4096

	// DefaultMaxLineSize bounds a single input line. BBBP config dumps can be long.
	DefaultMaxLineSize = 4 * 1024 * 1024
)

// =============================================================================
// Output Defaults
// =============================================================================

const (
	// DefaultOutputDir receives the exported points.
	// Override via config: output.dir
	DefaultOutputDir = "report"

	// DefaultPointsFile is the Parquet file name inside the output directory.
	DefaultPointsFile = "points.parquet"

	// DefaultCompression is the Parquet compression codec.
	// Override via config: output.compression
	DefaultCompression = "zstd"

	// DefaultQueryMemoryLimit bounds DuckDB memory for summary queries.
	// Override via config: query.memory_limit
	DefaultQueryMemoryLimit = "512MB"

	// DefaultQueryTimeout bounds a single summary query.
	// Override via config: query.timeout
	DefaultQueryTimeout = 30 * time.Second
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is the minimum level written.
	// Override via config: logging.level
	DefaultLogLevel = "info"

	// DefaultLogFormat picks text on a terminal and JSON otherwise.
	// Override via config: logging.format
	DefaultLogFormat = "auto"
)
