// Package parquet exports aggregated report points to Parquet files.
//
// The package provides:
//   - PointWriter/PointReader for aggregated points of every host series
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
//   - Type conversion between report points and Parquet rows
package parquet
