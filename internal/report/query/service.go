// Package query summarizes exported report points with DuckDB.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/xtxerr/nmonreport/config"
	"github.com/xtxerr/nmonreport/internal/logging"
)

var log = logging.Component("query")

// Config configures the DuckDB engine.
type Config struct {
	// MemoryLimit is passed to SET memory_limit; empty keeps the default.
	MemoryLimit string

	// Timeout bounds a single query; zero disables the bound.
	Timeout time.Duration
}

// DefaultConfig returns the default query configuration.
func DefaultConfig() *Config {
	return &Config{
		MemoryLimit: config.DefaultQueryMemoryLimit,
		Timeout:     config.DefaultQueryTimeout,
	}
}

// Service runs queries over point Parquet files.
type Service struct {
	mu sync.RWMutex

	config *Config
	db     *sql.DB

	stats ServiceStats
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// SeriesSummary describes one host series across all of its points.
type SeriesSummary struct {
	// Dir is the input directory; two directories may report the same Host.
	Dir    string
	Host   string
	Series string
	Points int64
	Mean   float64
	Peak   float64
	PeakAt time.Time
	First  time.Time
	Last   time.Time
}

// New opens an in-memory DuckDB database.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if cfg.MemoryLimit != "" {
		_, err = db.Exec(fmt.Sprintf("SET memory_limit='%s'", quote(cfg.MemoryLimit)))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Service{
		config: cfg,
		db:     db,
	}, nil
}

// Close closes the database.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const summaryQuery = `
	SELECT
		dir, host, series,
		COUNT(*)                      AS points,
		AVG(value)                    AS mean,
		MAX(value)                    AS peak,
		arg_max(bucket_start, value)  AS peak_ms,
		MIN(bucket_start)             AS first_ms,
		MAX(bucket_start)             AS last_ms
	FROM read_parquet('%s')
	GROUP BY dir, host, series
	ORDER BY dir, host, series
`

// Summarize returns per host directory and series totals of the points in path.
// path may be a glob.
func (s *Service) Summarize(ctx context.Context, path string) ([]SeriesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(summaryQuery, quote(path)))
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("summarize %s: %w", path, err)
	}
	defer rows.Close()

	var out []SeriesSummary
	for rows.Next() {
		var r SeriesSummary
		var peakMs, firstMs, lastMs int64
		if err := rows.Scan(&r.Dir, &r.Host, &r.Series, &r.Points, &r.Mean, &r.Peak, &peakMs, &firstMs, &lastMs); err != nil {
			s.stats.Errors++
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.PeakAt = time.UnixMilli(peakMs).UTC()
		r.First = time.UnixMilli(firstMs).UTC()
		r.Last = time.UnixMilli(lastMs).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.stats.Errors++
		return nil, err
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(out))
	log.Debug("summary computed", "path", path, "rows", len(out))
	return out, nil
}

// ExecuteSQL executes a raw SQL query.
// This is useful for ad-hoc queries and debugging.
func (s *Service) ExecuteSQL(ctx context.Context, query string) ([]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.stats.Errors++
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(results))

	return results, rows.Err()
}

// Stats returns query statistics.
func (s *Service) Stats() ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

// quote escapes s for use inside a single-quoted SQL literal.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
