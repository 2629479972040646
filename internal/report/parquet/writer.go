package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/report"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// RowGroupSize is the target number of rows per row group
	RowGroupSize int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:  CompressionZstd,
		RowGroupSize: 100000,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// ValidCompression reports whether s names a supported codec.
func ValidCompression(s string) bool {
	switch s {
	case "snappy", "zstd", "lz4", "gzip", "none", "":
		return true
	}
	return false
}

func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// PointRow is one aggregated point in Parquet format.
type PointRow struct {
	Host        string    `parquet:"host,zstd"`
	Dir         string    `parquet:"dir,zstd"`
	Series      string    `parquet:"series,zstd"`
	Tag         string    `parquet:"tag,zstd"`
	Granularity string    `parquet:"granularity,zstd"`
	Reducer     string    `parquet:"reducer,zstd"`
	Kind        string    `parquet:"kind,zstd"`
	Bucket      string    `parquet:"bucket,zstd"`
	BucketStart int64     `parquet:"bucket_start"`
	Count       int64     `parquet:"count"`
	Value       float64   `parquet:"value"`
	Values      []float64 `parquet:"values,list"`
	Min         float64   `parquet:"min"`
	Max         float64   `parquet:"max"`
	P50         *float64  `parquet:"p50,optional"`
	P95         *float64  `parquet:"p95,optional"`
	FirstTs     int64     `parquet:"first_ts"`
	LastTs      int64     `parquet:"last_ts"`
}

// PointToRow converts a Point of series s in host report r to a PointRow.
// Value holds the point's primary value. Dir keeps hosts that share a
// hostname apart.
func PointToRow(r *report.HostReport, s *report.Series, p *types.Point) PointRow {
	row := PointRow{
		Host:        r.Host,
		Dir:         r.Dir,
		Series:      s.Name,
		Tag:         s.Tag,
		Granularity: r.Granularity.Name(),
		Reducer:     s.Reducer.String(),
		Bucket:      p.Bucket,
		BucketStart: p.At.UnixMilli(),
		Count:       int64(p.Count),
		Min:         p.Min,
		Max:         p.Max,
		FirstTs:     p.FirstAt.UnixMilli(),
		LastTs:      p.LastAt.UnixMilli(),
	}
	if p.Payload != nil {
		row.Kind = p.Payload.Kind().String()
		row.Value = p.Payload.Primary()
		row.Values = append([]float64(nil), p.Payload.Values()...)
	}
	if p.HasPercentiles() {
		p50, p95 := *p.P50, *p.P95
		row.P50 = &p50
		row.P95 = &p95
	}
	return row
}

// RowToPoint converts a PointRow back to a Point.
func RowToPoint(r *PointRow) (types.Point, error) {
	kind, err := parseKind(r.Kind)
	if err != nil {
		return types.Point{}, err
	}
	payload := types.NewPayload(kind, r.Values)

	p := types.Point{
		At:      time.UnixMilli(r.BucketStart).UTC(),
		Bucket:  r.Bucket,
		Count:   int(r.Count),
		Payload: payload,
		Min:     r.Min,
		Max:     r.Max,
		FirstAt: time.UnixMilli(r.FirstTs).UTC(),
		LastAt:  time.UnixMilli(r.LastTs).UTC(),
	}
	if r.P50 != nil && r.P95 != nil {
		p.SetPercentiles(*r.P50, *r.P95)
	}
	return p, nil
}

func parseKind(s string) (types.PayloadKind, error) {
	for _, k := range []types.PayloadKind{types.PayloadCPU, types.PayloadScalar, types.PayloadFields} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown payload kind %q", s)
}

// ReportRows flattens every series of a host report into rows.
func ReportRows(r *report.HostReport) []PointRow {
	var rows []PointRow
	for _, s := range r.All() {
		for i := range s.Points {
			rows = append(rows, PointToRow(r, s, &s.Points[i]))
		}
	}
	return rows
}

// PointWriter writes aggregated points to a Parquet file.
//
// PointWriter is safe for concurrent use.
type PointWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[PointRow]
	rowCount int64
	closed   bool
}

// NewPointWriter creates a new point Parquet writer.
func NewPointWriter(path string, opts Options) (*PointWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression)),
	}
	if opts.RowGroupSize > 0 {
		writerOpts = append(writerOpts, parquet.MaxRowsPerRowGroup(int64(opts.RowGroupSize)))
	}

	writer := parquet.NewGenericWriter[PointRow](f, writerOpts...)

	return &PointWriter{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write writes rows to the Parquet file.
func (w *PointWriter) Write(rows []PointRow) error {
	if len(rows) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.ErrWriterClosed
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// WriteReport writes every point of a host report.
func (w *PointWriter) WriteReport(r *report.HostReport) error {
	return w.Write(ReportRows(r))
}

// Close flushes and closes the writer.
func (w *PointWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *PointWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *PointWriter) Path() string {
	return w.path
}
