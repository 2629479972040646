package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/report"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

func testReport() *report.HostReport {
	at := time.Date(2015, 6, 15, 9, 0, 0, 0, time.UTC)

	cpu := types.Point{
		At: at, Bucket: "15-JUN-2015 09", Count: 12,
		Payload: types.CPU{User: 20, Sys: 3, Wait: 1},
		Min:     10, Max: 40,
		FirstAt: at, LastAt: at.Add(55 * time.Minute),
	}
	cpu.SetPercentiles(22, 38)

	read := types.Point{
		At: at, Bucket: "15-JUN-2015 09", Count: 12,
		Payload: types.Scalar{Value: 4800},
		Min:     100, Max: 900,
		FirstAt: at, LastAt: at.Add(55 * time.Minute),
	}

	return &report.HostReport{
		Host:        "db01",
		Dir:         "rack7",
		Granularity: types.GranularityHour,
		CPU: &report.Series{
			Tag: constants.TagCPUAll, Name: constants.SeriesCPU,
			Reducer: types.ReducerMean, Samples: 12, Points: []types.Point{cpu},
		},
		DiskRead: &report.Series{
			Tag: constants.TagDiskRead, Name: constants.SeriesDiskRead,
			Reducer: types.ReducerSum, Samples: 12, Points: []types.Point{read},
		},
	}
}

func TestPointWriterBasic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "points.parquet")

	w, err := NewPointWriter(path, DefaultOptions())
	if err != nil {
		t.Fatalf("NewPointWriter: %v", err)
	}
	if err := w.WriteReport(testReport()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if w.RowCount() != 2 {
		t.Errorf("expected 2 rows, got %d", w.RowCount())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}

	if err := w.Write([]PointRow{{Host: "late"}}); !errors.Is(err, errors.ErrWriterClosed) {
		t.Errorf("expected ErrWriterClosed, got %v", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file should exist: %v", err)
	}
	if stat.Size() == 0 {
		t.Error("file should not be empty")
	}
}

func TestPointWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.parquet")

	for _, codec := range []string{"zstd", "snappy", "none"} {
		t.Run(codec, func(t *testing.T) {
			w, err := NewPointWriter(path, Options{Compression: ParseCompressionType(codec)})
			if err != nil {
				t.Fatalf("NewPointWriter: %v", err)
			}
			if err := w.WriteReport(testReport()); err != nil {
				t.Fatalf("WriteReport: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			r, err := NewPointReader(path)
			if err != nil {
				t.Fatalf("NewPointReader: %v", err)
			}
			defer r.Close()

			rows, err := r.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(rows) != 2 {
				t.Fatalf("expected 2 rows, got %d", len(rows))
			}

			row := rows[0]
			if row.Host != "db01" || row.Dir != "rack7" || row.Series != "cpu" || row.Granularity != "hourly" || row.Reducer != "mean" {
				t.Errorf("unexpected labels %+v", row)
			}
			if row.Value != 24 {
				t.Errorf("expected primary value 24, got %v", row.Value)
			}

			p, err := RowToPoint(&row)
			if err != nil {
				t.Fatalf("RowToPoint: %v", err)
			}
			cpu, ok := p.Payload.(types.CPU)
			if !ok || cpu.User != 20 || cpu.Sys != 3 || cpu.Wait != 1 {
				t.Errorf("unexpected payload %#v", p.Payload)
			}
			if !p.HasPercentiles() || *p.P95 != 38 {
				t.Errorf("expected p95=38, got %v", p.P95)
			}
			if p.Count != 12 || !p.At.Equal(time.Date(2015, 6, 15, 9, 0, 0, 0, time.UTC)) {
				t.Errorf("unexpected count/time %d %v", p.Count, p.At)
			}

			disk, err := RowToPoint(&rows[1])
			if err != nil {
				t.Fatalf("RowToPoint: %v", err)
			}
			if disk.HasPercentiles() {
				t.Error("disk point had no percentiles")
			}
			if s, ok := disk.Payload.(types.Scalar); !ok || s.Value != 4800 {
				t.Errorf("unexpected disk payload %#v", disk.Payload)
			}
		})
	}
}

func TestRowToPoint_UnknownKind(t *testing.T) {
	if _, err := RowToPoint(&PointRow{Kind: "histogram"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestGetFileInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.parquet")
	w, err := NewPointWriter(path, DefaultOptions())
	if err != nil {
		t.Fatalf("NewPointWriter: %v", err)
	}
	w.WriteReport(testReport())
	w.Close()

	info, err := GetFileInfo(path)
	if err != nil {
		t.Fatalf("GetFileInfo: %v", err)
	}
	if info.NumRows != 2 || info.Size == 0 {
		t.Errorf("unexpected info %+v", info)
	}

	if _, err := GetFileInfo(filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewPointReader_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.parquet")
	if err := os.WriteFile(path, []byte("AAA,host,db01\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPointReader(path); err == nil {
		t.Error("expected error for a file that is not Parquet")
	}
	if _, err := GetFileInfo(path); err == nil {
		t.Error("GetFileInfo should report the invalid file")
	}
}

func TestCompressionNames(t *testing.T) {
	for _, name := range []string{"snappy", "zstd", "lz4", "gzip", "none", ""} {
		if !ValidCompression(name) {
			t.Errorf("%q should be valid", name)
		}
	}
	if ValidCompression("brotli") {
		t.Error("brotli is not supported")
	}
	if ParseCompressionType("brotli") != CompressionZstd {
		t.Error("unknown codec should fall back to zstd")
	}
}
