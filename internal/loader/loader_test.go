package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Granularity() != types.GranularityNone {
		t.Errorf("expected full resolution by default, got %s", cfg.Granularity().Name())
	}
	if cfg.PointsPath() != filepath.Join("report", "points.parquet") {
		t.Errorf("unexpected points path %q", cfg.PointsPath())
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("NMON_INPUT", "/data/nmon")

	path := writeConfig(t, "report.yaml", `
input:
  dir: ${NMON_INPUT}
  mask: "1506"
  max_line_size: 8MB
filter:
  date: JUN-2015
  start_hour: 9
  end_hour: 17
group_by: h
series:
  selected: [CPU_ALL, " MEM "]
aggregate:
  percentiles: false
output:
  dir: /tmp/out
  compression: SNAPPY
  query: true
workers: 8
logging:
  level: debug
  format: json
query:
  timeout: 1m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Input.Dir != "/data/nmon" {
		t.Errorf("env var not expanded: %q", cfg.Input.Dir)
	}
	if cfg.Input.MaxLineSize.Bytes() != 8<<20 {
		t.Errorf("expected 8MB, got %d", cfg.Input.MaxLineSize)
	}
	if cfg.Granularity() != types.GranularityHour {
		t.Errorf("expected hourly, got %s", cfg.Granularity().Name())
	}
	if cfg.Series.Selected[1] != "MEM" {
		t.Errorf("tag not trimmed: %q", cfg.Series.Selected[1])
	}
	if len(cfg.Series.Disk) != 2 {
		t.Errorf("disk tags should keep defaults, got %v", cfg.Series.Disk)
	}
	if cfg.Output.Compression != "snappy" {
		t.Errorf("compression not normalized: %q", cfg.Output.Compression)
	}
	if cfg.Output.Parquet != "points.parquet" {
		t.Errorf("parquet file should keep default, got %q", cfg.Output.Parquet)
	}
	if cfg.Query.Timeout.Duration() != time.Minute {
		t.Errorf("expected 1m timeout, got %v", cfg.Query.Timeout.Duration())
	}

	opts := cfg.NmonOptions()
	if opts.StartHour != 9 || opts.EndHour != 17 || opts.DateFilter != "JUN-2015" || opts.MaxLineSize != 8<<20 {
		t.Errorf("unexpected nmon options %+v", opts)
	}

	rc := cfg.ReportConfig()
	if rc.Aggregate.Percentiles || rc.Granularity != types.GranularityHour || rc.Reducer != types.ReducerAuto {
		t.Errorf("unexpected report config %+v", rc)
	}

	if qc := cfg.DuckDBConfig(); qc.Timeout != time.Minute || qc.MemoryLimit != "512MB" {
		t.Errorf("unexpected query config %+v", qc)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "report.toml", `
group_by = "d"
reducer = "max"
workers = 2

[input]
dir = "/data"
max_line_size = "1MB"

[filter]
start_hour = 6
end_hour = 18

[series]
selected = ["CPU_ALL", "MEM"]
disk = ["DISKREAD"]

[query]
timeout = "10s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Granularity() != types.GranularityDay {
		t.Errorf("expected daily, got %s", cfg.Granularity().Name())
	}
	if cfg.ReportConfig().Reducer != types.ReducerMax {
		t.Errorf("expected max reducer, got %s", cfg.ReportConfig().Reducer)
	}
	if cfg.Workers != 2 || cfg.Input.MaxLineSize.Bytes() != 1<<20 {
		t.Errorf("unexpected values: workers=%d max_line=%d", cfg.Workers, cfg.Input.MaxLineSize)
	}
	if len(cfg.Series.Disk) != 1 || cfg.Series.Disk[0] != "DISKREAD" {
		t.Errorf("unexpected disk tags %v", cfg.Series.Disk)
	}
	if rc := cfg.ReportConfig(); len(rc.DiskTags) != 1 || rc.DiskTags[0] != "DISKREAD" {
		t.Errorf("disk tags not passed to the report config: %v", rc.DiskTags)
	}
	if cfg.Query.Timeout.Duration() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Query.Timeout.Duration())
	}
	if !cfg.Aggregate.Percentiles {
		t.Error("percentiles should keep their default")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeConfig(t, "bad.yaml", "input: [unclosed")
	if _, err := Load(bad); err == nil {
		t.Error("expected YAML parse error")
	}

	badToml := writeConfig(t, "bad.toml", "workers = ")
	if _, err := Load(badToml); err == nil {
		t.Error("expected TOML parse error")
	}
}

func TestUnknownGroupByFallsBack(t *testing.T) {
	cfg, err := Parse([]byte("group_by: weekly\n"), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unknown group_by must not fail validation: %v", err)
	}
	if cfg.Granularity() != types.GranularityNone {
		t.Errorf("expected full resolution, got %s", cfg.Granularity().Name())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty input dir", func(c *Config) { c.Input.Dir = "" }, "input.dir"},
		{"bad mask", func(c *Config) { c.Input.Mask = "a/b" }, "input.mask"},
		{"inverted window", func(c *Config) { c.Filter.StartHour, c.Filter.EndHour = 17, 9 }, "filter"},
		{"comma in date", func(c *Config) { c.Filter.Date = "2015,06" }, "filter.date"},
		{"unknown reducer", func(c *Config) { c.Reducer = "median" }, "reducer"},
		{"structural tag", func(c *Config) { c.Series.Selected = []string{"ZZZZ"} }, "series.selected"},
		{"bad accuracy", func(c *Config) { c.Aggregate.Accuracy = 2 }, "aggregate.accuracy"},
		{"query without parquet", func(c *Config) { c.Output.Query, c.Output.Parquet = true, "" }, "output.query"},
		{"nested parquet name", func(c *Config) { c.Output.Parquet = "x/points.parquet" }, "output.parquet"},
		{"bad codec", func(c *Config) { c.Output.Compression = "brotli" }, "output.compression"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %s: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	var verrs *errors.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(verrs.Errors), err)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"512", 512, false},
		{"100B", 100, false},
		{"4KB", 4 << 10, false},
		{"4mb", 4 << 20, false},
		{"2 GB", 2 << 30, false},
		{"1TB", 1 << 40, false},
		{"lots", 0, true},
		{"1.5MB", 0, true},
	}

	for _, tt := range tests {
		got, err := parseByteSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseByteSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90")); err != nil || d.Duration() != 90*time.Second {
		t.Errorf("bare integer: %v %v", d.Duration(), err)
	}
	if err := d.UnmarshalText([]byte("250ms")); err != nil || d.Duration() != 250*time.Millisecond {
		t.Errorf("duration string: %v %v", d.Duration(), err)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected error")
	}
}
