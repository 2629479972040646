package nmon

import (
	"testing"
	"time"

	"github.com/xtxerr/nmonreport/internal/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		line   string
		tag    string
		ref    string
		fields int
		bad    bool
	}{
		{"ZZZZ,T0001,00:00:05,15-JUN-2015", "ZZZZ", "T0001", 4, false},
		{"CPU_ALL,T0001,1.2,0.8,0.1,97.9,,8\r\n", "CPU_ALL", "T0001", 8, false},
		{`BBBP,001,/sbin/multipath,"mpatha (3600) dm-0 IBM,2145"`, "BBBP", "001", 5, false},
		{"A,", "A", "", 2, false},
		{"", "", "", 0, true},
		{"JUSTONEFIELD", "", "", 0, true},
	}

	for _, tt := range tests {
		rec, err := Decode(tt.line)
		if tt.bad {
			if !errors.Is(err, errors.ErrMalformedLine) {
				t.Errorf("Decode(%q): expected ErrMalformedLine, got %v", tt.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Decode(%q): %v", tt.line, err)
			continue
		}
		if rec.Tag != tt.tag || rec.Ref != tt.ref || rec.Len() != tt.fields {
			t.Errorf("Decode(%q) = %q/%q/%d, want %q/%q/%d", tt.line, rec.Tag, rec.Ref, rec.Len(), tt.tag, tt.ref, tt.fields)
		}
	}
}

func TestRecordHelpers(t *testing.T) {
	rec, _ := Decode("DISKREAD,T0003,1,2")
	if !rec.IsSample() {
		t.Error("T0003 should be a sample reference")
	}
	if cols := rec.Columns(); len(cols) != 3 || cols[0] != "T0003" {
		t.Errorf("unexpected columns %v", cols)
	}
	if _, ok := rec.Field(4); ok {
		t.Error("field 4 should not exist")
	}

	hdr, _ := Decode("DISKREAD,Disk Read KB/s db01,sda")
	if hdr.IsSample() {
		t.Error("header row should not be a sample reference")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input        string
		h, m, s      int
		expectingErr bool
	}{
		{"09:00:00", 9, 0, 0, false},
		{"23:59:59", 23, 59, 59, false},
		{"8:05", 8, 5, 0, false},
		{"24:00:00", 0, 0, 0, true},
		{"12:61:00", 0, 0, 0, true},
		{"noon", 0, 0, 0, true},
		{"1:2:3:4", 0, 0, 0, true},
	}

	for _, tt := range tests {
		h, m, s, err := ParseClock(tt.input)
		if tt.expectingErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil || h != tt.h || m != tt.m || s != tt.s {
			t.Errorf("ParseClock(%q) = %d:%d:%d, %v", tt.input, h, m, s, err)
		}
	}
}

func TestDateParser(t *testing.T) {
	p := NewDateParser(4)
	want := time.Date(2015, 6, 15, 0, 0, 0, 0, time.UTC)

	for _, text := range []string{"15-JUN-2015", "15-Jun-2015", "2015-06-15", "2015/06/15"} {
		got, err := p.Parse(text)
		if err != nil {
			t.Errorf("Parse(%q): %v", text, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Parse(%q) = %v, want %v", text, got, want)
		}
	}

	if _, err := p.Parse("15-JUN-2015"); err != nil {
		t.Fatalf("cached parse: %v", err)
	}
	hits, misses := p.Stats()
	if hits != 1 || misses != 4 {
		t.Errorf("expected 1 hit / 4 misses, got %d / %d", hits, misses)
	}

	if _, err := p.Parse("yesterday"); err == nil {
		t.Error("expected error for unparsable date")
	}
}
