package types

import (
	"testing"
	"time"
)

func sampleAt(date string, ts time.Time) *Sample {
	return &Sample{
		Date: date,
		Time: ts.Format("15:04:05"),
		At:   ts,
	}
}

func TestPayloadValues(t *testing.T) {
	c := CPU{User: 10, Sys: 5, Wait: 1}
	if c.Kind() != PayloadCPU {
		t.Errorf("expected cpu kind, got %s", c.Kind())
	}
	if c.Primary() != 16 {
		t.Errorf("expected busy=16, got %v", c.Primary())
	}

	s := Scalar{Value: 40}
	if got := s.Values(); len(got) != 1 || got[0] != 40 {
		t.Errorf("unexpected scalar values %v", got)
	}

	f := Fields{3, 4}
	if f.Primary() != 3 {
		t.Errorf("expected primary=3, got %v", f.Primary())
	}
	if (Fields{}).Primary() != 0 {
		t.Error("empty fields primary should be 0")
	}
}

func TestNewPayload(t *testing.T) {
	p := NewPayload(PayloadCPU, []float64{1, 2, 3})
	if p != (CPU{User: 1, Sys: 2, Wait: 3}) {
		t.Errorf("unexpected cpu payload %#v", p)
	}

	p = NewPayload(PayloadScalar, []float64{7})
	if p != (Scalar{Value: 7}) {
		t.Errorf("unexpected scalar payload %#v", p)
	}

	src := []float64{1, 2}
	p = NewPayload(PayloadFields, src)
	src[0] = 99
	if p.Values()[0] != 1 {
		t.Error("fields payload should copy its input")
	}
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		input    string
		expected Granularity
		known    bool
	}{
		{"", GranularityNone, true},
		{"none", GranularityNone, true},
		{"10m", Granularity10Min, true},
		{"h", GranularityHour, true},
		{"d", GranularityDay, true},
		{"week", GranularityNone, false},
		{"H", GranularityNone, false},
	}

	for _, tt := range tests {
		g, ok := LookupGranularity(tt.input)
		if ok != tt.known {
			t.Errorf("LookupGranularity(%q) known=%v, want %v", tt.input, ok, tt.known)
		}
		if g != tt.expected {
			t.Errorf("LookupGranularity(%q) = %s, want %s", tt.input, g.Name(), tt.expected.Name())
		}
		if ParseGranularity(tt.input) != tt.expected {
			t.Errorf("ParseGranularity(%q) should fall back to %s", tt.input, tt.expected.Name())
		}
	}
}

func TestGranularityBucketKey(t *testing.T) {
	ts := time.Date(2015, 6, 15, 9, 37, 45, 0, time.UTC)
	s := sampleAt("15-JUN-2015", ts)

	tests := []struct {
		g        Granularity
		expected string
	}{
		{GranularityNone, "15-JUN-2015 09:37:45"},
		{Granularity10Min, "15-JUN-2015 09:3"},
		{GranularityHour, "15-JUN-2015 09"},
		{GranularityDay, "15-JUN-2015"},
	}

	for _, tt := range tests {
		if got := tt.g.BucketKey(s); got != tt.expected {
			t.Errorf("%s: expected key %q, got %q", tt.g.Name(), tt.expected, got)
		}
	}
}

func TestGranularityTruncate(t *testing.T) {
	ts := time.Date(2015, 6, 15, 10, 37, 45, 0, time.UTC)

	tests := []struct {
		g        Granularity
		expected time.Time
	}{
		{GranularityNone, ts},
		{Granularity10Min, time.Date(2015, 6, 15, 10, 30, 0, 0, time.UTC)},
		{GranularityHour, time.Date(2015, 6, 15, 10, 0, 0, 0, time.UTC)},
		{GranularityDay, time.Date(2015, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := tt.g.Truncate(ts); !got.Equal(tt.expected) {
			t.Errorf("%s: expected %v, got %v", tt.g.Name(), tt.expected, got)
		}
	}
}

func TestGranularityDuration(t *testing.T) {
	if GranularityNone.Duration() != 0 {
		t.Error("none should have zero duration")
	}
	if Granularity10Min.Duration() != 10*time.Minute {
		t.Error("10m duration")
	}
	if GranularityDay.Duration() != 24*time.Hour {
		t.Error("day duration")
	}
	if len(AllGranularities()) != 4 {
		t.Error("expected 4 granularities")
	}
}

func TestReducerFor(t *testing.T) {
	if ReducerFor(PayloadCPU) != ReducerMean {
		t.Error("cpu should be averaged")
	}
	if ReducerFor(PayloadFields) != ReducerMean {
		t.Error("fields should be averaged")
	}
	if ReducerFor(PayloadScalar) != ReducerSum {
		t.Error("scalar should be summed")
	}

	r, err := ParseReducer("avg")
	if err != nil || r != ReducerMean {
		t.Errorf("ParseReducer(avg) = %v, %v", r, err)
	}
	if _, err := ParseReducer("median"); err == nil {
		t.Error("expected error for unknown reducer")
	}
}

func TestPointPercentiles(t *testing.T) {
	p := Point{}
	if p.HasPercentiles() {
		t.Error("expected no percentiles")
	}
	p.SetPercentiles(50, 95)
	if !p.HasPercentiles() || *p.P95 != 95 {
		t.Error("expected percentiles to be set")
	}
	if p.Values() != nil {
		t.Error("nil payload should have nil values")
	}
}
