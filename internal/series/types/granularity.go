package types

import (
	"fmt"
	"time"
)

// Granularity is the bucket width used to re-sample a series.
type Granularity int

const (
	// GranularityNone keeps every sample as its own point.
	GranularityNone Granularity = iota

	// Granularity10Min groups samples by date, hour and floor(minute/10).
	Granularity10Min

	// GranularityHour groups samples by date and hour.
	GranularityHour

	// GranularityDay groups samples by date.
	GranularityDay
)

// String returns the configuration spelling of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityNone:
		return ""
	case Granularity10Min:
		return "10m"
	case GranularityHour:
		return "h"
	case GranularityDay:
		return "d"
	default:
		return fmt.Sprintf("unknown(%d)", int(g))
	}
}

// Name returns a display name, "none" for full resolution.
func (g Granularity) Name() string {
	switch g {
	case GranularityNone:
		return "none"
	case Granularity10Min:
		return "10min"
	case GranularityHour:
		return "hourly"
	case GranularityDay:
		return "daily"
	default:
		return g.String()
	}
}

// Duration returns the bucket width, 0 for full resolution.
func (g Granularity) Duration() time.Duration {
	switch g {
	case Granularity10Min:
		return 10 * time.Minute
	case GranularityHour:
		return time.Hour
	case GranularityDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// BucketKey returns the grouping key of a sample.
//
// Keys are built from the raw date text so that samples of one calendar
// date share a prefix regardless of how the date is spelled in the file.
func (g Granularity) BucketKey(s *Sample) string {
	switch g {
	case Granularity10Min:
		return fmt.Sprintf("%s %02d:%d", s.Date, s.At.Hour(), s.At.Minute()/10)
	case GranularityHour:
		return fmt.Sprintf("%s %02d", s.Date, s.At.Hour())
	case GranularityDay:
		return s.Date
	default:
		return s.Label()
	}
}

// Truncate reduces t to the start of its bucket.
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case Granularity10Min:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()/10*10, 0, 0, t.Location())
	case GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}

// ParseGranularity parses a group-by value. Unknown values fall back to
// GranularityNone.
func ParseGranularity(s string) Granularity {
	g, ok := LookupGranularity(s)
	if !ok {
		return GranularityNone
	}
	return g
}

// LookupGranularity parses a group-by value and reports whether it was known.
func LookupGranularity(s string) (Granularity, bool) {
	switch s {
	case "", "none":
		return GranularityNone, true
	case "10m":
		return Granularity10Min, true
	case "h":
		return GranularityHour, true
	case "d":
		return GranularityDay, true
	default:
		return GranularityNone, false
	}
}

// AllGranularities returns all granularities from finest to coarsest.
func AllGranularities() []Granularity {
	return []Granularity{GranularityNone, Granularity10Min, GranularityHour, GranularityDay}
}
