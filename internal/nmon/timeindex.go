package nmon

import (
	"fmt"
	"time"

	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
)

// Timestamp is the instant established by one ZZZZ marker.
type Timestamp struct {
	Ref  string // interval reference, e.g. T0042
	Date string // date text as written
	Time string // time-of-day text as written
	Hour int
	At   time.Time
}

// TimeIndex tracks the most recent marker. Data records sharing the
// marker's interval reference inherit its timestamp.
type TimeIndex struct {
	dates   *DateParser
	current Timestamp
	seen    bool
	markers int
}

// NewTimeIndex creates an empty index. A nil parser gets a default one.
func NewTimeIndex(dates *DateParser) *TimeIndex {
	if dates == nil {
		dates = NewDateParser(0)
	}
	return &TimeIndex{dates: dates}
}

// Observe consumes a ZZZZ marker and reports whether rec was one.
//
// Markers must carry reference, time and date. A short marker returns
// ErrMalformedLine; an unparsable time or date returns ErrInvalidTimestamp.
// On error the previous timestamp stays current.
func (ti *TimeIndex) Observe(rec Record) (bool, error) {
	if rec.Tag != constants.TagMarker {
		return false, nil
	}
	if rec.Len() < 4 {
		return true, fmt.Errorf("marker with %d fields: %w", rec.Len(), errors.ErrMalformedLine)
	}

	ref, clock, date := rec.Fields[1], rec.Fields[2], rec.Fields[3]

	hour, min, sec, err := ParseClock(clock)
	if err != nil {
		return true, fmt.Errorf("marker %s: %v: %w", ref, err, errors.ErrInvalidTimestamp)
	}
	day, err := ti.dates.Parse(date)
	if err != nil {
		return true, fmt.Errorf("marker %s: %v: %w", ref, err, errors.ErrInvalidTimestamp)
	}

	ti.current = Timestamp{
		Ref:  ref,
		Date: date,
		Time: clock,
		Hour: hour,
		At:   day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second),
	}
	ti.seen = true
	ti.markers++
	return true, nil
}

// Current returns the latest marker's timestamp, or ErrMissingTimestamp if
// no marker has been seen.
func (ti *TimeIndex) Current() (Timestamp, error) {
	if !ti.seen {
		return Timestamp{}, errors.ErrMissingTimestamp
	}
	return ti.current, nil
}

// CurrentRef returns the latest marker's interval reference.
func (ti *TimeIndex) CurrentRef() string {
	return ti.current.Ref
}

// CurrentHour returns the hour of the latest marker's time-of-day.
func (ti *TimeIndex) CurrentHour() int {
	return ti.current.Hour
}

// LastDate returns the date text of the latest marker, "" if none.
func (ti *TimeIndex) LastDate() string {
	return ti.current.Date
}

// Seen reports whether any marker has been observed.
func (ti *TimeIndex) Seen() bool {
	return ti.seen
}

// Markers returns the number of markers observed.
func (ti *TimeIndex) Markers() int {
	return ti.markers
}
