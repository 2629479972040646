package types

import (
	"fmt"
	"time"
)

// Reducer selects how the samples of one bucket are combined.
type Reducer int

const (
	// ReducerAuto picks the reducer from the payload kind, see ReducerFor.
	ReducerAuto Reducer = iota
	ReducerMean
	ReducerSum
	ReducerMin
	ReducerMax
)

// String returns the name of the reducer.
func (r Reducer) String() string {
	switch r {
	case ReducerAuto:
		return "auto"
	case ReducerMean:
		return "mean"
	case ReducerSum:
		return "sum"
	case ReducerMin:
		return "min"
	case ReducerMax:
		return "max"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ReducerFor returns the reducer used for a payload kind: CPU and generic
// fields are averaged, scalar throughput is summed.
func ReducerFor(kind PayloadKind) Reducer {
	if kind == PayloadScalar {
		return ReducerSum
	}
	return ReducerMean
}

// ParseReducer parses a reducer name.
func ParseReducer(s string) (Reducer, error) {
	switch s {
	case "auto", "":
		return ReducerAuto, nil
	case "mean", "avg":
		return ReducerMean, nil
	case "sum":
		return ReducerSum, nil
	case "min":
		return ReducerMin, nil
	case "max":
		return ReducerMax, nil
	default:
		return ReducerAuto, fmt.Errorf("unknown reducer: %s", s)
	}
}

// Point is one reduced bucket of a series.
type Point struct {
	// At is the representative timestamp: the first sample of the bucket
	// truncated to the bucket's granularity.
	At time.Time

	// Bucket is the grouping key the point was built from.
	Bucket string

	// Count is the number of samples reduced into this point.
	Count int

	// Payload holds the reduced value(s).
	Payload Payload

	// Spread of the samples' primary values.
	Min float64
	Max float64
	P50 *float64 // nil if percentiles are disabled
	P95 *float64

	// Timestamps of the first and last sample in the bucket.
	FirstAt time.Time
	LastAt  time.Time
}

// HasPercentiles returns true if percentile data is available.
func (p *Point) HasPercentiles() bool {
	return p.P50 != nil
}

// SetPercentiles sets all percentile values.
func (p *Point) SetPercentiles(p50, p95 float64) {
	p.P50 = &p50
	p.P95 = &p95
}

// Values returns the reduced sub-field values.
func (p *Point) Values() []float64 {
	if p.Payload == nil {
		return nil
	}
	return p.Payload.Values()
}
