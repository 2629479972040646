// Package aggregate re-samples collected series into coarser buckets.
//
// Samples are sorted chronologically, partitioned into contiguous runs that
// share a bucket key, and each run is reduced into one Point. Because the
// input is sorted and runs are contiguous, the output is in chronological
// bucket order.
package aggregate

import (
	"fmt"
	"slices"

	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

// Options configures the spread statistics attached to every point.
type Options struct {
	// Percentiles enables DDSketch p50/p95 of the primary value.
	Percentiles bool

	// Accuracy is the relative accuracy of the sketch (0.01 = 1% error).
	Accuracy float64
}

// DefaultOptions returns options with percentiles enabled at 1% accuracy.
func DefaultOptions() Options {
	return Options{
		Percentiles: true,
		Accuracy:    0.01,
	}
}

func (o Options) accuracy() float64 {
	if !o.Percentiles {
		return 0
	}
	if o.Accuracy <= 0 || o.Accuracy >= 1 {
		return 0.01
	}
	return o.Accuracy
}

// Aggregate sorts samples by timestamp and reduces them into one point per
// bucket of granularity g.
//
// ReducerAuto selects the reducer from the payload kind. All samples must
// carry payloads of the same kind and width. An empty input returns
// ErrEmptySeries.
func Aggregate(samples []types.Sample, g types.Granularity, r types.Reducer, opts Options) ([]types.Point, error) {
	if len(samples) == 0 {
		return nil, errors.ErrEmptySeries
	}

	kind, width, err := shape(samples)
	if err != nil {
		return nil, err
	}
	if r == types.ReducerAuto {
		r = types.ReducerFor(kind)
	}

	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b types.Sample) int {
		return a.At.Compare(b.At)
	})

	accuracy := opts.accuracy()
	points := make([]types.Point, 0, estimateBuckets(len(sorted), g))

	var cur *Bucket
	for i := range sorted {
		s := &sorted[i]
		key := g.BucketKey(s)

		if cur == nil || g == types.GranularityNone || key != cur.Key() {
			if cur != nil {
				points = append(points, cur.Reduce(r))
			}
			cur = NewBucket(key, g.Truncate(s.At), kind, width, accuracy)
		}
		cur.Add(s)
	}
	points = append(points, cur.Reduce(r))

	return points, nil
}

// shape returns the common payload kind and width of samples.
func shape(samples []types.Sample) (types.PayloadKind, int, error) {
	if samples[0].Payload == nil {
		return 0, 0, fmt.Errorf("sample 0 has no payload: %w", errors.ErrMixedPayload)
	}
	kind := samples[0].Payload.Kind()
	width := len(samples[0].Payload.Values())

	for i := 1; i < len(samples); i++ {
		p := samples[i].Payload
		if p == nil {
			return 0, 0, fmt.Errorf("sample %d has no payload: %w", i, errors.ErrMixedPayload)
		}
		if p.Kind() != kind {
			return 0, 0, fmt.Errorf("sample %d is %s, series is %s: %w", i, p.Kind(), kind, errors.ErrMixedPayload)
		}
		if n := len(p.Values()); n != width {
			return 0, 0, fmt.Errorf("sample %d has %d fields, series has %d: %w", i, n, width, errors.ErrMixedPayload)
		}
	}
	return kind, width, nil
}

func estimateBuckets(n int, g types.Granularity) int {
	switch g {
	case types.GranularityNone:
		return n
	case types.Granularity10Min:
		return n/10 + 1
	default:
		return n/60 + 1
	}
}
