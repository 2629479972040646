package aggregate

import (
	"math"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

// Bucket maintains running statistics for the samples of one bucket.
// Per sub-field it keeps sum, min and max; for the primary value it keeps
// min, max and an optional DDSketch for percentiles.
type Bucket struct {
	key  string
	at   time.Time
	kind types.PayloadKind

	count int
	sums  []float64
	mins  []float64
	maxs  []float64

	primaryMin float64
	primaryMax float64

	firstAt time.Time
	lastAt  time.Time

	// DDSketch for percentiles (nil if disabled)
	sketch *ddsketch.DDSketch
}

// NewBucket creates an empty bucket for payloads of the given kind and width.
// accuracy <= 0 disables percentiles.
func NewBucket(key string, at time.Time, kind types.PayloadKind, width int, accuracy float64) *Bucket {
	b := &Bucket{
		key:        key,
		at:         at,
		kind:       kind,
		sums:       make([]float64, width),
		mins:       make([]float64, width),
		maxs:       make([]float64, width),
		primaryMin: math.MaxFloat64,
		primaryMax: -math.MaxFloat64,
	}
	for i := 0; i < width; i++ {
		b.mins[i] = math.MaxFloat64
		b.maxs[i] = -math.MaxFloat64
	}

	if accuracy > 0 {
		sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
		if err == nil {
			b.sketch = sketch
		}
	}

	return b
}

// Add adds a sample to the bucket. The payload must match the bucket's
// kind and width; Aggregate checks this before adding.
func (b *Bucket) Add(s *types.Sample) {
	values := s.Payload.Values()

	b.count++
	for i, v := range values {
		b.sums[i] += v
		if v < b.mins[i] {
			b.mins[i] = v
		}
		if v > b.maxs[i] {
			b.maxs[i] = v
		}
	}

	primary := s.Payload.Primary()
	if primary < b.primaryMin {
		b.primaryMin = primary
	}
	if primary > b.primaryMax {
		b.primaryMax = primary
	}

	if b.firstAt.IsZero() || s.At.Before(b.firstAt) {
		b.firstAt = s.At
	}
	if s.At.After(b.lastAt) {
		b.lastAt = s.At
	}

	if b.sketch != nil {
		_ = b.sketch.Add(primary)
	}
}

// Count returns the number of samples added.
func (b *Bucket) Count() int {
	return b.count
}

// IsEmpty returns true if no samples have been added.
func (b *Bucket) IsEmpty() bool {
	return b.count == 0
}

// Key returns the bucket key.
func (b *Bucket) Key() string {
	return b.key
}

// Reduce returns the bucket as a Point, combining sub-fields with r.
// r must not be ReducerAuto.
func (b *Bucket) Reduce(r types.Reducer) types.Point {
	point := types.Point{
		At:      b.at,
		Bucket:  b.key,
		Count:   b.count,
		FirstAt: b.firstAt,
		LastAt:  b.lastAt,
	}

	values := make([]float64, len(b.sums))
	if b.count > 0 {
		for i := range values {
			switch r {
			case types.ReducerSum:
				values[i] = b.sums[i]
			case types.ReducerMin:
				values[i] = b.mins[i]
			case types.ReducerMax:
				values[i] = b.maxs[i]
			default:
				values[i] = b.sums[i] / float64(b.count)
			}
		}
		point.Min = b.primaryMin
		point.Max = b.primaryMax
	}
	point.Payload = types.NewPayload(b.kind, values)

	if b.sketch != nil && b.count > 0 {
		p50, _ := b.sketch.GetValueAtQuantile(0.50)
		p95, _ := b.sketch.GetValueAtQuantile(0.95)
		point.SetPercentiles(p50, p95)
	}

	return point
}
