package types

import "time"

// PayloadKind indicates the shape of a sample value.
type PayloadKind int

const (
	// PayloadCPU holds user, system and iowait percentages of CPU_ALL.
	PayloadCPU PayloadKind = iota
	// PayloadScalar holds one pre-reduced number, e.g. summed disk throughput.
	PayloadScalar
	// PayloadFields holds every numeric column of a generic metric record.
	PayloadFields
)

// String returns a human-readable representation of the PayloadKind.
func (k PayloadKind) String() string {
	switch k {
	case PayloadCPU:
		return "cpu"
	case PayloadScalar:
		return "scalar"
	case PayloadFields:
		return "fields"
	default:
		return "unknown"
	}
}

// Payload is the value carried by a Sample or a Point.
//
// Implementations are CPU, Scalar and Fields. Values returns the
// sub-fields in a fixed order; Primary is the single number used for
// spread statistics.
type Payload interface {
	Kind() PayloadKind
	Values() []float64
	Primary() float64
}

// CPU is the CPU_ALL payload.
type CPU struct {
	User float64
	Sys  float64
	Wait float64
}

func (CPU) Kind() PayloadKind { return PayloadCPU }

func (c CPU) Values() []float64 { return []float64{c.User, c.Sys, c.Wait} }

// Primary returns the busy percentage (user + sys + wait).
func (c CPU) Primary() float64 { return c.User + c.Sys + c.Wait }

// Scalar is a single-number payload.
type Scalar struct {
	Value float64
}

func (Scalar) Kind() PayloadKind { return PayloadScalar }

func (s Scalar) Values() []float64 { return []float64{s.Value} }

func (s Scalar) Primary() float64 { return s.Value }

// Fields is a generic multi-column payload.
type Fields []float64

func (Fields) Kind() PayloadKind { return PayloadFields }

func (f Fields) Values() []float64 { return []float64(f) }

// Primary returns the first column, or 0 for an empty payload.
func (f Fields) Primary() float64 {
	if len(f) == 0 {
		return 0
	}
	return f[0]
}

// NewPayload builds a payload of the given kind from ordered sub-field values.
func NewPayload(kind PayloadKind, values []float64) Payload {
	switch kind {
	case PayloadCPU:
		var c CPU
		if len(values) > 0 {
			c.User = values[0]
		}
		if len(values) > 1 {
			c.Sys = values[1]
		}
		if len(values) > 2 {
			c.Wait = values[2]
		}
		return c
	case PayloadScalar:
		var s Scalar
		if len(values) > 0 {
			s.Value = values[0]
		}
		return s
	default:
		out := make(Fields, len(values))
		copy(out, values)
		return out
	}
}

// Sample is a single measurement taken from a data record.
type Sample struct {
	// Date is the marker's date text as written in the file.
	Date string
	// Time is the marker's time-of-day text (HH:MM:SS).
	Time string
	// At is Date and Time parsed into an instant (UTC).
	At time.Time

	Payload Payload
}

// Label returns the exact "date time" text of the sample.
func (s *Sample) Label() string {
	return s.Date + " " + s.Time
}
