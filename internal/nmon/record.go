// Package nmon decodes nmon capture files into per-metric time series.
//
// A host's file set is consumed by a Run, which owns the per-host state:
// a TimeIndex fed by ZZZZ markers, a DeviceResolver fed by BBBP multipath
// dumps and a Collector that turns data records into samples. A Run is
// strictly sequential; separate hosts use separate Runs.
package nmon

import (
	"fmt"
	"strings"

	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
)

// Record is one decoded line.
type Record struct {
	// Tag is the record kind (first field).
	Tag string
	// Ref is the interval reference (second field).
	Ref string
	// Fields holds every field of the line including Tag and Ref.
	Fields []string
}

// Decode splits a raw line into a Record.
//
// Fields are separated by commas and quotes carry no meaning, so a quoted
// payload that contains commas is split like any other text. Lines with
// fewer than two fields return ErrMalformedLine.
func Decode(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, constants.FieldDelimiter)
	if len(fields) < 2 {
		return Record{}, fmt.Errorf("%d field(s): %w", len(fields), errors.ErrMalformedLine)
	}
	return Record{
		Tag:    fields[0],
		Ref:    fields[1],
		Fields: fields,
	}, nil
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.Fields)
}

// Field returns field i, or "" and false if the record is shorter.
func (r Record) Field(i int) (string, bool) {
	if i < 0 || i >= len(r.Fields) {
		return "", false
	}
	return r.Fields[i], true
}

// Columns returns every field after the tag. For a header-defining record
// these are the column names; for a data record, Columns()[i] is the value
// of header column i.
func (r Record) Columns() []string {
	return r.Fields[1:]
}

// IsSample reports whether the interval reference denotes a real sampling
// interval rather than a header or configuration row.
func (r Record) IsSample() bool {
	return strings.HasPrefix(r.Ref, constants.SampleRefPrefix)
}
