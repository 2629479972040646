// Package report assembles the aggregated series of one host into a
// HostReport and renders console summaries of a batch.
package report

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
	"github.com/xtxerr/nmonreport/internal/logging"
	"github.com/xtxerr/nmonreport/internal/nmon"
	"github.com/xtxerr/nmonreport/internal/series/aggregate"
	"github.com/xtxerr/nmonreport/internal/series/types"
)

var log = logging.Component("report")

// Config controls how collected samples become report series.
type Config struct {
	Granularity types.Granularity
	Reducer     types.Reducer
	Aggregate   aggregate.Options

	// Selected lists the tags reported besides the disk series, in display
	// order. CPU_ALL is always reported first when present.
	Selected []string
	// DiskTags are the multipath-summed series. DISKREAD and DISKWRITE fill
	// their own slots; any other disk tag is reported ahead of Selected.
	// Empty means the default disk tags.
	DiskTags []string
}

// DefaultConfig reports CPU_ALL at full resolution with auto reducers.
func DefaultConfig() Config {
	return Config{
		Granularity: types.GranularityNone,
		Reducer:     types.ReducerAuto,
		Aggregate:   aggregate.DefaultOptions(),
		Selected:    append([]string(nil), constants.DefaultSelectedTags...),
		DiskTags:    append([]string(nil), constants.DefaultDiskTags...),
	}
}

// Series is one aggregated metric of a host.
type Series struct {
	Tag     string
	Name    string
	Reducer types.Reducer
	Samples int
	Points  []types.Point
}

// Peak returns the point with the highest primary value.
func (s *Series) Peak() (types.Point, bool) {
	if s == nil || len(s.Points) == 0 {
		return types.Point{}, false
	}
	best := 0
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Payload.Primary() > s.Points[best].Payload.Primary() {
			best = i
		}
	}
	return s.Points[best], true
}

// Mean returns the mean primary value over all points.
func (s *Series) Mean() float64 {
	if s == nil || len(s.Points) == 0 {
		return 0
	}
	var sum float64
	for i := range s.Points {
		sum += s.Points[i].Payload.Primary()
	}
	return sum / float64(len(s.Points))
}

// HostReport is the presentation input for one host.
type HostReport struct {
	// Host is the resolved hostname.
	Host string
	// Dir is the name of the host's input directory.
	Dir string
	// LastDate is the date text of the last marker read.
	LastDate string
	// Title is the report heading.
	Title string
	// Files is the number of files parsed.
	Files       int
	Granularity types.Granularity

	CPU       *Series
	DiskRead  *Series
	DiskWrite *Series
	Extra     []*Series

	// Omitted lists tags whose series had no samples after filtering or
	// whose samples could not be aggregated together.
	Omitted []string

	Stats nmon.Stats
}

// All returns the present series in display order.
func (r *HostReport) All() []*Series {
	var out []*Series
	for _, s := range []*Series{r.CPU, r.DiskRead, r.DiskWrite} {
		if s != nil {
			out = append(out, s)
		}
	}
	return append(out, r.Extra...)
}

// Empty reports whether every series was omitted.
func (r *HostReport) Empty() bool {
	return len(r.All()) == 0
}

// Build aggregates every reported series of data.
//
// dir names the host's input directory; it stands in for the hostname when
// the files never declared one. A series without samples, or with samples
// of mixed kind or width, is recorded in Omitted. Other aggregation errors
// are returned.
func Build(data *nmon.HostData, dir string, cfg Config) (*HostReport, error) {
	if data == nil {
		return nil, errors.ErrNoInput
	}

	host := data.Host
	if host == "" {
		host = filepath.Base(dir)
	}

	r := &HostReport{
		Host:        host,
		Dir:         filepath.Base(dir),
		LastDate:    data.LastDate,
		Files:       len(data.Files),
		Granularity: cfg.Granularity,
		Stats:       data.Stats,
	}
	r.Title = Title(r.Host, r.Dir, r.LastDate, r.Files)

	build := func(tag string) (*Series, error) {
		s, err := buildSeries(data.Samples(tag), tag, cfg)
		switch {
		case errors.Is(err, errors.ErrEmptySeries):
			r.Omitted = append(r.Omitted, tag)
			log.Info("series omitted", "host", r.Host, "series", tag, "reason", err)
			return nil, nil
		case errors.Is(err, errors.ErrMixedPayload):
			r.Omitted = append(r.Omitted, tag)
			log.Warn("series omitted", "host", r.Host, "series", tag, "reason", err)
			return nil, nil
		case err != nil:
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return s, nil
	}

	var err error
	if r.CPU, err = build(constants.TagCPUAll); err != nil {
		return nil, err
	}

	diskTags := cfg.DiskTags
	if len(diskTags) == 0 {
		diskTags = constants.DefaultDiskTags
	}
	reported := map[string]struct{}{constants.TagCPUAll: {}}
	for _, tag := range diskTags {
		reported[tag] = struct{}{}
		s, err := build(tag)
		if err != nil {
			return nil, err
		}
		switch tag {
		case constants.TagDiskRead:
			r.DiskRead = s
		case constants.TagDiskWrite:
			r.DiskWrite = s
		default:
			if s != nil {
				r.Extra = append(r.Extra, s)
			}
		}
	}

	for _, tag := range cfg.Selected {
		if _, ok := reported[tag]; ok {
			continue
		}
		reported[tag] = struct{}{}
		s, err := build(tag)
		if err != nil {
			return nil, err
		}
		if s != nil {
			r.Extra = append(r.Extra, s)
		}
	}

	return r, nil
}

func buildSeries(samples []types.Sample, tag string, cfg Config) (*Series, error) {
	points, err := aggregate.Aggregate(samples, cfg.Granularity, cfg.Reducer, cfg.Aggregate)
	if err != nil {
		return nil, err
	}
	reducer := cfg.Reducer
	if reducer == types.ReducerAuto {
		reducer = types.ReducerFor(samples[0].Payload.Kind())
	}
	return &Series{
		Tag:     tag,
		Name:    constants.SeriesName(tag),
		Reducer: reducer,
		Samples: len(samples),
		Points:  points,
	}, nil
}

// Title returns the report heading. A single-file host is titled with its
// hostname and last date; a multi-file host with the year of its last date
// and its directory name.
func Title(host, dir, lastDate string, files int) string {
	if files <= 1 {
		if lastDate == "" {
			return host
		}
		return host + " " + lastDate
	}
	if year := yearOf(lastDate); year != "" {
		return year + " - " + dir
	}
	return dir
}

func yearOf(date string) string {
	if date == "" {
		return ""
	}
	t, err := nmon.NewDateParser(1).Parse(date)
	if err != nil {
		return ""
	}
	return strconv.Itoa(t.Year())
}
