package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// SummaryHeader is the column layout of WriteSummary.
var SummaryHeader = []string{"Host", "Title", "Series", "Reducer", "Samples", "Points", "Mean", "Peak", "Peak At"}

// SummaryRows returns one row per reported series of every host. Hosts
// without any series get a single row listing what was omitted.
func SummaryRows(reports []*HostReport) [][]string {
	var rows [][]string
	for _, r := range reports {
		all := r.All()
		if len(all) == 0 {
			rows = append(rows, []string{r.Host, r.Title, "-", "-", "0", "0", "-", "-", "omitted: " + strings.Join(r.Omitted, " ")})
			continue
		}
		for _, s := range all {
			peak, _ := s.Peak()
			rows = append(rows, []string{
				r.Host,
				r.Title,
				s.Name,
				s.Reducer.String(),
				strconv.Itoa(s.Samples),
				strconv.Itoa(len(s.Points)),
				formatValue(s.Mean()),
				formatValue(peak.Payload.Primary()),
				peak.At.Format("2006-01-02 15:04"),
			})
		}
	}
	return rows
}

// WriteSummary renders a table of every host report to w.
func WriteSummary(w io.Writer, reports []*HostReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(SummaryHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoMergeCells(false)
	table.AppendBulk(SummaryRows(reports))
	table.Render()
}

// WriteFailures renders the hosts that produced no report and why.
func WriteFailures(w io.Writer, failed map[string]error) {
	if len(failed) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Host", "Error"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColWidth(100)
	for _, host := range slices.Sorted(maps.Keys(failed)) {
		table.Append([]string{host, failed[host].Error()})
	}
	table.Render()
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
