package query

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04"

// WriteSummaries renders Summarize results as a table.
func WriteSummaries(w io.Writer, rows []SeriesSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Dir", "Host", "Series", "Points", "Mean", "Peak", "Peak At", "First", "Last"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range rows {
		table.Append([]string{
			r.Dir,
			r.Host,
			r.Series,
			strconv.FormatInt(r.Points, 10),
			fmt.Sprintf("%.2f", r.Mean),
			fmt.Sprintf("%.2f", r.Peak),
			r.PeakAt.Format(timeLayout),
			r.First.Format(timeLayout),
			r.Last.Format(timeLayout),
		})
	}
	table.Render()
}
