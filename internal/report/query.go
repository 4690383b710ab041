package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintQueryTable prints the result of a raw query. Columns whose non-NULL
// values all parse as numbers are right-aligned, the rest left-aligned.
func PrintQueryTable(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	align := make([]tw.Align, len(cols))
	for i := range cols {
		align[i] = tw.AlignRight
		for _, row := range rows {
			if row[i] == "NULL" {
				continue
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				align[i] = tw.AlignLeft
				break
			}
		}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{PerColumn: align}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
