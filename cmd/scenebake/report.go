package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/Faultbox/scenebake/internal/batch"
	"github.com/Faultbox/scenebake/internal/convert"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func writeStats(w io.Writer, s convert.Stats) {
	table := newTable(w, "Counter", "Value")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, row := range s.Rows() {
		table.Append([]string{row.Label, strconv.Itoa(row.Value)})
	}
	table.Render()
}

func writeFiles(w io.Writer, files []batch.FileResult) {
	table := newTable(w, "Input", "Output", "Pipelines", "Status")
	for _, f := range files {
		status := "ok"
		if f.Err != nil {
			status = "failed"
		}
		table.Append([]string{f.Input, f.Output, strconv.Itoa(f.Stats.PipelinesBuilt), status})
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("%d files", len(files))})
	table.Render()
}

func writeMasks(w io.Writer, masks []convert.DrawableMasks) {
	table := newTable(w, "Drawable", "Shading", "Attributes")
	for _, m := range masks {
		table.Append([]string{m.Path, m.Masks.Shading.String(), m.Masks.Geometry.String()})
	}
	table.Render()
}
