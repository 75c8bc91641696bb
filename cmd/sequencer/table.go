package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"artwork-sequencer/internal/report"
	"artwork-sequencer/internal/sequence"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderTally draws the copy counts as a rounded table with a totals footer.
func renderTally(t report.Tally) string {
	twoWay := t.Mode == sequence.TwoWay
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s · %d lamp posts · %d artworks", t.Mode.Title(), t.Placements, t.ArtworkCount))

	header := table.Row{"Artwork", "Name", "Copies"}
	if twoWay {
		header = append(header, "Side 1", "Side 2")
	}
	tw.AppendHeader(header)

	for _, c := range t.Counts {
		row := table.Row{"#" + strconv.Itoa(c.Artwork), c.Name, c.Total()}
		if twoWay {
			row = append(row, c.Side1, c.Side2)
		}
		tw.AppendRow(row)
	}

	footer := table.Row{"Total", "", t.TotalCopies()}
	if twoWay {
		footer = append(footer, t.Side1Posts, t.Side2Posts)
	}
	tw.AppendFooter(footer)

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := 3; i <= len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderTable draws left-aligned rows under headers.
func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
