package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/penwyp/go-comet/internal/util"
)

// maxCell bounds a column so long messages do not blow up the table.
const maxCell = 48

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{headers: headers}
}

func (f *TableFormatter) Format(w io.Writer, report Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Board: %s  Playhead: %s  Events: %s", report.Board, report.Position, util.FormatNumber(report.Events))
	if !report.At.IsZero() {
		fmt.Fprintf(&b, "  At: %s", util.GetTimeProvider().FormatEventTime(report.At))
	}
	b.WriteString("\n")

	rows := make([][]string, 0, len(report.Summaries))
	for _, s := range report.Summaries {
		values := rowOf(s).values()
		for i, v := range values {
			values[i] = runewidth.Truncate(v, maxCell, "…")
		}
		rows = append(rows, values)
	}

	widths := f.calculateColumnWidths(rows)

	f.printBorder(&b, widths, "top")
	f.printRow(&b, f.headers, widths, "header")
	f.printBorder(&b, widths, "middle")
	for _, values := range rows {
		f.printRow(&b, values, widths, "data")
	}
	f.printBorder(&b, widths, "bottom")

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, values := range rows {
		for i, value := range values {
			widths[i] = max(widths[i], runewidth.StringWidth(value))
		}
	}
	return widths
}

func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

// printRow left-aligns the chart column and headers, right-aligns numbers.
func (f *TableFormatter) printRow(b *strings.Builder, values []string, widths []int, rowType string) {
	b.WriteString("│")
	for i, value := range values {
		if rowType == "header" || i == 0 {
			b.WriteString(" " + runewidth.FillRight(value, widths[i]) + " │")
		} else {
			b.WriteString(" " + runewidth.FillLeft(value, widths[i]) + " │")
		}
	}
	b.WriteString("\n")
}
