package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-comet/internal/core/chart"
)

// Report is a snapshot of one board at a playhead, as printed by replay.
type Report struct {
	Source    string
	Board     chart.Board
	Position  string // "live" or the paused index
	Events    int
	At        time.Time
	Summaries []chart.Summary
}

// Formatter writes a report in one output format.
type Formatter interface {
	Format(w io.Writer, report Report) error
}

// Formats lists the accepted --output values.
var Formats = []string{"table", "json", "csv"}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "table", "":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected table, json or csv)", name)
	}
}

// row flattens a summary into the columns shared by table and csv output.
type row struct {
	Chart   string
	Last    string
	Average string
	Max     string
	Samples string
}

func rowOf(s chart.Summary) row {
	if s.Chart.Kind == chart.KindMessageLog {
		last := ""
		if len(s.Messages) > 0 {
			last = s.Messages[len(s.Messages)-1]
		}
		return row{Chart: s.Title, Last: last, Samples: fmt.Sprintf("%d", s.Samples)}
	}
	if s.Empty() {
		return row{Chart: s.Title, Last: "-", Average: "-", Max: "-", Samples: "0"}
	}
	return row{
		Chart:   s.Title,
		Last:    s.Last,
		Average: s.AverageLabel,
		Max:     s.MaxLabel,
		Samples: fmt.Sprintf("%d", s.Samples),
	}
}

func (r row) values() []string {
	return []string{r.Chart, r.Last, r.Average, r.Max, r.Samples}
}

var headers = []string{"Chart", "Last", "Average", "Max", "Samples"}
