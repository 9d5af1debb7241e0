package formatter

import (
	"io"
	"time"

	"github.com/bytedance/sonic"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonReport struct {
	Source   string      `json:"source,omitempty"`
	Board    string      `json:"board"`
	Playhead string      `json:"playhead"`
	Events   int         `json:"events"`
	At       string      `json:"at,omitempty"`
	Charts   []jsonChart `json:"charts"`
}

type jsonChart struct {
	Title    string    `json:"title"`
	Last     string    `json:"last,omitempty"`
	Average  float64   `json:"average"`
	Max      float64   `json:"max"`
	Samples  int       `json:"samples"`
	Points   []float64 `json:"points,omitempty"`
	Messages []string  `json:"messages,omitempty"`
}

func (f *JSONFormatter) Format(w io.Writer, report Report) error {
	out := jsonReport{
		Source:   report.Source,
		Board:    report.Board.String(),
		Playhead: report.Position,
		Events:   report.Events,
		Charts:   make([]jsonChart, 0, len(report.Summaries)),
	}
	if !report.At.IsZero() {
		out.At = report.At.UTC().Format(time.RFC3339Nano)
	}
	for _, s := range report.Summaries {
		out.Charts = append(out.Charts, jsonChart{
			Title:    s.Title,
			Last:     s.Last,
			Average:  s.Average,
			Max:      s.Max,
			Samples:  s.Samples,
			Points:   s.Points,
			Messages: s.Messages,
		})
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
