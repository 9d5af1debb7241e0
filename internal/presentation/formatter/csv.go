package formatter

import (
	"encoding/csv"
	"io"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"Board"}, headers...)); err != nil {
		return err
	}

	for _, s := range report.Summaries {
		record := append([]string{report.Board.String()}, rowOf(s).values()...)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
