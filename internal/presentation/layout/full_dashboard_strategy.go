package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/util"
)

// FullLayoutStrategy draws the status header and a card per chart
type FullLayoutStrategy struct {
	BaseStrategy
}

func (s *FullLayoutStrategy) GetName() string {
	return "Full Dashboard"
}

func (s *FullLayoutStrategy) Render(w io.Writer, frame model.Frame, width int) {
	sizer := s.GetSizer()

	title := util.FormatHeaderTitle("go-comet") + "  " + s.ConnectionInfo(frame)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, s.PlayheadInfo(frame)+"  "+s.BufferInfo(frame))
	fmt.Fprintln(w, s.boardTabs(frame.State.Board))
	fmt.Fprintln(w, s.SeparatorLine(width))

	if len(frame.Summaries) == 0 {
		fmt.Fprintln(w, s.CenterText("nothing reported for this board yet", width))
	}

	for _, summary := range frame.Summaries {
		if summary.Chart.Kind == chart.KindMessageLog {
			s.renderMessageLog(w, summary, width)
			continue
		}

		header := util.FormatCardTitle(sizer.Fit(summary.Title, 20)) + " " + s.SummaryLine(summary)
		fmt.Fprintln(w, header)
		if !summary.Empty() {
			fmt.Fprintln(w, "  "+s.Bars(summary, frame.State.Zoom))
		}
	}

	fmt.Fprintln(w, s.SeparatorLine(width))
	footer := "space pause  h/l scrub  g live  tab board  +/- zoom  t layout  ? help  q quit"
	if frame.State.StatusMessage != "" {
		footer = frame.State.StatusMessage
	}
	fmt.Fprintln(w, sizer.Truncate(footer, width))
}

func (s *FullLayoutStrategy) boardTabs(active chart.Board) string {
	tabs := make([]string, 0, len(chart.Boards))
	for _, board := range chart.Boards {
		name := strings.ToUpper(board.String()[:1]) + board.String()[1:]
		if board == active {
			name = util.Colorize(util.ColorBold+util.ColorCyan, "["+name+"]")
		} else {
			name = " " + name + " "
		}
		tabs = append(tabs, name)
	}
	return strings.Join(tabs, " ")
}

func (s *FullLayoutStrategy) renderMessageLog(w io.Writer, summary chart.Summary, width int) {
	fmt.Fprintln(w, util.FormatCardTitle(summary.Title))
	if len(summary.Messages) == 0 {
		fmt.Fprintln(w, "  no messages")
		return
	}
	for _, message := range summary.Messages {
		fmt.Fprintln(w, "  "+s.GetSizer().Truncate(message, width-2))
	}
}
