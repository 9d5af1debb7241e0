package layout

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/util"
)

// BaseStrategy provides common functionality for all layout strategies
type BaseStrategy struct {
}

// GetSizer returns the shared sizer instance
func (b *BaseStrategy) GetSizer() *Sizer {
	return sharedSizer
}

// SeparatorLine creates a separator line
func (b *BaseStrategy) SeparatorLine(width int) string {
	return util.FormatSectionSeparator(width)
}

// CenterText centers text within the given width
func (b *BaseStrategy) CenterText(text string, width int) string {
	padding := max(width-util.GetDisplayWidth(text), 0)
	leftPad := padding / 2
	return strings.Repeat(" ", leftPad) + text + strings.Repeat(" ", padding-leftPad)
}

// ConnectionInfo describes the event source, e.g. "● todos 0.14.0 connected 2m 3s"
func (b *BaseStrategy) ConnectionInfo(frame model.Frame) string {
	c := frame.Connection
	switch c.Status {
	case model.StatusConnected:
		info := util.Colorize(util.ColorGreen, "●") + " " + c.Label() + " connected"
		if !c.Since.IsZero() {
			info += " " + util.FormatElapsed(frameNow(frame).Sub(c.Since))
		}
		return info
	case model.StatusDisconnected:
		return util.Colorize(util.ColorRed, "●") + " " + c.Label() + " disconnected"
	case model.StatusReplay:
		return util.Colorize(util.ColorBlue, "●") + " replay of " + c.Label()
	default:
		return util.Colorize(util.ColorYellow, "○") + " waiting for an application"
	}
}

// PlayheadInfo describes the playhead, e.g. "LIVE #120" or "PAUSED #40 (-80)"
func (b *BaseStrategy) PlayheadInfo(frame model.Frame) string {
	at := util.GetTimeProvider().FormatEventTime(frame.TimeAt)
	if frame.Paused() {
		return fmt.Sprintf("%s #%d (-%d) %s",
			util.Colorize(util.ColorYellow, "PAUSED"), frame.Position, frame.Behind(), at)
	}
	return fmt.Sprintf("%s #%d %s", util.Colorize(util.ColorGreen, "LIVE"), frame.Position, at)
}

// BufferInfo describes how full the timeline is
func (b *BaseStrategy) BufferInfo(frame model.Frame) string {
	return fmt.Sprintf("[%d..%d) %s/%s %s",
		frame.Start, frame.End,
		util.FormatNumber(frame.Len), util.FormatNumber(frame.Capacity),
		util.FormatPercent(frame.Len, frame.Capacity))
}

// SummaryLine renders the numeric columns of a chart
func (b *BaseStrategy) SummaryLine(summary chart.Summary) string {
	if summary.Empty() {
		return "no data"
	}
	return fmt.Sprintf("last %s  avg %s  max %s  (%d)",
		summary.Last, summary.AverageLabel, summary.MaxLabel, summary.Samples)
}

// Bars renders the visible points oldest to newest
func (b *BaseStrategy) Bars(summary chart.Summary, zoom chart.Zoom) string {
	points := slices.Clone(summary.Points)
	slices.Reverse(points)
	return util.Sparkline(points, summary.Max, int(zoom))
}

func frameNow(frame model.Frame) time.Time {
	if frame.Now.IsZero() {
		return time.Now()
	}
	return frame.Now
}
