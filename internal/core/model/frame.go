package model

import (
	"time"

	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/timeline"
)

// Frame is everything needed to draw one screen
type Frame struct {
	State      InteractionState
	Connection Connection
	Now        time.Time // wall clock at render

	Start    timeline.Index
	End      timeline.Index
	Position timeline.Index // resolved playhead
	Len      int
	Capacity int

	TimeAt  time.Time // zero when the timeline is empty
	Visible int       // datapoints per chart

	Summaries []chart.Summary
}

// Paused reports whether the frame shows a paused playhead
func (f Frame) Paused() bool {
	return !f.State.Playhead.IsLive()
}

// Behind returns how many events the playhead lags the live edge
func (f Frame) Behind() uint64 {
	if f.End < f.Position {
		return 0
	}
	return uint64(f.End - f.Position)
}
