package chart

import (
	"fmt"
	"time"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/core/timeline"
)

// Kind is the metric a chart plots.
type Kind int

const (
	KindPerformance Kind = iota
	KindTasksSpawned
	KindSubscriptionsAlive
	KindMessageRate
	KindMessageLog
)

// Chart identifies one chart. It is comparable and used as a map key.
type Chart struct {
	Kind  Kind
	Stage beacon.Stage // only for KindPerformance
}

func Performance(stage beacon.Stage) Chart { return Chart{Kind: KindPerformance, Stage: stage} }
func TasksSpawned() Chart                  { return Chart{Kind: KindTasksSpawned} }
func SubscriptionsAlive() Chart            { return Chart{Kind: KindSubscriptionsAlive} }
func MessageRate() Chart                   { return Chart{Kind: KindMessageRate} }
func MessageLog() Chart                    { return Chart{Kind: KindMessageLog} }

// Title returns the card title of the chart.
func (c Chart) Title() string {
	switch c.Kind {
	case KindPerformance:
		return c.Stage.String()
	case KindTasksSpawned:
		return "Tasks Spawned"
	case KindSubscriptionsAlive:
		return "Subscriptions Alive"
	case KindMessageRate:
		return "Message Rate"
	case KindMessageLog:
		return "Message Log"
	default:
		return fmt.Sprintf("chart(%d)", int(c.Kind))
	}
}

// Affected reports whether event changes what the chart shows.
func (c Chart) Affected(event beacon.Event) bool {
	if _, ok := event.(beacon.ThemeChanged); ok {
		return true
	}

	switch c.Kind {
	case KindPerformance:
		finished, ok := event.(beacon.SpanFinished)
		return ok && finished.Span != nil && finished.Span.Stage() == c.Stage
	case KindTasksSpawned, KindMessageRate, KindMessageLog:
		_, _, ok := beacon.UpdateSpan(event)
		return ok
	case KindSubscriptionsAlive:
		_, ok := event.(beacon.SubscriptionsTracked)
		return ok
	default:
		return false
	}
}

// Summary is the numeric content of a chart at a playhead.
type Summary struct {
	Chart        Chart
	Title        string
	Points       []float64 // newest first, at most the visible amount
	Last         string
	Max          float64
	MaxLabel     string
	Average      float64
	AverageLabel string
	Samples      int
	Messages     []string // only for KindMessageLog, oldest first
}

// Empty reports whether the chart has nothing to show.
func (s Summary) Empty() bool {
	return s.Samples == 0 && len(s.Messages) == 0
}

// averageSpan is how many visible windows the average looks back over.
const averageSpan = 3

// Compute builds the summary of a chart with visible datapoints on screen.
func Compute(tl *timeline.Timeline, playhead timeline.Playhead, c Chart, visible int) Summary {
	visible = max(visible, 1)
	summary := Summary{Chart: c, Title: c.Title()}

	if c.Kind == KindMessageLog {
		summary.Messages = Messages(tl, playhead, visible)
		summary.Samples = len(summary.Messages)
		return summary
	}

	values := datapoints(tl, playhead, c, visible*averageSpan)
	if len(values) == 0 {
		return summary
	}

	format, formatAverage := formatters(c.Kind)

	summary.Points = values[:min(visible, len(values))]
	summary.Samples = len(summary.Points)
	summary.Last = format(values[0])

	summary.Max = summary.Points[0]
	for _, v := range summary.Points[1:] {
		summary.Max = max(summary.Max, v)
	}
	summary.MaxLabel = format(summary.Max)

	var sum float64
	for _, v := range values {
		sum += v
	}
	summary.Average = sum / float64(len(values))
	summary.AverageLabel = formatAverage(summary.Average)

	return summary
}

// Messages returns the messages of the last n updates before the playhead,
// oldest first.
func Messages(tl *timeline.Timeline, playhead timeline.Playhead, n int) []string {
	updates := tl.Updates(playhead).Take(n)
	messages := make([]string, len(updates))
	for i, u := range updates {
		messages[len(updates)-1-i] = u.Message
	}
	return messages
}

func datapoints(tl *timeline.Timeline, playhead timeline.Playhead, c Chart, limit int) []float64 {
	values := make([]float64, 0, limit)
	push := func(v float64) bool {
		values = append(values, v)
		return len(values) < limit
	}

	switch c.Kind {
	case KindPerformance:
		for frame := range tl.Timeframes(playhead, c.Stage).All() {
			if !push(float64(frame.Duration)) {
				break
			}
		}
	case KindTasksSpawned:
		for u := range tl.Updates(playhead).All() {
			if !push(float64(u.TasksSpawned)) {
				break
			}
		}
	case KindSubscriptionsAlive:
		for event := range tl.Seek(playhead).All() {
			tracked, ok := event.(beacon.SubscriptionsTracked)
			if ok && !push(float64(tracked.AmountAlive)) {
				break
			}
		}
	case KindMessageRate:
		for bucket := range tl.UpdateRate(playhead).All() {
			if !push(float64(bucket.Total)) {
				break
			}
		}
	}

	return values
}

func formatters(kind Kind) (func(float64) string, func(float64) string) {
	switch kind {
	case KindPerformance:
		duration := func(v float64) string { return time.Duration(v).Round(time.Microsecond).String() }
		return duration, duration
	case KindMessageRate:
		return func(v float64) string { return fmt.Sprintf("%.0f msg/s", v) },
			func(v float64) string { return fmt.Sprintf("%.1f msg/s", v) }
	default:
		return func(v float64) string { return fmt.Sprintf("%.0f", v) },
			func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}
}
