package chart

import (
	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/core/timeline"
)

type cacheKey struct {
	playhead timeline.Playhead
	visible  int
}

// Cache memoises the summary of a chart until an affecting event arrives or
// the query changes.
type Cache struct {
	chart   Chart
	key     cacheKey
	summary Summary
	valid   bool
}

// NewCache returns an empty cache for c.
func NewCache(c Chart) *Cache {
	return &Cache{chart: c}
}

// Chart returns the cached chart.
func (c *Cache) Chart() Chart {
	return c.chart
}

// Summary returns the memoised summary, computing it when stale.
func (c *Cache) Summary(tl *timeline.Timeline, playhead timeline.Playhead, visible int) Summary {
	key := cacheKey{playhead: playhead, visible: visible}
	if c.valid && c.key == key {
		return c.summary
	}
	c.summary = Compute(tl, playhead, c.chart, visible)
	c.key = key
	c.valid = true
	return c.summary
}

// Invalidate drops the memoised summary.
func (c *Cache) Invalidate() {
	c.valid = false
}

// InvalidateBy drops the memoised summary if event affects the chart.
func (c *Cache) InvalidateBy(event beacon.Event) bool {
	if !c.chart.Affected(event) {
		return false
	}
	c.valid = false
	return true
}

// Valid reports whether a memoised summary is held.
func (c *Cache) Valid() bool {
	return c.valid
}
