package chart

import (
	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/core/timeline"
)

// Dashboard keeps one cache per chart and the catalog of seen stages.
// It is not safe for concurrent use.
type Dashboard struct {
	caches  map[Chart]*Cache
	catalog Catalog
}

// NewDashboard returns an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{caches: make(map[Chart]*Cache)}
}

// Observe feeds a freshly pushed event to the catalog and invalidates every
// cache it affects. It returns how many caches were invalidated.
func (d *Dashboard) Observe(event beacon.Event) int {
	d.catalog.Observe(event)
	return d.InvalidateBy(event)
}

// InvalidateBy drops the memoised summaries of every chart event affects,
// without recording it in the catalog. Used for events leaving the timeline.
func (d *Dashboard) InvalidateBy(event beacon.Event) int {
	invalidated := 0
	for _, cache := range d.caches {
		if cache.InvalidateBy(event) {
			invalidated++
		}
	}
	return invalidated
}

// InvalidateAll drops every memoised summary.
func (d *Dashboard) InvalidateAll() {
	for _, cache := range d.caches {
		cache.Invalidate()
	}
}

// Reset forgets every cache and seen stage.
func (d *Dashboard) Reset() {
	clear(d.caches)
	d.catalog.Reset()
}

// Catalog returns the seen stages.
func (d *Dashboard) Catalog() *Catalog {
	return &d.catalog
}

// Board returns the summaries of every chart on board.
func (d *Dashboard) Board(tl *timeline.Timeline, board Board, playhead timeline.Playhead, visible int) []Summary {
	charts := board.Charts(&d.catalog)
	summaries := make([]Summary, 0, len(charts))
	for _, c := range charts {
		summaries = append(summaries, d.cache(c).Summary(tl, playhead, visible))
	}
	return summaries
}

func (d *Dashboard) cache(c Chart) *Cache {
	if d.caches == nil {
		d.caches = make(map[Chart]*Cache)
	}
	cache, ok := d.caches[c]
	if !ok {
		cache = NewCache(c)
		d.caches[c] = cache
	}
	return cache
}
