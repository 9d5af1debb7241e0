package timeline

import "time"

// Timeframe is a finished span of a given stage at a logical index.
type Timeframe struct {
	Index    Index
	At       time.Time
	Duration time.Duration
}

// Update summarises one finished update span, so update charts never rescan
// the raw event log.
type Update struct {
	Index         Index
	Duration      time.Duration
	Number        int
	TasksSpawned  int
	Subscriptions int
	Message       string
}

// Bucket counts update spans that finished within the same wall-clock second.
// Index is the index of the last update folded into the bucket and At its time.
type Bucket struct {
	Index  Index
	At     time.Time
	Second uint64
	Total  int
}
