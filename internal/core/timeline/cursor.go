package timeline

import (
	"iter"

	"github.com/gammazero/deque"
	"github.com/penwyp/go-comet/internal/core/beacon"
)

// Cursor walks a timeline buffer backward from a read head. It is a plain
// value: copying a cursor clones it, so several queries can scan from the same
// starting point independently.
type Cursor[T any] struct {
	items *deque.Deque[T]
	head  int
}

type (
	EventCursor  = Cursor[beacon.Event]
	UpdateCursor = Cursor[Update]
	BucketCursor = Cursor[Bucket]
)

// Next returns the next older item.
func (c *Cursor[T]) Next() (T, bool) {
	if c.head <= 0 || c.items == nil {
		var zero T
		return zero, false
	}
	c.head--
	return c.items.At(c.head), true
}

// Len returns how many items are left.
func (c Cursor[T]) Len() int {
	return max(c.head, 0)
}

// All ranges over the remaining items without consuming the cursor.
func (c Cursor[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		cur := c
		for item, ok := cur.Next(); ok; item, ok = cur.Next() {
			if !yield(item) {
				return
			}
		}
	}
}

// Take collects up to n items without consuming the cursor.
func (c Cursor[T]) Take(n int) []T {
	items := make([]T, 0, min(max(n, 0), c.Len()))
	for item := range c.All() {
		if len(items) >= n {
			break
		}
		items = append(items, item)
	}
	return items
}

// IndexedCursor pairs each event with its logical index.
type IndexedCursor struct {
	events EventCursor
	base   Index
}

// Next returns the next older event and its index.
func (c *IndexedCursor) Next() (Index, beacon.Event, bool) {
	event, ok := c.events.Next()
	if !ok {
		return 0, nil, false
	}
	return c.base.Add(c.events.head), event, true
}

// Len returns how many events are left.
func (c IndexedCursor) Len() int {
	return c.events.Len()
}

// All ranges over the remaining events without consuming the cursor.
func (c IndexedCursor) All() iter.Seq2[Index, beacon.Event] {
	return func(yield func(Index, beacon.Event) bool) {
		cur := c
		for index, event, ok := cur.Next(); ok; index, event, ok = cur.Next() {
			if !yield(index, event) {
				return
			}
		}
	}
}

// TimeframeCursor yields the finished spans of a single stage.
type TimeframeCursor struct {
	events IndexedCursor
	stage  beacon.Stage
}

// Next returns the next older timeframe.
func (c *TimeframeCursor) Next() (Timeframe, bool) {
	for index, event, ok := c.events.Next(); ok; index, event, ok = c.events.Next() {
		finished, isSpan := event.(beacon.SpanFinished)
		if !isSpan || finished.Span == nil || finished.Span.Stage() != c.stage {
			continue
		}
		return Timeframe{
			Index:    index,
			At:       finished.Time,
			Duration: finished.Duration,
		}, true
	}
	return Timeframe{}, false
}

// All ranges over the remaining timeframes without consuming the cursor.
func (c TimeframeCursor) All() iter.Seq[Timeframe] {
	return func(yield func(Timeframe) bool) {
		cur := c
		for frame, ok := cur.Next(); ok; frame, ok = cur.Next() {
			if !yield(frame) {
				return
			}
		}
	}
}
