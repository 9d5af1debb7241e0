package timeline

import (
	"sort"
	"time"

	"github.com/gammazero/deque"
	"github.com/penwyp/go-comet/internal/core/beacon"
)

// DefaultCapacity is the number of events retained when no capacity is given.
const DefaultCapacity = 1_000_000

// Timeline is a bounded, append-only log of events with derived indices over
// update spans. It is owned by a single goroutine: Push and every query run
// in sequence, and cursors must not be held across a Push or Clear.
type Timeline struct {
	events     deque.Deque[beacon.Event]
	updates    deque.Deque[Update]
	updateRate deque.Deque[Bucket]
	removed    uint64
	capacity   int
}

// New creates an empty timeline retaining at most capacity events.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Timeline {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Timeline{capacity: capacity}
}

// Capacity returns the maximum number of retained events.
func (t *Timeline) Capacity() int {
	return t.capacity
}

// Len returns the number of retained events.
func (t *Timeline) Len() int {
	return t.events.Len()
}

// Removed returns the number of events evicted since the last Clear, which is
// also the index of the oldest retained event.
func (t *Timeline) Removed() Index {
	return Index(t.removed)
}

// Range returns the inclusive bounds a playhead can take.
func (t *Timeline) Range() (Index, Index) {
	return Index(t.removed), t.End()
}

// End returns the index one past the newest event.
func (t *Timeline) End() Index {
	return Index(t.removed + uint64(t.events.Len()))
}

// Resolve turns a playhead into an index. A paused index beyond End, such as
// one kept across a Clear, resolves to End.
func (t *Timeline) Resolve(playhead Playhead) Index {
	end := t.End()
	index, paused := playhead.Index()
	if !paused || index > end {
		return end
	}
	return index
}

// Push appends an event, folds it into the derived indices and evicts the
// oldest event once capacity is exceeded. It returns the assigned index.
func (t *Timeline) Push(event beacon.Event) Index {
	index := t.End()

	if finished, update, ok := beacon.UpdateSpan(event); ok {
		t.updates.PushBack(Update{
			Index:         index,
			Duration:      finished.Duration,
			Number:        update.Number,
			TasksSpawned:  update.TasksSpawned,
			Subscriptions: update.Subscriptions,
			Message:       update.Message,
		})
		t.foldRate(index, finished.Time)
	}

	t.events.PushBack(event)

	if t.events.Len() > t.capacity {
		t.evict()
	}

	return index
}

func (t *Timeline) foldRate(index Index, at time.Time) {
	second := unixSecond(at)

	if n := t.updateRate.Len(); n > 0 {
		if bucket := t.updateRate.Back(); bucket.Second == second {
			bucket.Index = index
			bucket.At = at
			bucket.Total++
			t.updateRate.Set(n-1, bucket)
			return
		}
	}

	t.updateRate.PushBack(Bucket{
		Index:  index,
		At:     at,
		Second: second,
		Total:  1,
	})
}

// evict drops the oldest event. A rate bucket only goes once its latest
// update is strictly older than the evicted one, so buckets outlive their
// first events for a while.
func (t *Timeline) evict() {
	evicted := t.events.PopFront()

	if finished, _, ok := beacon.UpdateSpan(evicted); ok {
		if t.updates.Len() > 0 {
			t.updates.PopFront()
		}
		if t.updateRate.Len() > 0 && t.updateRate.Front().At.Before(finished.Time) {
			t.updateRate.PopFront()
		}
	}

	t.removed++
}

// Clear resets the timeline to its initial empty state.
func (t *Timeline) Clear() {
	t.events.Clear()
	t.updates.Clear()
	t.updateRate.Clear()
	t.removed = 0
}

// Seek returns the events before the playhead, newest first.
func (t *Timeline) Seek(playhead Playhead) EventCursor {
	return Cursor[beacon.Event]{items: &t.events, head: t.offset(playhead)}
}

// SeekWithIndex is Seek with every event paired with its logical index.
func (t *Timeline) SeekWithIndex(playhead Playhead) IndexedCursor {
	return IndexedCursor{events: t.Seek(playhead), base: Index(t.removed)}
}

// Timeframes returns the finished spans of stage before the playhead, newest first.
func (t *Timeline) Timeframes(playhead Playhead, stage beacon.Stage) TimeframeCursor {
	return TimeframeCursor{events: t.SeekWithIndex(playhead), stage: stage}
}

// Updates returns the update summaries before the playhead, newest first.
func (t *Timeline) Updates(playhead Playhead) UpdateCursor {
	index := t.Resolve(playhead)
	head := sort.Search(t.updates.Len(), func(i int) bool {
		return t.updates.At(i).Index >= index
	})
	return Cursor[Update]{items: &t.updates, head: head}
}

// UpdateRate returns the rate buckets completed before the playhead, newest first.
func (t *Timeline) UpdateRate(playhead Playhead) BucketCursor {
	index := t.Resolve(playhead)
	head := sort.Search(t.updateRate.Len(), func(i int) bool {
		return t.updateRate.At(i).Index >= index
	})
	return Cursor[Bucket]{items: &t.updateRate, head: head}
}

// TimeAt returns the time of the newest event before the playhead.
func (t *Timeline) TimeAt(playhead Playhead) (time.Time, bool) {
	cursor := t.Seek(playhead)
	event, ok := cursor.Next()
	if !ok {
		return time.Time{}, false
	}
	return event.At(), true
}

// Rewind pauses n events before the playhead, never before the oldest event.
func (t *Timeline) Rewind(playhead Playhead, n int) Playhead {
	index := t.Resolve(playhead).Sub(n)
	if start := Index(t.removed); index < start {
		index = start
	}
	return Paused(index)
}

// Advance moves the playhead n events forward. Reaching the end goes live.
func (t *Timeline) Advance(playhead Playhead, n int) Playhead {
	if playhead.IsLive() {
		return playhead
	}
	index := t.Resolve(playhead).Add(n)
	if index >= t.End() {
		return Live()
	}
	if start := Index(t.removed); index < start {
		index = start
	}
	return Paused(index)
}

// Compare orders two playheads by their resolved index.
func (t *Timeline) Compare(a, b Playhead) int {
	return t.Resolve(a).Compare(t.Resolve(b))
}

// offset translates the playhead into a position in the events buffer.
func (t *Timeline) offset(playhead Playhead) int {
	return int(t.Resolve(playhead).Sub(int(t.removed)))
}

func unixSecond(at time.Time) uint64 {
	if s := at.Unix(); s > 0 {
		return uint64(s)
	}
	return 0
}
