package timeline

import (
	"testing"
	"time"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 10, 13, 10, 30, 0, 0, time.UTC)

func update(number int, duration time.Duration, at time.Time) beacon.Event {
	return beacon.SpanFinished{
		Time:     at,
		Duration: duration,
		Span: beacon.Update{
			Number:        number,
			Message:       "message",
			TasksSpawned:  number * 2,
			Subscriptions: 1,
		},
	}
}

func span(s beacon.Span, duration time.Duration, at time.Time) beacon.Event {
	return beacon.SpanFinished{Time: at, Duration: duration, Span: s}
}

func collectUpdates(c UpdateCursor) []int {
	var numbers []int
	for u := range c.All() {
		numbers = append(numbers, u.Number)
	}
	return numbers
}

func TestNewDefaultsCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Capacity())
	assert.Equal(t, DefaultCapacity, New(-5).Capacity())
	assert.Equal(t, 10, New(10).Capacity())
}

func TestEmptyTimeline(t *testing.T) {
	tl := New(0)

	lo, hi := tl.Range()
	assert.Equal(t, Index(0), lo)
	assert.Equal(t, Index(0), hi)
	assert.Equal(t, 0, tl.Seek(Live()).Len())
	assert.Equal(t, 0, tl.SeekWithIndex(Paused(3)).Len())
	assert.Empty(t, tl.Updates(Live()).Take(10))
	assert.Empty(t, tl.UpdateRate(Live()).Take(10))

	frames := tl.Timeframes(Live(), beacon.UpdateStage)
	_, ok := frames.Next()
	assert.False(t, ok)

	_, ok = tl.TimeAt(Live())
	assert.False(t, ok)
}

func TestPushAssignsMonotonicIndices(t *testing.T) {
	tl := New(3)

	for i := 0; i < 10; i++ {
		before := tl.End()
		assigned := tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
		assert.Equal(t, before, assigned)
		assert.Equal(t, before+1, tl.End())

		lo, hi := tl.Range()
		assert.Equal(t, tl.Removed(), lo)
		assert.Equal(t, tl.End(), hi)
		assert.Equal(t, uint64(lo)+uint64(tl.Len()), uint64(tl.End()))
	}
}

func TestEvictionBound(t *testing.T) {
	const capacity, extra = 5, 3
	tl := New(capacity)

	for i := 0; i < capacity+extra; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
	}

	assert.Equal(t, capacity, tl.Len())
	lo, hi := tl.Range()
	assert.Equal(t, Index(extra), lo)
	assert.Equal(t, Index(capacity+extra), hi)

	var alive []int
	for event := range tl.Seek(Live()).All() {
		alive = append(alive, event.(beacon.SubscriptionsTracked).AmountAlive)
	}
	assert.Equal(t, []int{7, 6, 5, 4, 3}, alive)
}

func TestSeekDeterminism(t *testing.T) {
	tl := New(0)
	for i := 0; i < 6; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
	}

	live := tl.Seek(Live())
	require.Equal(t, 6, live.Len())
	want := 5
	for event := range live.All() {
		assert.Equal(t, want, event.(beacon.SubscriptionsTracked).AmountAlive)
		want--
	}

	paused := tl.Seek(Paused(4))
	assert.Equal(t, 4, paused.Len())
	first, ok := paused.Next()
	require.True(t, ok)
	assert.Equal(t, 3, first.(beacon.SubscriptionsTracked).AmountAlive)
}

func TestSeekAfterEvictionCountsFromRemoved(t *testing.T) {
	tl := New(4)
	for i := 0; i < 10; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
	}

	assert.Equal(t, 2, tl.Seek(Paused(8)).Len())
	assert.Equal(t, 0, tl.Seek(Paused(6)).Len())
	assert.Equal(t, 0, tl.Seek(Paused(1)).Len(), "playheads before the oldest event yield nothing")
}

func TestCursorIsRestartable(t *testing.T) {
	tl := New(0)
	for i := 0; i < 3; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
	}

	cursor := tl.Seek(Live())
	clone := cursor
	_, _ = cursor.Next()
	_, _ = cursor.Next()

	assert.Equal(t, 1, cursor.Len())
	assert.Equal(t, 3, clone.Len())

	// ranging twice starts over each time
	assert.Len(t, clone.Take(10), 3)
	assert.Len(t, clone.Take(10), 3)
}

func TestCursorSeqRangesFromHeadEveryTime(t *testing.T) {
	tl := New(0)
	tl.Push(beacon.SpanFinished{Time: epoch, Duration: 1, Span: beacon.Draw{Window: "main"}})
	tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: 1})
	tl.Push(beacon.SpanFinished{Time: epoch, Duration: 2, Span: beacon.Draw{Window: "main"}})

	events := tl.Seek(Live()).All()
	indexed := tl.SeekWithIndex(Live()).All()
	frames := tl.Timeframes(Live(), beacon.DrawStage).All()

	for round := 0; round < 2; round++ {
		n := 0
		for range events {
			n++
		}
		assert.Equal(t, 3, n, "events, round %d", round)

		var indices []Index
		for index := range indexed {
			indices = append(indices, index)
		}
		assert.Equal(t, []Index{2, 1, 0}, indices, "indexed, round %d", round)

		n = 0
		for range frames {
			n++
		}
		assert.Equal(t, 2, n, "timeframes, round %d", round)
	}
}

func TestSeekWithIndexUsesLogicalIndices(t *testing.T) {
	tl := New(3)
	for i := 0; i < 5; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
	}

	var indices []Index
	for index, event := range tl.SeekWithIndex(Live()).All() {
		indices = append(indices, index)
		assert.Equal(t, int(index), event.(beacon.SubscriptionsTracked).AmountAlive)
	}
	assert.Equal(t, []Index{4, 3, 2}, indices)

	indices = indices[:0]
	for index := range tl.SeekWithIndex(Paused(4)).All() {
		indices = append(indices, index)
	}
	assert.Equal(t, []Index{3, 2}, indices)
}

func TestScenarioUpdatesAndTimeframes(t *testing.T) {
	tl := New(0)
	tl.Push(beacon.Connected{Time: epoch, Name: "app", Version: "0.14.0"})
	tl.Push(update(1, 10*time.Millisecond, epoch.Add(time.Millisecond)))
	tl.Push(update(2, 12*time.Millisecond, epoch.Add(2*time.Millisecond)))
	tl.Push(beacon.SubscriptionsTracked{Time: epoch.Add(3 * time.Millisecond), AmountAlive: 3})

	assert.Equal(t, Index(4), tl.End())
	assert.Equal(t, []int{2, 1}, collectUpdates(tl.Updates(Live())))

	var frames []Timeframe
	for frame := range tl.Timeframes(Live(), beacon.UpdateStage).All() {
		frames = append(frames, frame)
	}
	require.Len(t, frames, 2)
	assert.Equal(t, 12*time.Millisecond, frames[0].Duration)
	assert.Equal(t, Index(2), frames[0].Index)
	assert.Equal(t, 10*time.Millisecond, frames[1].Duration)
	assert.Equal(t, Index(1), frames[1].Index)

	at, ok := tl.TimeAt(Live())
	require.True(t, ok)
	assert.Equal(t, epoch.Add(3*time.Millisecond), at)

	at, ok = tl.TimeAt(Paused(2))
	require.True(t, ok)
	assert.Equal(t, epoch.Add(time.Millisecond), at)

	_, ok = tl.TimeAt(Paused(0))
	assert.False(t, ok)
}

func TestScenarioEvictedUpdates(t *testing.T) {
	tl := New(2)
	for i := 1; i <= 3; i++ {
		tl.Push(update(i, time.Duration(i)*time.Millisecond, epoch.Add(time.Duration(i)*time.Second)))
	}

	lo, _ := tl.Range()
	assert.Equal(t, Index(1), lo)
	assert.Equal(t, []int{3, 2}, collectUpdates(tl.Updates(Live())))
}

func TestUpdateSummariesMatchSourceEvents(t *testing.T) {
	tl := New(4)
	for i := 0; i < 12; i++ {
		if i%3 == 0 {
			tl.Push(beacon.SubscriptionsTracked{Time: epoch, AmountAlive: i})
			continue
		}
		tl.Push(update(i, time.Millisecond, epoch))
	}

	positions := make(map[Index]beacon.Event)
	for index, event := range tl.SeekWithIndex(Live()).All() {
		positions[index] = event
	}

	summaries := tl.Updates(Live()).Take(100)
	require.NotEmpty(t, summaries)
	for _, summary := range summaries {
		event, ok := positions[summary.Index]
		require.True(t, ok, "summary %d points at an evicted event", summary.Index)
		_, source, isUpdate := beacon.UpdateSpan(event)
		require.True(t, isUpdate)
		assert.Equal(t, source.Number, summary.Number)
		assert.Equal(t, source.TasksSpawned, summary.TasksSpawned)
	}
}

func TestUpdatesPaused(t *testing.T) {
	tl := New(0)
	tl.Push(update(1, time.Millisecond, epoch))
	tl.Push(beacon.SubscriptionsTracked{Time: epoch})
	tl.Push(update(2, time.Millisecond, epoch))
	tl.Push(update(3, time.Millisecond, epoch))

	assert.Equal(t, []int{1}, collectUpdates(tl.Updates(Paused(2))))
	assert.Equal(t, []int{2, 1}, collectUpdates(tl.Updates(Paused(3))))
	assert.Empty(t, collectUpdates(tl.Updates(Paused(0))))
}

func TestRateBucketFolding(t *testing.T) {
	tl := New(0)
	tl.Push(update(1, time.Millisecond, epoch.Add(100*time.Millisecond)))
	tl.Push(update(2, time.Millisecond, epoch.Add(200*time.Millisecond)))
	tl.Push(beacon.SubscriptionsTracked{Time: epoch.Add(250 * time.Millisecond)})
	tl.Push(update(3, time.Millisecond, epoch.Add(900*time.Millisecond)))
	tl.Push(update(4, time.Millisecond, epoch.Add(1100*time.Millisecond)))

	buckets := tl.UpdateRate(Live()).Take(10)
	require.Len(t, buckets, 2)
	assert.Equal(t, 1, buckets[0].Total)
	assert.Equal(t, uint64(epoch.Unix()+1), buckets[0].Second)
	assert.Equal(t, 3, buckets[1].Total)
	assert.Equal(t, uint64(epoch.Unix()), buckets[1].Second)
	assert.Equal(t, Index(3), buckets[1].Index, "bucket is tagged with its last update")
	assert.Equal(t, epoch.Add(900*time.Millisecond), buckets[1].At)
}

func TestUpdateRatePausedHidesOpenBucket(t *testing.T) {
	tl := New(0)
	tl.Push(update(1, time.Millisecond, epoch))
	tl.Push(update(2, time.Millisecond, epoch.Add(time.Second)))
	tl.Push(update(3, time.Millisecond, epoch.Add(time.Second+time.Millisecond)))

	assert.Len(t, tl.UpdateRate(Paused(2)).Take(10), 1)
	assert.Len(t, tl.UpdateRate(Paused(3)).Take(10), 2)
}

func TestRateBucketEvictionLags(t *testing.T) {
	tl := New(2)
	second := epoch

	tl.Push(update(1, time.Millisecond, second.Add(100*time.Millisecond)))
	tl.Push(update(2, time.Millisecond, second.Add(200*time.Millisecond)))
	require.Equal(t, 1, tl.updateRate.Len())

	// evicts update 1, but the bucket's latest update (2) is newer
	tl.Push(update(3, time.Millisecond, second.Add(1100*time.Millisecond)))
	assert.Equal(t, 2, tl.updateRate.Len())
	assert.Equal(t, 2, tl.updateRate.Front().Total)

	// evicts update 2; equal timestamps do not evict the bucket
	tl.Push(update(4, time.Millisecond, second.Add(1200*time.Millisecond)))
	assert.Equal(t, 2, tl.updateRate.Len())
	assert.Equal(t, uint64(second.Unix()), tl.updateRate.Front().Second)
	assert.Equal(t, 2, tl.updates.Len())

	// evicts update 3, now strictly newer than the first bucket
	tl.Push(update(5, time.Millisecond, second.Add(2100*time.Millisecond)))
	assert.Equal(t, 2, tl.updateRate.Len())
	assert.Equal(t, uint64(second.Unix()+1), tl.updateRate.Front().Second)
}

func TestNonUpdateEvictionKeepsDerivedIndices(t *testing.T) {
	tl := New(2)
	tl.Push(beacon.SubscriptionsTracked{Time: epoch})
	tl.Push(update(1, time.Millisecond, epoch))
	tl.Push(beacon.SubscriptionsTracked{Time: epoch})

	assert.Equal(t, 1, tl.updates.Len())
	assert.Equal(t, 1, tl.updateRate.Len())
}

func TestTimeframesFilterByStage(t *testing.T) {
	tl := New(0)
	tl.Push(span(beacon.View{Window: "main"}, time.Millisecond, epoch))
	tl.Push(span(beacon.Present{Window: "main"}, 2*time.Millisecond, epoch))
	tl.Push(span(beacon.Present{Window: "other"}, 3*time.Millisecond, epoch))
	tl.Push(span(beacon.Prepare{Primitive: beacon.Quad}, 4*time.Millisecond, epoch))
	tl.Push(span(beacon.Custom{Name: "fetch"}, 5*time.Millisecond, epoch))

	count := func(stage beacon.Stage) int {
		n := 0
		for range tl.Timeframes(Live(), stage).All() {
			n++
		}
		return n
	}

	assert.Equal(t, 2, count(beacon.PresentStage))
	assert.Equal(t, 1, count(beacon.ViewStage))
	assert.Equal(t, 1, count(beacon.PrepareStage(beacon.Quad)))
	assert.Equal(t, 0, count(beacon.RenderStage(beacon.Quad)))
	assert.Equal(t, 1, count(beacon.CustomStage("fetch")))
	assert.Equal(t, 0, count(beacon.UpdateStage))
}

func TestClearResetsEverything(t *testing.T) {
	tl := New(2)
	for i := 0; i < 5; i++ {
		tl.Push(update(i, time.Millisecond, epoch))
	}
	stale := Paused(4)

	tl.Clear()

	lo, hi := tl.Range()
	assert.Equal(t, Index(0), lo)
	assert.Equal(t, Index(0), hi)
	assert.Equal(t, 0, tl.updates.Len())
	assert.Equal(t, 0, tl.updateRate.Len())

	tl.Push(beacon.SubscriptionsTracked{Time: epoch})
	assert.Equal(t, tl.End(), tl.Resolve(stale), "stale playheads clamp to the end")
	assert.Equal(t, 1, tl.Seek(stale).Len())
	assert.Equal(t, Index(1), tl.End())
}

func TestPreEpochTimestampsShareBucketZero(t *testing.T) {
	tl := New(0)
	tl.Push(update(1, time.Millisecond, time.Unix(-10, 0)))
	tl.Push(update(2, time.Millisecond, time.Unix(-5, 0)))

	buckets := tl.UpdateRate(Live()).Take(10)
	require.Len(t, buckets, 1)
	assert.Equal(t, uint64(0), buckets[0].Second)
	assert.Equal(t, 2, buckets[0].Total)
}

func TestRewindAndAdvance(t *testing.T) {
	tl := New(5)
	for i := 0; i < 8; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch})
	}

	p := tl.Rewind(Live(), 2)
	index, paused := p.Index()
	require.True(t, paused)
	assert.Equal(t, Index(6), index)

	p = tl.Rewind(p, 100)
	index, _ = p.Index()
	assert.Equal(t, Index(3), index, "rewinding stops at the oldest retained event")

	p = tl.Advance(p, 2)
	index, _ = p.Index()
	assert.Equal(t, Index(5), index)

	assert.True(t, tl.Advance(p, 3).IsLive())
	assert.True(t, tl.Advance(Live(), 1).IsLive())
}

func TestComparePlayheads(t *testing.T) {
	tl := New(0)
	for i := 0; i < 3; i++ {
		tl.Push(beacon.SubscriptionsTracked{Time: epoch})
	}

	assert.Equal(t, -1, tl.Compare(Paused(1), Live()))
	assert.Equal(t, 0, tl.Compare(Paused(3), Live()))
	assert.Equal(t, 0, tl.Compare(Paused(99), Live()))
	assert.Equal(t, 1, tl.Compare(Paused(2), Paused(1)))
}
