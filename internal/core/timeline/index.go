package timeline

import "cmp"

// Index is a position in the logical event stream. It grows by one with every
// pushed event and survives eviction, unlike a position in the buffer.
type Index uint64

// Add moves the index forward by n.
func (i Index) Add(n int) Index {
	if n < 0 {
		return i.back(magnitude(n))
	}
	return i + Index(n)
}

// Sub moves the index back by n, saturating at the logical origin.
func (i Index) Sub(n int) Index {
	if n < 0 {
		return i + Index(magnitude(n))
	}
	return i.back(uint64(n))
}

func (i Index) back(n uint64) Index {
	if Index(n) > i {
		return 0
	}
	return i - Index(n)
}

// magnitude returns |n| for negative n, including math.MinInt.
func magnitude(n int) uint64 {
	return uint64(-(n + 1)) + 1
}

// Compare returns -1, 0 or +1 like cmp.Compare.
func (i Index) Compare(other Index) int {
	return cmp.Compare(i, other)
}

// Playhead is the viewing position: either live, tracking the newest event,
// or paused at a historical index. It carries no resolution state; resolve it
// against a Timeline.
type Playhead struct {
	paused bool
	index  Index
}

// Live returns the playhead that follows the newest event.
func Live() Playhead {
	return Playhead{}
}

// Paused returns a playhead frozen at index.
func Paused(index Index) Playhead {
	return Playhead{paused: true, index: index}
}

// IsLive reports whether the playhead tracks the live edge.
func (p Playhead) IsLive() bool {
	return !p.paused
}

// Index returns the frozen index of a paused playhead.
func (p Playhead) Index() (Index, bool) {
	return p.index, p.paused
}
