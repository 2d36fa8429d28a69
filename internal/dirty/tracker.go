// File: internal/dirty/tracker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sharded dirty-index set. Each shard is one 64-bit word on its own cache
// line; marking is an atomic OR and draining is an atomic swap per shard.

package dirty

import (
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

const shardBits = 64

type shard struct {
	word atomic.Uint64
	_    cpu.CacheLinePad
}

// Tracker is a fixed-capacity concurrent set of indices in [0, Capacity()).
// MarkDirty is safe for any number of concurrent producers. Drain is meant
// for a single drainer but stays correct if called concurrently: every mark
// is observed by exactly one Drain.
type Tracker struct {
	shards   []shard
	capacity int
}

// New creates a tracker able to hold indices [0, capacity).
func New(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = 1
	}
	n := (capacity + shardBits - 1) / shardBits
	return &Tracker{shards: make([]shard, n), capacity: capacity}
}

// Capacity returns the number of trackable indices.
func (t *Tracker) Capacity() int {
	return t.capacity
}

// MarkDirty inserts index. Repeated marks before a drain collapse into one.
// Returns false for out-of-range indices.
func (t *Tracker) MarkDirty(index int) bool {
	if index < 0 || index >= t.capacity {
		return false
	}
	t.shards[index/shardBits].word.Or(1 << uint(index%shardBits))
	return true
}

// IsDirty reports whether index is pending.
func (t *Tracker) IsDirty(index int) bool {
	if index < 0 || index >= t.capacity {
		return false
	}
	return t.shards[index/shardBits].word.Load()&(1<<uint(index%shardBits)) != 0
}

// Drain empties the tracker and appends the previously pending indices to
// dst[:0]. With cap(dst) >= Capacity() it never allocates.
func (t *Tracker) Drain(dst []int) []int {
	dst = dst[:0]
	for i := range t.shards {
		s := &t.shards[i]
		if s.word.Load() == 0 {
			continue
		}
		w := s.word.Swap(0)
		base := i * shardBits
		for w != 0 {
			b := bits.TrailingZeros64(w)
			dst = append(dst, base+b)
			w &= w - 1
		}
	}
	return dst
}

// Pending returns the number of pending indices. The value is a snapshot
// and may be stale by the time it is used.
func (t *Tracker) Pending() int {
	n := 0
	for i := range t.shards {
		n += bits.OnesCount64(t.shards[i].word.Load())
	}
	return n
}

// Reset discards all pending indices.
func (t *Tracker) Reset() {
	for i := range t.shards {
		t.shards[i].word.Store(0)
	}
}
