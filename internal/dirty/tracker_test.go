package dirty

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_MarkAndDrain(t *testing.T) {
	tr := New(64)
	require.True(t, tr.MarkDirty(3))
	require.True(t, tr.MarkDirty(47))

	got := tr.Drain(nil)
	sort.Ints(got)
	assert.Equal(t, []int{3, 47}, got)
	assert.Equal(t, 0, tr.Pending())
}

func TestTracker_Coalesces(t *testing.T) {
	tr := New(64)
	for i := 0; i < 3; i++ {
		tr.MarkDirty(5)
	}
	assert.Equal(t, 1, tr.Pending())
	assert.Equal(t, []int{5}, tr.Drain(nil))
}

func TestTracker_DrainTwice(t *testing.T) {
	tr := New(64)
	tr.MarkDirty(10)
	require.Len(t, tr.Drain(nil), 1)
	assert.Empty(t, tr.Drain(nil))
}

func TestTracker_DrainEmpty(t *testing.T) {
	tr := New(130)
	buf := make([]int, 0, tr.Capacity())
	out := tr.Drain(buf)
	assert.Empty(t, out)
	allocs := testing.AllocsPerRun(100, func() {
		tr.MarkDirty(129)
		out = tr.Drain(buf)
	})
	assert.Zero(t, allocs)
	assert.Equal(t, []int{129}, out)
}

func TestTracker_OutOfRange(t *testing.T) {
	tr := New(64)
	assert.False(t, tr.MarkDirty(-1))
	assert.False(t, tr.MarkDirty(64))
	assert.False(t, tr.IsDirty(64))
	assert.Empty(t, tr.Drain(nil))
}

func TestTracker_MultiShard(t *testing.T) {
	tr := New(200)
	for _, i := range []int{0, 63, 64, 127, 199} {
		require.True(t, tr.MarkDirty(i))
		assert.True(t, tr.IsDirty(i))
	}
	assert.Equal(t, []int{0, 63, 64, 127, 199}, tr.Drain(nil))
}

func TestTracker_Reset(t *testing.T) {
	tr := New(64)
	tr.MarkDirty(1)
	tr.MarkDirty(2)
	tr.Reset()
	assert.Empty(t, tr.Drain(nil))
}

func TestTracker_ConcurrentProducers(t *testing.T) {
	tr := New(256)
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]int)

	stop := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		buf := make([]int, 0, tr.Capacity())
		for {
			select {
			case <-stop:
				buf = tr.Drain(buf)
				mu.Lock()
				for _, i := range buf {
					seen[i]++
				}
				mu.Unlock()
				return
			default:
				buf = tr.Drain(buf)
				mu.Lock()
				for _, i := range buf {
					seen[i]++
				}
				mu.Unlock()
			}
		}
	}()

	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				tr.MarkDirty((p*32 + i) % 256)
			}
		}(p)
	}
	wg.Wait()
	close(stop)
	<-drained

	// every index was marked at least once and ended up drained at least once
	assert.Len(t, seen, 256)
	assert.Zero(t, tr.Pending())
}
