// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for the real-time path and the background path.

package benchmarks

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/bridge"
	"github.com/momentics/spaceradio/fake"
	"github.com/momentics/spaceradio/internal/concurrency"
	"github.com/momentics/spaceradio/internal/dirty"
	"github.com/momentics/spaceradio/transport"
)

type discard struct{}

func (discard) ExecuteBackground(bridge.Task) bool { return true }

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// BenchmarkMarkDirtyParallel measures contended marking from many producers.
func BenchmarkMarkDirtyParallel(b *testing.B) {
	tr := dirty.New(64)
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			tr.MarkDirty(i & 63)
			i++
		}
	})
}

// BenchmarkDrainFull drains a tracker with every index set.
func BenchmarkDrainFull(b *testing.B) {
	tr := dirty.New(64)
	dst := make([]int, 0, 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 64; j++ {
			tr.MarkDirty(j)
		}
		dst = tr.Drain(dst)
	}
}

// BenchmarkProcessIdle measures a block with no changes.
func BenchmarkProcessIdle(b *testing.B) {
	br, err := bridge.New(bridge.DefaultConfig(), bridge.WithoutSender(), bridge.WithLogger(quiet()))
	if err != nil {
		b.Fatal(err)
	}
	buf := api.NewBuffer(1, 512)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		br.Process(buf, discard{})
	}
}

// BenchmarkProcessAllChanged measures a block where every control changed.
func BenchmarkProcessAllChanged(b *testing.B) {
	br, err := bridge.New(bridge.DefaultConfig(), bridge.WithoutSender(), bridge.WithLogger(quiet()))
	if err != nil {
		b.Fatal(err)
	}
	buf := api.NewBuffer(1, 512)
	bank := br.Bank()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < bank.Len(); j++ {
			bank.Set(j, 0.5)
		}
		br.Process(buf, discard{})
	}
}

// BenchmarkTaskQueueSubmit measures non-blocking submission.
func BenchmarkTaskQueueSubmit(b *testing.B) {
	q := concurrency.NewTaskQueue[bridge.Task](1<<16, -1, func(bridge.Task) {})
	defer q.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Submit(bridge.Task{Index: i & 63, Value: 0.5})
	}
}

// BenchmarkTaskExecutor measures encode and write through a fake socket.
func BenchmarkTaskExecutor(b *testing.B) {
	conn := fake.NewPacketConn()
	br, err := bridge.New(bridge.DefaultConfig(),
		bridge.WithSender(transport.NewSenderConn(conn)), bridge.WithLogger(quiet()))
	if err != nil {
		b.Fatal(err)
	}
	run := br.TaskExecutor()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		run(bridge.Task{Index: i & 63, Value: 0.5})
		if i&1023 == 0 {
			conn.ClearSent()
		}
	}
}
