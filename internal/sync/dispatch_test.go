package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFanOutCollectsAllResults(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := fanOut(context.Background(), 3, items,
		func(i int) int { return i },
		func(_ context.Context, i int) int { return i * i })

	if len(out) != len(items) {
		t.Fatalf("got %d results, want %d", len(out), len(items))
	}
	for _, i := range items {
		if out[i] != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], i*i)
		}
	}
}

func TestFanOutRespectsWorkerBound(t *testing.T) {
	var active, peak atomic.Int32
	items := make([]int, 16)
	for i := range items {
		items[i] = i
	}

	fanOut(context.Background(), 2, items,
		func(i int) int { return i },
		func(_ context.Context, i int) struct{} {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			return struct{}{}
		})

	if got := peak.Load(); got > 2 {
		t.Fatalf("peak concurrency %d, want at most 2", got)
	}
}
