package httptelemetry

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGuardFinishesOnce(t *testing.T) {
	var runs int32
	g := &guard{fn: func(outcome) { atomic.AddInt32(&runs, 1) }}

	g.finish(outcome{kind: outcomeResponse, status: 200})
	g.finish(outcome{kind: outcomeCancelled})

	if runs != 1 {
		t.Fatalf("finalization ran %d times, want 1", runs)
	}
}

func TestGuardConcurrentFinish(t *testing.T) {
	const triggers = 64

	var runs, dupes int32
	g := &guard{
		fn:          func(outcome) { atomic.AddInt32(&runs, 1) },
		onDuplicate: func() { atomic.AddInt32(&dupes, 1) },
	}

	var wg sync.WaitGroup
	wg.Add(triggers)
	for i := 0; i < triggers; i++ {
		kind := outcomeKind(i % 3)
		go func() {
			defer wg.Done()
			g.finish(outcome{kind: kind})
		}()
	}
	wg.Wait()

	if runs != 1 {
		t.Fatalf("finalization ran %d times, want 1", runs)
	}
	if dupes != triggers-1 {
		t.Fatalf("suppressed %d triggers, want %d", dupes, triggers-1)
	}
}
