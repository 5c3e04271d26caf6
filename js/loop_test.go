package js

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestLoop() (*Loop, *ManualClock) {
	clock := NewManualClock(time.Unix(0, 0))
	return NewLoop(WithClock(clock)), clock
}

func TestLoopTimeoutFiresAtDueTime(t *testing.T) {
	l, clock := newTestLoop()
	start := clock.Now()
	var firedAt time.Duration
	l.SetTimeout(func() { firedAt = clock.Now().Sub(start) }, 650*time.Millisecond)

	l.Advance(649 * time.Millisecond)
	if firedAt != 0 {
		t.Fatalf("Expected timeout not to fire yet, fired at %v", firedAt)
	}
	l.Advance(time.Millisecond)
	if firedAt != 650*time.Millisecond {
		t.Errorf("Expected timeout at 650ms, got %v", firedAt)
	}
}

func TestLoopTimersRunInDueOrder(t *testing.T) {
	l, _ := newTestLoop()
	var order []int
	l.SetTimeout(func() { order = append(order, 3) }, 30*time.Millisecond)
	l.SetTimeout(func() { order = append(order, 1) }, 10*time.Millisecond)
	l.SetTimeout(func() { order = append(order, 2) }, 10*time.Millisecond)
	l.Advance(50 * time.Millisecond)

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, order)
			break
		}
	}
}

func TestLoopClearTimer(t *testing.T) {
	l, _ := newTestLoop()
	called := false
	id := l.SetTimeout(func() { called = true }, 10*time.Millisecond)
	l.ClearTimer(id)
	l.ClearTimer(id)
	l.ClearTimer(0)
	l.Advance(time.Second)
	if called {
		t.Error("Cleared timeout was called")
	}
	if l.Pending() {
		t.Error("Expected no pending work")
	}
}

func TestLoopInterval(t *testing.T) {
	l, _ := newTestLoop()
	count := 0
	id := l.SetInterval(func() { count++ }, 100*time.Millisecond)
	l.Advance(550 * time.Millisecond)
	if count != 5 {
		t.Errorf("Expected 5 ticks, got %d", count)
	}
	if l.Busy() {
		t.Error("Expected an interval alone not to count as busy")
	}
	l.ClearTimer(id)
	l.Advance(time.Second)
	if count != 5 {
		t.Errorf("Expected no ticks after clear, got %d", count)
	}
}

func TestLoopFrames(t *testing.T) {
	l, _ := newTestLoop()
	var total time.Duration
	frames := 0
	l.RequestFrame(func(dt time.Duration) bool {
		total += dt
		frames++
		return frames < 10
	})
	l.Advance(time.Second)
	if frames != 10 {
		t.Errorf("Expected 10 frames, got %d", frames)
	}
	want := 10 * DefaultFrameInterval
	if total < want-time.Millisecond || total > want+time.Millisecond {
		t.Errorf("Expected about %v of frame time, got %v", want, total)
	}
}

func TestLoopNextFrameRunsOnce(t *testing.T) {
	l, _ := newTestLoop()
	count := 0
	l.NextFrame(func() { count++ })
	l.Advance(200 * time.Millisecond)
	if count != 1 {
		t.Errorf("Expected 1 call, got %d", count)
	}
}

func TestLoopTimerScheduledFromCallback(t *testing.T) {
	l, clock := newTestLoop()
	start := clock.Now()
	var second time.Duration
	l.SetTimeout(func() {
		l.SetTimeout(func() { second = clock.Now().Sub(start) }, 0)
	}, 10*time.Millisecond)
	l.Advance(10 * time.Millisecond)
	if second != 10*time.Millisecond {
		t.Errorf("Expected zero-delay timer at 10ms, got %v", second)
	}
}

func TestLoopPanicRecovered(t *testing.T) {
	l, _ := newTestLoop()
	after := false
	l.SetTimeout(func() { panic("boom") }, 0)
	l.SetTimeout(func() { after = true }, 1*time.Millisecond)
	l.Advance(5 * time.Millisecond)
	if !after {
		t.Error("Expected loop to keep running after a panic")
	}
}

func TestLoopSettle(t *testing.T) {
	l, _ := newTestLoop()
	l.SetInterval(func() {}, time.Second)
	done := false
	l.SetTimeout(func() { done = true }, 300*time.Millisecond)
	elapsed := l.Settle(10 * time.Second)
	if !done {
		t.Error("Expected timeout to have fired")
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("Expected settle to stop once idle, advanced %v", elapsed)
	}
}

func TestLoopPostFromGoroutines(t *testing.T) {
	l, _ := newTestLoop()
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() { count++ })
		}()
	}
	wg.Wait()
	l.RunOnce()
	if count != 20 {
		t.Errorf("Expected 20 posted tasks to run, got %d", count)
	}
}

func TestLoopRunAndDo(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if !ran {
		t.Error("Expected Do to run the function")
	}
	cancel()
	if err := <-errc; err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
