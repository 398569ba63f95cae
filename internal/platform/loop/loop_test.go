package loop_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"quill/internal/platform/loop"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoopRunsPostedWorkInOrder(t *testing.T) {
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() {
		// posting from inside the loop must not deadlock
		l.Post(func() {
			got = append(got, 99)
			cancel()
		})
	})
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop")
	}
	want := []int{0, 1, 2, 3, 4, 99}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPostAfterStopIsDropped(t *testing.T) {
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); err == nil {
		t.Fatalf("expected context error from cancelled loop")
	}
	ran := false
	l.Post(func() { ran = true })
	if ran {
		t.Fatalf("post after stop must not run")
	}
}

func TestTickerSchedulerPostsUntilCancelled(t *testing.T) {
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	var ticks atomic.Int32
	reached := make(chan struct{})
	sched := loop.NewTickerScheduler(l)
	stop := sched.Every(5*time.Millisecond, func() {
		if ticks.Add(1) == 3 {
			close(reached)
		}
	})
	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler never ticked three times")
	}
	stop()
	stop()
	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	// one tick may already be queued when cancel happens
	if after := ticks.Load(); after > settled+1 {
		t.Fatalf("ticks continued after cancel: %d -> %d", settled, after)
	}
}
