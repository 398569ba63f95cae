// Package loop provides the single logical thread that owns session state.
// Timer ticks and asynchronous results are posted here and run one at a
// time, so state handlers never need locks.
package loop

import (
	"context"
	"sync"
)

// Poster accepts work for an event loop.
type Poster interface {
	Post(fn func())
}

// Loop runs posted functions serially on the goroutine that calls Run.
// The queue is unbounded so Post never blocks, even when called from a
// function already running on the loop.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopped bool
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. Work posted after Run returned is dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	for {
		for _, fn := range l.take() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.pending
	l.pending = nil
	return batch
}

func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.pending = nil
	l.mu.Unlock()
}
