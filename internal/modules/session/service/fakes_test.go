package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sessionout "quill/internal/modules/session/port/out"
)

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

// queueDispatcher hands posted work to the test, which runs it on its own
// goroutine to play the role of the event loop.
type queueDispatcher struct {
	ch chan func()
}

func newQueueDispatcher() *queueDispatcher {
	return &queueDispatcher{ch: make(chan func(), 16)}
}

func (d *queueDispatcher) Post(fn func()) { d.ch <- fn }

func (d *queueDispatcher) next(t *testing.T) func() {
	t.Helper()
	select {
	case fn := <-d.ch:
		return fn
	case <-time.After(2 * time.Second):
		t.Fatalf("nothing was posted to the dispatcher")
		return nil
	}
}

func (d *queueDispatcher) runNext(t *testing.T) {
	t.Helper()
	d.next(t)()
}

type tickReg struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

type manualScheduler struct {
	regs []*tickReg
}

func (m *manualScheduler) Every(interval time.Duration, fn func()) func() {
	reg := &tickReg{interval: interval, fn: fn}
	m.regs = append(m.regs, reg)
	return func() { reg.cancelled = true }
}

func (m *manualScheduler) fire() {
	for _, reg := range m.regs {
		if !reg.cancelled {
			reg.fn()
		}
	}
}

func (m *manualScheduler) active() int {
	n := 0
	for _, reg := range m.regs {
		if !reg.cancelled {
			n++
		}
	}
	return n
}

type fakeTrack struct {
	stops   atomic.Int32
	once    sync.Once
	stopped chan struct{}
}

func (t *fakeTrack) Kind() string { return "video" }

func (t *fakeTrack) Stop() error {
	t.stops.Add(1)
	t.once.Do(func() { close(t.stopped) })
	return nil
}

type fakeStream struct {
	id    string
	track *fakeTrack
}

func (s *fakeStream) ID() string { return s.id }

func (s *fakeStream) Tracks() []sessionout.Track { return []sessionout.Track{s.track} }

func (s *fakeStream) released() bool { return s.track.stops.Load() > 0 }

func (s *fakeStream) waitReleased(t *testing.T) {
	t.Helper()
	select {
	case <-s.track.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream %s was never released", s.id)
	}
}

type fakeDevice struct {
	mu      sync.Mutex
	err     error
	gate    chan struct{}
	streams []*fakeStream
}

func (d *fakeDevice) Request(ctx context.Context, _ sessionout.Constraints) (sessionout.Stream, error) {
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeStream{id: "cam-" + string(rune('a'+len(d.streams))), track: &fakeTrack{stopped: make(chan struct{})}}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDevice) stream(t *testing.T, i int) *fakeStream {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.streams) {
		t.Fatalf("expected at least %d streams, got %d", i+1, len(d.streams))
	}
	return d.streams[i]
}

func (d *fakeDevice) waitStream(t *testing.T, i int) *fakeStream {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		if i < len(d.streams) {
			s := d.streams[i]
			d.mu.Unlock()
			return s
		}
		d.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stream %d was never requested", i)
	return nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}
