package out

import (
	"context"
	"time"
)

// Constraints describes what the capture request asks for.
type Constraints struct {
	Video bool
	Audio bool
}

// Track is one underlying channel of a capture stream.
type Track interface {
	Kind() string
	Stop() error
}

// Stream is a live capture handle owned by exactly one session.
type Stream interface {
	ID() string
	Tracks() []Track
}

// CaptureDevice requests a live capture stream. Implementations return
// apperrors.ErrCaptureDenied or apperrors.ErrCaptureUnsupported when the
// device cannot be used.
type CaptureDevice interface {
	Request(ctx context.Context, constraints Constraints) (Stream, error)
}

// Dispatcher posts fn onto the single event loop that owns session state.
type Dispatcher interface {
	Post(fn func())
}

// Scheduler runs fn every interval until the returned cancel is called.
// Cancel must be idempotent.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

type Clipboard interface {
	WriteText(text string) error
}
