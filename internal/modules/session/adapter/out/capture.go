package out

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	sessionout "quill/internal/modules/session/port/out"
	apperrors "quill/internal/platform/errors"
	"quill/internal/platform/id"
)

// DeviceCapture opens a local video device node. Holding the node open is
// what keeps the camera busy; closing it releases the device.
type DeviceCapture struct {
	path   string
	ids    id.Generator
	logger *zap.Logger
}

func NewDeviceCapture(path string, ids id.Generator, logger *zap.Logger) *DeviceCapture {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceCapture{path: path, ids: ids, logger: logger}
}

func (d *DeviceCapture) Request(ctx context.Context, constraints sessionout.Constraints) (sessionout.Stream, error) {
	if !constraints.Video || constraints.Audio {
		return nil, fmt.Errorf("only video-only capture is available: %w", apperrors.ErrCaptureUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	closer, err := openDevice(d.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.path, err)
	}
	if err := ctx.Err(); err != nil {
		_ = closer.Close()
		return nil, err
	}
	stream := &deviceStream{id: d.ids.New(), track: &deviceTrack{closer: closer}}
	d.logger.Debug("capture device opened", zap.String("device", d.path), zap.String("stream", stream.id))
	return stream, nil
}

type closer interface {
	Close() error
}

type deviceStream struct {
	id    string
	track *deviceTrack
}

func (s *deviceStream) ID() string { return s.id }

func (s *deviceStream) Tracks() []sessionout.Track { return []sessionout.Track{s.track} }

type deviceTrack struct {
	closer closer
	once   sync.Once
	err    error
}

func (t *deviceTrack) Kind() string { return "video" }

// Stop closes the device once; later calls report the first result.
func (t *deviceTrack) Stop() error {
	t.once.Do(func() { t.err = t.closer.Close() })
	return t.err
}

// DisabledCapture is used when capture is turned off in the config.
type DisabledCapture struct{}

func (DisabledCapture) Request(context.Context, sessionout.Constraints) (sessionout.Stream, error) {
	return nil, fmt.Errorf("capture disabled: %w", apperrors.ErrCaptureUnsupported)
}

// DeviceStatus is the probe result for one device node.
type DeviceStatus struct {
	Path   string
	Usable bool
	Reason string
}

// ProbeDevices opens and immediately closes every node matching pattern.
func ProbeDevices(pattern string) ([]DeviceStatus, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob devices: %w", err)
	}
	sort.Strings(matches)
	out := make([]DeviceStatus, 0, len(matches))
	for _, path := range matches {
		status := DeviceStatus{Path: path}
		c, openErr := openDevice(path)
		switch {
		case openErr == nil:
			_ = c.Close()
			status.Usable = true
			status.Reason = "ok"
		case errors.Is(openErr, apperrors.ErrCaptureDenied):
			status.Reason = "permission denied or busy"
		default:
			status.Reason = openErr.Error()
		}
		out = append(out, status)
	}
	return out, nil
}
