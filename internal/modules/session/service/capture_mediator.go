package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	sessionout "quill/internal/modules/session/port/out"
	apperrors "quill/internal/platform/errors"
)

const CaptureAdvisory = "Webcam permission denied. You can continue without webcam."

// Acquisition is the outcome of a capture request. Stream is nil whenever
// Advisory is set.
type Acquisition struct {
	Stream   sessionout.Stream
	Advisory string
	Err      error
}

// CaptureMediator turns every capture failure into an advisory so callers
// never have to handle device errors.
type CaptureMediator struct {
	device      sessionout.CaptureDevice
	constraints sessionout.Constraints
	logger      *zap.Logger
}

func NewCaptureMediator(device sessionout.CaptureDevice, logger *zap.Logger) *CaptureMediator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureMediator{
		device:      device,
		constraints: sessionout.Constraints{Video: true, Audio: false},
		logger:      logger,
	}
}

func (m *CaptureMediator) Acquire(ctx context.Context) (acq Acquisition) {
	if m.device == nil {
		return Acquisition{Advisory: CaptureAdvisory, Err: apperrors.ErrCaptureUnsupported}
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("capture request panicked", zap.Any("panic", r))
			acq = Acquisition{Advisory: CaptureAdvisory, Err: fmt.Errorf("capture request panicked: %v", r)}
		}
	}()
	stream, err := m.device.Request(ctx, m.constraints)
	if err != nil {
		m.logger.Info("capture unavailable", zap.Error(err), zap.Bool("denied", errors.Is(err, apperrors.ErrCaptureDenied)))
		return Acquisition{Advisory: CaptureAdvisory, Err: err}
	}
	if stream == nil {
		return Acquisition{Advisory: CaptureAdvisory, Err: apperrors.ErrCaptureUnsupported}
	}
	m.logger.Debug("capture acquired", zap.String("stream", stream.ID()), zap.Int("tracks", len(stream.Tracks())))
	return Acquisition{Stream: stream}
}

// Release stops every track of stream. A nil stream is a no-op.
func (m *CaptureMediator) Release(stream sessionout.Stream) {
	if stream == nil {
		return
	}
	for _, track := range stream.Tracks() {
		if err := track.Stop(); err != nil {
			m.logger.Warn("stop capture track", zap.String("stream", stream.ID()), zap.String("kind", track.Kind()), zap.Error(err))
		}
	}
	m.logger.Debug("capture released", zap.String("stream", stream.ID()))
}
