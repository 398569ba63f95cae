package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quill/internal/modules/session/domain"
	sessionout "quill/internal/modules/session/port/out"
	"quill/internal/platform/clock"
	apperrors "quill/internal/platform/errors"
	"quill/internal/platform/id"
)

type Settings struct {
	Duration time.Duration
	Tick     time.Duration
	Policy   domain.Policy
}

func DefaultSettings() Settings {
	return Settings{
		Duration: domain.DefaultDuration,
		Tick:     250 * time.Millisecond,
		Policy:   domain.Policy{SoftTarget: domain.DefaultSoftTarget, HardCap: domain.DefaultHardCap},
	}
}

func (s Settings) Validate() error {
	if s.Duration < time.Second {
		return fmt.Errorf("duration must be at least 1s")
	}
	if s.Tick <= 0 {
		return fmt.Errorf("tick must be positive")
	}
	return s.Policy.Validate()
}

// State is everything a caller may observe about the live session.
type State struct {
	Session        domain.Session
	PromptTitle    string
	Policy         domain.Policy
	CaptureActive  bool
	PreviewVisible bool
}

// SessionService is the practice state machine. It is not safe for
// concurrent use: every method, and every callback it schedules, must run on
// the dispatcher's loop.
type SessionService struct {
	clock      clock.Clock
	ids        id.Generator
	dispatcher sessionout.Dispatcher
	scheduler  sessionout.Scheduler
	capture    *CaptureMediator
	clipboard  sessionout.Clipboard
	settings   Settings
	logger     *zap.Logger

	session        domain.Session
	promptTitle    string
	stream         sessionout.Stream
	previewVisible bool
	stopTicker     func()
	cancelAcquire  context.CancelFunc
	observers      map[int]func(State)
	nextObserver   int
}

func NewSessionService(
	clk clock.Clock,
	ids id.Generator,
	dispatcher sessionout.Dispatcher,
	scheduler sessionout.Scheduler,
	capture *CaptureMediator,
	clipboard sessionout.Clipboard,
	settings Settings,
	logger *zap.Logger,
) (*SessionService, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("session settings: %w", err)
	}
	if dispatcher == nil || scheduler == nil {
		return nil, fmt.Errorf("dispatcher and scheduler are required")
	}
	if capture == nil {
		capture = NewCaptureMediator(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		clock:          clk,
		ids:            ids,
		dispatcher:     dispatcher,
		scheduler:      scheduler,
		capture:        capture,
		clipboard:      clipboard,
		settings:       settings,
		logger:         logger,
		session:        domain.NewSession(settings.Duration),
		previewVisible: true,
		observers:      map[int]func(State){},
	}, nil
}

func (s *SessionService) Settings() Settings { return s.settings }

// Start discards any previous attempt, enters the requesting screen and asks
// for the capture device in the background. The prompt is revealed and the
// deadline armed once the request settles, whatever its outcome.
func (s *SessionService) Start(ctx context.Context, title, prompt string) State {
	s.teardown()
	s.session.Begin(s.ids.New(), s.settings.Duration)
	s.promptTitle = ""
	s.previewVisible = true
	epoch := s.session.Epoch
	s.logger.Info("session requesting capture", zap.String("session", s.session.ID), zap.Uint64("epoch", epoch))

	// The request outlives the caller's ctx; only teardown may abandon it.
	actx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelAcquire = cancel
	go func() {
		acq := s.capture.Acquire(actx)
		if actx.Err() != nil {
			s.capture.Release(acq.Stream)
			return
		}
		s.dispatcher.Post(func() { s.activate(epoch, title, prompt, acq) })
	}()

	s.notify()
	return s.State()
}

func (s *SessionService) activate(epoch uint64, title, prompt string, acq Acquisition) {
	if epoch != s.session.Epoch || s.session.Screen != domain.ScreenRequesting {
		s.logger.Debug("discarding stale capture result", zap.Uint64("epoch", epoch), zap.Uint64("current", s.session.Epoch))
		s.capture.Release(acq.Stream)
		return
	}
	if s.cancelAcquire != nil {
		s.cancelAcquire()
		s.cancelAcquire = nil
	}
	s.stream = acq.Stream
	s.session.Advisory = acq.Advisory
	s.promptTitle = title
	if err := s.session.Activate(prompt, s.clock.Now(), s.settings.Duration); err != nil {
		s.logger.Error("activate session", zap.Error(err))
		return
	}
	s.logger.Info("session started",
		zap.String("session", s.session.ID),
		zap.Time("deadline", s.session.Deadline),
		zap.Bool("capture", s.stream != nil),
	)
	s.startTicker()
	s.onTick(epoch)
	s.notify()
}

func (s *SessionService) startTicker() {
	s.stopTimer()
	epoch := s.session.Epoch
	s.stopTicker = s.scheduler.Every(s.settings.Tick, func() { s.onTick(epoch) })
}

func (s *SessionService) onTick(epoch uint64) {
	if epoch != s.session.Epoch {
		s.logger.Debug("discarding stale tick", zap.Uint64("epoch", epoch))
		return
	}
	before := s.session.SecondsRemaining
	remaining, expired := s.session.Tick(s.clock.Now())
	if expired {
		s.end(domain.EndTimeUp)
		return
	}
	if remaining != before {
		s.notify()
	}
}

// Submit ends the session early. Submitting an already ended session leaves
// its outcome untouched.
func (s *SessionService) Submit() (State, error) {
	if s.session.Screen != domain.ScreenPractice {
		return s.State(), apperrors.ErrNoActiveSession
	}
	s.end(domain.EndSubmitted)
	return s.State(), nil
}

func (s *SessionService) end(reason domain.EndReason) {
	if !s.session.Terminate(reason, s.clock.Now()) {
		return
	}
	s.stopTimer()
	s.releaseStream()
	s.logger.Info("session ended",
		zap.String("session", s.session.ID),
		zap.String("reason", string(reason)),
		zap.Int("final_seconds_remaining", s.session.FinalSecondsRemaining),
		zap.Int("words", domain.CountWords(s.session.Response)),
	)
	s.notify()
}

// Edit stores text for the running session, clamped to the hard cap.
func (s *SessionService) Edit(text string) (State, error) {
	if s.session.Screen != domain.ScreenPractice {
		return s.State(), apperrors.ErrNoActiveSession
	}
	if s.session.Locked() {
		return s.State(), apperrors.ErrSessionLocked
	}
	stored := s.settings.Policy.Govern(text)
	if stored != text {
		s.logger.Debug("response clamped", zap.Int("hard_cap", s.settings.Policy.HardCap))
	}
	s.session.Response = stored
	return s.State(), nil
}

// Reset abandons whatever is in progress and returns to the landing screen.
func (s *SessionService) Reset() State {
	s.teardown()
	s.session.Reset(s.settings.Duration)
	s.promptTitle = ""
	s.previewVisible = true
	s.logger.Info("session reset")
	s.notify()
	return s.State()
}

func (s *SessionService) TogglePreview() State {
	if s.stream != nil {
		s.previewVisible = !s.previewVisible
	}
	return s.State()
}

// CopyResponse writes the response to the clipboard.
func (s *SessionService) CopyResponse() error {
	if s.clipboard == nil {
		return apperrors.ErrClipboardUnavailable
	}
	if err := s.clipboard.WriteText(s.session.Response); err != nil {
		s.logger.Warn("copy response", zap.Error(err))
		return err
	}
	return nil
}

// Close releases everything the session holds. Safe to call repeatedly.
func (s *SessionService) Close() {
	s.teardown()
}

// Subscribe registers fn to run on the loop after each visible change.
func (s *SessionService) Subscribe(fn func(State)) func() {
	key := s.nextObserver
	s.nextObserver++
	s.observers[key] = fn
	return func() { delete(s.observers, key) }
}

func (s *SessionService) State() State {
	return State{
		Session:        s.session,
		PromptTitle:    s.promptTitle,
		Policy:         s.settings.Policy,
		CaptureActive:  s.stream != nil,
		PreviewVisible: s.stream != nil && s.previewVisible,
	}
}

func (s *SessionService) notify() {
	if len(s.observers) == 0 {
		return
	}
	state := s.State()
	for _, fn := range s.observers {
		fn(state)
	}
}

func (s *SessionService) teardown() {
	if s.cancelAcquire != nil {
		s.cancelAcquire()
		s.cancelAcquire = nil
	}
	s.stopTimer()
	s.releaseStream()
}

func (s *SessionService) stopTimer() {
	if s.stopTicker == nil {
		return
	}
	s.stopTicker()
	s.stopTicker = nil
}

func (s *SessionService) releaseStream() {
	if s.stream == nil {
		return
	}
	s.capture.Release(s.stream)
	s.stream = nil
}
