package domain

import (
	"fmt"
	"time"
)

const DefaultDuration = 10 * time.Minute

type Screen string

const (
	ScreenLanding    Screen = "landing"
	ScreenRequesting Screen = "requesting"
	ScreenPractice   Screen = "practice"
)

type EndReason string

const (
	EndNone      EndReason = ""
	EndSubmitted EndReason = "submitted"
	EndTimeUp    EndReason = "timeup"
)

func (r EndReason) Validate() error {
	switch r {
	case EndSubmitted, EndTimeUp:
		return nil
	default:
		return fmt.Errorf("unsupported end reason %q", string(r))
	}
}

// Session is the single live practice attempt. Epoch changes on every Begin
// and Reset so late timer ticks and capture results can be told apart from
// the current attempt.
type Session struct {
	ID                    string
	Epoch                 uint64
	Screen                Screen
	Prompt                string
	Response              string
	StartedAt             time.Time
	Deadline              time.Time
	TotalSeconds          int
	SecondsRemaining      int
	EndReason             EndReason
	FinalSecondsRemaining int
	HasFinal              bool
	Advisory              string

	expiry Latch
}

func NewSession(total time.Duration) Session {
	secs := int(total / time.Second)
	return Session{Screen: ScreenLanding, TotalSeconds: secs, SecondsRemaining: secs}
}

// Begin discards the previous attempt and waits for the capture request.
func (s *Session) Begin(id string, total time.Duration) {
	epoch := s.Epoch + 1
	*s = NewSession(total)
	s.ID = id
	s.Epoch = epoch
	s.Screen = ScreenRequesting
}

// Activate reveals the prompt and arms the deadline.
func (s *Session) Activate(prompt string, now time.Time, total time.Duration) error {
	if s.Screen != ScreenRequesting {
		return fmt.Errorf("cannot activate session from %s", s.Screen)
	}
	s.Prompt = prompt
	s.StartedAt = now
	s.Deadline = now.Add(total)
	s.TotalSeconds = int(total / time.Second)
	s.SecondsRemaining = RemainingSeconds(s.Deadline, now)
	s.Screen = ScreenPractice
	return nil
}

func (s *Session) HasDeadline() bool { return !s.Deadline.IsZero() }

func (s *Session) Locked() bool { return s.EndReason != EndNone }

// Running reports whether the countdown is live.
func (s *Session) Running() bool {
	return s.Screen == ScreenPractice && s.HasDeadline() && !s.Locked()
}

// Tick recomputes the remaining seconds. expired is true only for the first
// tick that observes zero.
func (s *Session) Tick(now time.Time) (remaining int, expired bool) {
	if !s.Running() {
		return s.SecondsRemaining, false
	}
	s.SecondsRemaining = RemainingSeconds(s.Deadline, now)
	if s.SecondsRemaining == 0 && s.expiry.Fire() {
		return 0, true
	}
	return s.SecondsRemaining, false
}

// Terminate locks the session. It returns false when the session already
// ended, leaving the first outcome untouched.
func (s *Session) Terminate(reason EndReason, now time.Time) bool {
	if s.Locked() || reason.Validate() != nil {
		return false
	}
	final := s.SecondsRemaining
	if s.HasDeadline() {
		final = RemainingSeconds(s.Deadline, now)
	}
	if reason == EndTimeUp {
		final = 0
		s.expiry.Fire()
	}
	s.EndReason = reason
	s.SecondsRemaining = final
	s.FinalSecondsRemaining = final
	s.HasFinal = true
	return true
}

// Reset returns to the landing screen with every session field cleared.
func (s *Session) Reset(total time.Duration) {
	epoch := s.Epoch + 1
	*s = NewSession(total)
	s.Epoch = epoch
}

// TimeUsedSeconds is only meaningful once the session has ended.
func (s *Session) TimeUsedSeconds() (int, bool) {
	if !s.HasFinal {
		return 0, false
	}
	return TimeUsed(s.TotalSeconds, s.FinalSecondsRemaining), true
}
