package usecase

import (
	"context"
	"fmt"
	"time"

	promptdto "quill/internal/modules/prompt/dto"
	promptin "quill/internal/modules/prompt/port/in"
	"quill/internal/modules/session/domain"
	sessiondto "quill/internal/modules/session/dto"
	sessionin "quill/internal/modules/session/port/in"
	"quill/internal/modules/session/service"
	apperrors "quill/internal/platform/errors"
)

const (
	CopiedStatus     = "Copied."
	CopyFailedStatus = "Copy failed. Select and copy manually."

	// TimeUnknown stands in for a time that has not been fixed yet.
	TimeUnknown = "—"

	copiedClearAfter     = 1500 * time.Millisecond
	copyFailedClearAfter = 2500 * time.Millisecond
)

// Interactor drives the session service. Like the service it must only be
// called from the event loop.
type Interactor struct {
	svc     *service.SessionService
	prompts promptin.Usecase
}

func NewInteractor(svc *service.SessionService, prompts promptin.Usecase) sessionin.Usecase {
	return &Interactor{svc: svc, prompts: prompts}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.Snapshot, error) {
	prompt, err := i.resolvePrompt(ctx, input)
	if err != nil {
		return i.Snapshot(ctx), err
	}
	return toSnapshot(i.svc.Start(ctx, prompt.Title, prompt.Body)), nil
}

func (i *Interactor) resolvePrompt(ctx context.Context, input sessiondto.StartInput) (promptdto.PromptOutput, error) {
	if i.prompts == nil {
		return promptdto.PromptOutput{}, fmt.Errorf("no prompt source configured: %w", apperrors.ErrNoPrompts)
	}
	switch input.Mode {
	case sessiondto.PromptModeCustom:
		return i.prompts.Custom(ctx, input.Prompt)
	case sessiondto.PromptModeByID:
		return i.prompts.Get(ctx, input.PromptID)
	case sessiondto.PromptModeRandom, "":
		return i.prompts.Random(ctx)
	default:
		return promptdto.PromptOutput{}, fmt.Errorf("unknown prompt mode %q: %w", input.Mode, apperrors.ErrInvalidInput)
	}
}

func (i *Interactor) Edit(_ context.Context, input sessiondto.EditInput) (sessiondto.Snapshot, error) {
	state, err := i.svc.Edit(input.Text)
	return toSnapshot(state), err
}

func (i *Interactor) Submit(context.Context) (sessiondto.Snapshot, error) {
	state, err := i.svc.Submit()
	return toSnapshot(state), err
}

func (i *Interactor) Reset(context.Context) sessiondto.Snapshot {
	return toSnapshot(i.svc.Reset())
}

func (i *Interactor) TogglePreview(context.Context) sessiondto.Snapshot {
	return toSnapshot(i.svc.TogglePreview())
}

// CopyResponse reports the outcome as a transient status line; a clipboard
// failure is not an error for the caller.
func (i *Interactor) CopyResponse(context.Context) (sessiondto.CopyOutput, error) {
	if i.svc.State().Session.Screen != domain.ScreenPractice {
		return sessiondto.CopyOutput{}, apperrors.ErrNoActiveSession
	}
	if err := i.svc.CopyResponse(); err != nil {
		return sessiondto.CopyOutput{Status: CopyFailedStatus, ClearAfter: copyFailedClearAfter}, nil
	}
	return sessiondto.CopyOutput{Copied: true, Status: CopiedStatus, ClearAfter: copiedClearAfter}, nil
}

func (i *Interactor) Snapshot(context.Context) sessiondto.Snapshot {
	return toSnapshot(i.svc.State())
}

// Measure applies the session word limits to text without touching the
// session.
func (i *Interactor) Measure(_ context.Context, text string) sessiondto.Metrics {
	policy := i.svc.Settings().Policy
	words := domain.CountWords(text)
	governed := policy.Govern(text)
	return sessiondto.Metrics{
		Words:        words,
		Characters:   domain.CountCharacters(text),
		SoftTarget:   policy.SoftTarget,
		HardCap:      policy.HardCap,
		OverTarget:   policy.OverTarget(words),
		Clamped:      governed != text,
		ClampedWords: domain.CountWords(governed),
	}
}

func (i *Interactor) Subscribe(fn func(sessiondto.Snapshot)) func() {
	return i.svc.Subscribe(func(state service.State) { fn(toSnapshot(state)) })
}

func (i *Interactor) Close(context.Context) {
	i.svc.Close()
}

func toSnapshot(state service.State) sessiondto.Snapshot {
	s := state.Session
	words := domain.CountWords(s.Response)
	used, ok := s.TimeUsedSeconds()
	usedDisplay := TimeUnknown
	if ok {
		usedDisplay = domain.FormatTimeMMSS(float64(used))
	}
	return sessiondto.Snapshot{
		SessionID:             s.ID,
		Screen:                string(s.Screen),
		PromptTitle:           state.PromptTitle,
		Prompt:                s.Prompt,
		Response:              s.Response,
		SecondsRemaining:      s.SecondsRemaining,
		RemainingDisplay:      domain.FormatTimeMMSS(float64(s.SecondsRemaining)),
		TotalSeconds:          s.TotalSeconds,
		Running:               s.Running(),
		Locked:                s.Locked(),
		EndReason:             string(s.EndReason),
		FinalSecondsRemaining: s.FinalSecondsRemaining,
		HasFinal:              s.HasFinal,
		TimeUsedSeconds:       used,
		TimeUsedDisplay:       usedDisplay,
		Words:                 words,
		Characters:            domain.CountCharacters(s.Response),
		SoftTarget:            state.Policy.SoftTarget,
		HardCap:               state.Policy.HardCap,
		OverTarget:            state.Policy.OverTarget(words),
		Advisory:              s.Advisory,
		CaptureActive:         state.CaptureActive,
		PreviewVisible:        state.PreviewVisible,
	}
}
