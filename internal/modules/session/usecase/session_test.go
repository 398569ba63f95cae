package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	promptdomain "quill/internal/modules/prompt/domain"
	promptservice "quill/internal/modules/prompt/service"
	promptusecase "quill/internal/modules/prompt/usecase"
	sessiondto "quill/internal/modules/session/dto"
	sessionin "quill/internal/modules/session/port/in"
	"quill/internal/modules/session/service"
	"quill/internal/modules/session/usecase"
	"quill/internal/platform/clock"
	apperrors "quill/internal/platform/errors"
	"quill/internal/platform/loop"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type promptBank []promptdomain.Prompt

func (b promptBank) List(context.Context) ([]promptdomain.Prompt, error) { return b, nil }

type manualScheduler struct {
	fns []func()
}

func (m *manualScheduler) Every(_ time.Duration, fn func()) func() {
	idx := len(m.fns)
	m.fns = append(m.fns, fn)
	return func() { m.fns[idx] = nil }
}

func (m *manualScheduler) fire() {
	for _, fn := range m.fns {
		if fn != nil {
			fn()
		}
	}
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

type harness struct {
	uc        sessionin.Usecase
	clock     *clock.Manual
	scheduler *manualScheduler
	clipboard *fakeClipboard
	loop      *loop.Loop
	updates   chan sessiondto.Snapshot
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	h := &harness{
		clock:     clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		scheduler: &manualScheduler{},
		clipboard: &fakeClipboard{},
		loop:      l,
		updates:   make(chan sessiondto.Snapshot, 64),
	}
	bank := promptBank{{ID: "rain", Title: "Rain", Body: "Write about rain.", Origin: promptdomain.OriginBuiltin}}
	prompts := promptusecase.NewInteractor(promptservice.NewPromptService(nil, nil, bank))
	svc, err := service.NewSessionService(h.clock, fakeID{}, l, h.scheduler, nil, h.clipboard, service.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("new session service: %v", err)
	}
	h.uc = usecase.NewInteractor(svc, prompts)
	h.do(t, func() {
		h.uc.Subscribe(func(s sessiondto.Snapshot) { h.updates <- s })
	})
	return h
}

// do runs fn on the loop and waits for it.
func (h *harness) do(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	h.loop.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not run posted work")
	}
}

func (h *harness) waitScreen(t *testing.T, screen string) sessiondto.Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.updates:
			if s.Screen == screen {
				return s
			}
		case <-timeout:
			t.Fatalf("never reached screen %s", screen)
		}
	}
}

func (h *harness) startRandom(t *testing.T) sessiondto.Snapshot {
	t.Helper()
	var (
		snap sessiondto.Snapshot
		err  error
	)
	h.do(t, func() { snap, err = h.uc.Start(context.Background(), sessiondto.StartInput{Mode: sessiondto.PromptModeRandom}) })
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Screen != "requesting" {
		t.Fatalf("start should enter requesting, got %s", snap.Screen)
	}
	return h.waitScreen(t, "practice")
}

func TestRandomPromptSessionSubmittedEarly(t *testing.T) {
	h := newHarness(t)
	practice := h.startRandom(t)
	if practice.Prompt != "Write about rain." || practice.PromptTitle != "Rain" {
		t.Fatalf("unexpected prompt: %q %q", practice.PromptTitle, practice.Prompt)
	}
	if practice.TimeUsedDisplay != usecase.TimeUnknown || practice.RemainingDisplay != "10:00" {
		t.Fatalf("unexpected displays: %q %q", practice.TimeUsedDisplay, practice.RemainingDisplay)
	}
	if practice.SecondsRemaining != 600 || !practice.Running || practice.Locked {
		t.Fatalf("unexpected practice snapshot: %+v", practice)
	}
	if practice.Advisory != service.CaptureAdvisory || practice.CaptureActive {
		t.Fatalf("missing capture device should surface the advisory: %+v", practice)
	}

	var edited sessiondto.Snapshot
	h.do(t, func() {
		var err error
		edited, err = h.uc.Edit(context.Background(), sessiondto.EditInput{Text: strings.Repeat("word ", 360)})
		if err != nil {
			t.Errorf("edit: %v", err)
		}
	})
	if edited.Words != 350 || !edited.OverTarget || edited.HardCap != 350 || edited.SoftTarget != 300 {
		t.Fatalf("edit should clamp to the hard cap: words=%d over=%v", edited.Words, edited.OverTarget)
	}

	h.clock.Advance(150*time.Second + 400*time.Millisecond)
	var ended sessiondto.Snapshot
	h.do(t, func() {
		var err error
		ended, err = h.uc.Submit(context.Background())
		if err != nil {
			t.Errorf("submit: %v", err)
		}
	})
	if !ended.Locked || ended.EndReason != "submitted" || ended.Running {
		t.Fatalf("submit should lock the session: %+v", ended)
	}
	if !ended.HasFinal || ended.FinalSecondsRemaining != 450 || ended.TimeUsedSeconds != 150 {
		t.Fatalf("unexpected summary: final=%d used=%d", ended.FinalSecondsRemaining, ended.TimeUsedSeconds)
	}
	if ended.TimeUsedDisplay != "02:30" || ended.RemainingDisplay != "07:30" {
		t.Fatalf("unexpected displays: used=%q remaining=%q", ended.TimeUsedDisplay, ended.RemainingDisplay)
	}

	h.do(t, func() {
		if _, err := h.uc.Edit(context.Background(), sessiondto.EditInput{Text: "more"}); !errors.Is(err, apperrors.ErrSessionLocked) {
			t.Errorf("edit after submit: expected ErrSessionLocked, got %v", err)
		}
	})
}

func TestTimeUpThroughScheduler(t *testing.T) {
	h := newHarness(t)
	h.startRandom(t)

	h.clock.Advance(10 * time.Minute)
	h.do(t, h.scheduler.fire)
	var snap sessiondto.Snapshot
	h.do(t, func() { snap = h.uc.Snapshot(context.Background()) })
	if snap.EndReason != "timeup" || snap.FinalSecondsRemaining != 0 || snap.TimeUsedSeconds != 600 {
		t.Fatalf("unexpected time-up snapshot: %+v", snap)
	}

	h.do(t, func() {
		again, err := h.uc.Submit(context.Background())
		if err != nil || again.EndReason != "timeup" {
			t.Errorf("submit after time up must not change the outcome: %+v %v", again, err)
		}
	})
}

func TestStartRejectsBlankCustomPrompt(t *testing.T) {
	h := newHarness(t)
	h.do(t, func() {
		snap, err := h.uc.Start(context.Background(), sessiondto.StartInput{Mode: sessiondto.PromptModeCustom, Prompt: "   "})
		if !errors.Is(err, apperrors.ErrEmptyPrompt) {
			t.Errorf("expected ErrEmptyPrompt, got %v", err)
		}
		if snap.Screen != "landing" {
			t.Errorf("blank prompt must stay on landing, got %s", snap.Screen)
		}
	})
}

func TestStartCustomPrompt(t *testing.T) {
	h := newHarness(t)
	h.do(t, func() {
		if _, err := h.uc.Start(context.Background(), sessiondto.StartInput{Mode: sessiondto.PromptModeCustom, Prompt: "  Describe a door.  "}); err != nil {
			t.Errorf("start custom: %v", err)
		}
	})
	practice := h.waitScreen(t, "practice")
	if practice.Prompt != "Describe a door." || practice.PromptTitle != "Your prompt" {
		t.Fatalf("unexpected custom prompt: %+v", practice)
	}
}

func TestStartUnknownPromptIDAndMode(t *testing.T) {
	h := newHarness(t)
	h.do(t, func() {
		if _, err := h.uc.Start(context.Background(), sessiondto.StartInput{Mode: sessiondto.PromptModeByID, PromptID: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := h.uc.Start(context.Background(), sessiondto.StartInput{Mode: "poem"}); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCopyResponseStatus(t *testing.T) {
	h := newHarness(t)
	h.do(t, func() {
		if _, err := h.uc.CopyResponse(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
			t.Errorf("copy on landing: expected ErrNoActiveSession, got %v", err)
		}
	})

	h.startRandom(t)
	h.do(t, func() {
		if _, err := h.uc.Edit(context.Background(), sessiondto.EditInput{Text: "draft one"}); err != nil {
			t.Errorf("edit: %v", err)
		}
		out, err := h.uc.CopyResponse(context.Background())
		if err != nil || !out.Copied || out.Status != usecase.CopiedStatus || out.ClearAfter != 1500*time.Millisecond {
			t.Errorf("unexpected copy output: %+v %v", out, err)
		}
	})
	if h.clipboard.text != "draft one" {
		t.Fatalf("clipboard got %q", h.clipboard.text)
	}

	h.clipboard.err = apperrors.ErrClipboardUnavailable
	h.do(t, func() {
		out, err := h.uc.CopyResponse(context.Background())
		if err != nil || out.Copied || out.Status != usecase.CopyFailedStatus || out.ClearAfter != 2500*time.Millisecond {
			t.Errorf("unexpected failed copy output: %+v %v", out, err)
		}
	})
}

func TestResetReturnsToLanding(t *testing.T) {
	h := newHarness(t)
	h.startRandom(t)
	h.do(t, func() {
		snap := h.uc.Reset(context.Background())
		if snap.Screen != "landing" || snap.Prompt != "" || snap.Response != "" || snap.HasFinal {
			t.Errorf("reset should clear the session: %+v", snap)
		}
		if _, err := h.uc.Submit(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
			t.Errorf("submit on landing: expected ErrNoActiveSession, got %v", err)
		}
		h.uc.Close(context.Background())
	})
}

func TestMeasureAppliesPolicy(t *testing.T) {
	h := newHarness(t)
	h.do(t, func() {
		m := h.uc.Measure(context.Background(), strings.Repeat("alpha ", 340))
		if m.Words != 340 || !m.OverTarget || m.Clamped || m.ClampedWords != 340 {
			t.Errorf("unexpected metrics under the cap: %+v", m)
		}
		m = h.uc.Measure(context.Background(), strings.Repeat("alpha ", 351))
		if !m.Clamped || m.ClampedWords != 350 || m.HardCap != 350 {
			t.Errorf("unexpected metrics over the cap: %+v", m)
		}
	})
}
