package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	sessiondto "quill/internal/modules/session/dto"
	apperrors "quill/internal/platform/errors"
	landingview "quill/internal/ui/views/landing"
)

type fakeSession struct {
	snap    sessiondto.Snapshot
	edits   []string
	submits int
	resets  int
	closed  bool
	copy    sessiondto.CopyOutput
}

func newFakeSession() *fakeSession {
	return &fakeSession{snap: sessiondto.Snapshot{Screen: "landing", TotalSeconds: 600, SoftTarget: 300, HardCap: 350}}
}

func (f *fakeSession) begin() (sessiondto.Snapshot, error) {
	f.snap.Screen = "requesting"
	f.snap.SessionID = "s1"
	return f.snap, nil
}

func (f *fakeSession) StartRandom(context.Context) (sessiondto.Snapshot, error) { return f.begin() }

func (f *fakeSession) StartCustom(_ context.Context, prompt string) (sessiondto.Snapshot, error) {
	if strings.TrimSpace(prompt) == "" {
		return f.snap, apperrors.ErrEmptyPrompt
	}
	return f.begin()
}

func (f *fakeSession) StartByID(context.Context, string) (sessiondto.Snapshot, error) { return f.begin() }

func (f *fakeSession) Edit(_ context.Context, text string) (sessiondto.Snapshot, error) {
	f.edits = append(f.edits, text)
	f.snap.Response = text
	return f.snap, nil
}

func (f *fakeSession) Submit(context.Context) (sessiondto.Snapshot, error) {
	f.submits++
	f.snap.Locked = true
	f.snap.Running = false
	f.snap.EndReason = "submitted"
	return f.snap, nil
}

func (f *fakeSession) Reset(context.Context) sessiondto.Snapshot {
	f.resets++
	f.snap = sessiondto.Snapshot{Screen: "landing"}
	return f.snap
}

func (f *fakeSession) TogglePreview(context.Context) sessiondto.Snapshot { return f.snap }

func (f *fakeSession) CopyResponse(context.Context) (sessiondto.CopyOutput, error) {
	return f.copy, nil
}

func (f *fakeSession) Snapshot(context.Context) sessiondto.Snapshot { return f.snap }

func (f *fakeSession) Close(context.Context) { f.closed = true }

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// activate plays the loop delivering a finished capture request.
func activate(t *testing.T, m Model, f *fakeSession) Model {
	t.Helper()
	return send(t, m, invokeMsg{fn: func() {
		f.snap.Screen = "practice"
		f.snap.Running = true
		f.snap.Prompt = "Write about rain."
	}})
}

func TestStartTypeAndSubmit(t *testing.T) {
	f := newFakeSession()
	m := NewModel(f)

	m = send(t, m, press("enter"))
	if m.snap.Screen != "requesting" {
		t.Fatalf("enter should start a session, screen=%s", m.snap.Screen)
	}
	m = activate(t, m, f)
	if m.snap.Screen != "practice" {
		t.Fatalf("loop work should refresh the snapshot, screen=%s", m.snap.Screen)
	}

	m = send(t, m, press("h"))
	m = send(t, m, press("i"))
	if len(f.edits) != 2 || f.edits[1] != "hi" {
		t.Fatalf("typing should forward edits, got %v", f.edits)
	}

	m = send(t, m, press("ctrl+s"))
	if f.submits != 1 || !m.snap.Locked {
		t.Fatalf("ctrl+s should submit, submits=%d locked=%v", f.submits, m.snap.Locked)
	}
	if !strings.Contains(m.View(), "Submitted. Response locked.") {
		t.Fatalf("locked banner missing from view")
	}

	m = send(t, m, press("x"))
	if len(f.edits) != 2 {
		t.Fatalf("a locked session must not accept edits, got %v", f.edits)
	}
}

func TestCustomPromptValidation(t *testing.T) {
	f := newFakeSession()
	m := NewModel(f)

	m = send(t, m, press("c"))
	if !m.landing.CustomOpen() {
		t.Fatalf("c should open the custom prompt panel")
	}
	m = send(t, m, press("ctrl+s"))
	if m.snap.Screen != "landing" || !strings.Contains(m.View(), landingview.EmptyPromptMessage) {
		t.Fatalf("blank custom prompt should stay on landing with a message")
	}

	m = send(t, m, press("esc"))
	if m.landing.CustomOpen() || strings.Contains(m.View(), landingview.EmptyPromptMessage) {
		t.Fatalf("esc should close the panel and clear the message")
	}
}

func TestCopyStatusClearsOnlyForLatestCopy(t *testing.T) {
	f := newFakeSession()
	f.copy = sessiondto.CopyOutput{Copied: true, Status: "Copied.", ClearAfter: 1500 * time.Millisecond}
	m := NewModel(f)
	m = send(t, m, press("enter"))
	m = activate(t, m, f)

	m = send(t, m, press("ctrl+y"))
	m = send(t, m, press("ctrl+y"))
	if m.copyStatus != "Copied." || m.copyEpoch != 2 {
		t.Fatalf("unexpected copy state %q epoch=%d", m.copyStatus, m.copyEpoch)
	}
	m = send(t, m, clearCopyMsg{epoch: 1})
	if m.copyStatus == "" {
		t.Fatalf("a stale clear must not drop the newer status")
	}
	m = send(t, m, clearCopyMsg{epoch: 2})
	if m.copyStatus != "" {
		t.Fatalf("latest clear should drop the status")
	}
}

func TestRestartAndQuitCloseSession(t *testing.T) {
	f := newFakeSession()
	m := NewModel(f)
	m = send(t, m, press("enter"))
	m = send(t, m, press("esc"))
	if f.resets != 1 || m.snap.Screen != "landing" {
		t.Fatalf("esc while requesting should reset, resets=%d screen=%s", f.resets, m.snap.Screen)
	}

	_, cmd := m.Update(press("q"))
	if !f.closed || cmd == nil {
		t.Fatalf("quit should close the session and return tea.Quit")
	}
}

func TestPaletteCommands(t *testing.T) {
	f := newFakeSession()
	m := NewModel(f)
	m = send(t, m, press(":"))
	if !m.palette.Visible() {
		t.Fatalf(": should open the palette")
	}
	m = send(t, m, press("esc"))

	next, _ := m.executePalette("start rain")
	m = next.(Model)
	if m.snap.Screen != "requesting" {
		t.Fatalf("palette start should begin a session, screen=%s", m.snap.Screen)
	}
	next, _ = m.executePalette("dance")
	if got := next.(Model).status; got != "unknown command: dance" {
		t.Fatalf("unexpected status %q", got)
	}
}
