package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"quill/internal/platform/loop"
)

// invokeMsg carries loop work into Update, which makes the Bubble Tea
// program the single goroutine that touches session state.
type invokeMsg struct{ fn func() }

// ProgramPoster is a loop.Poster that delivers work to a tea.Program. Send
// blocks until Update reads the message, so a relay loop does the sending
// and keeps posts in order without blocking the poster.
type ProgramPoster struct {
	relay   *loop.Loop
	program *tea.Program
}

func NewProgramPoster() *ProgramPoster {
	return &ProgramPoster{relay: loop.New()}
}

func (p *ProgramPoster) Post(fn func()) {
	if fn == nil {
		return
	}
	p.relay.Post(func() { p.program.Send(invokeMsg{fn: fn}) })
}

// Run relays posted work to program until ctx is done. Work posted earlier
// is delivered first.
func (p *ProgramPoster) Run(ctx context.Context, program *tea.Program) error {
	p.program = program
	return p.relay.Run(ctx)
}
