package in

import (
	"context"

	sessiondto "quill/internal/modules/session/dto"
	sessionin "quill/internal/modules/session/port/in"
)

// CLIHandler is the driving adapter shared by the TUI and the headless run
// command. Every call must happen on the event loop.
type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) StartRandom(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Mode: sessiondto.PromptModeRandom})
}

func (h CLIHandler) StartCustom(ctx context.Context, prompt string) (sessiondto.Snapshot, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Mode: sessiondto.PromptModeCustom, Prompt: prompt})
}

func (h CLIHandler) StartByID(ctx context.Context, promptID string) (sessiondto.Snapshot, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Mode: sessiondto.PromptModeByID, PromptID: promptID})
}

func (h CLIHandler) Edit(ctx context.Context, text string) (sessiondto.Snapshot, error) {
	return h.usecase.Edit(ctx, sessiondto.EditInput{Text: text})
}

func (h CLIHandler) Submit(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Submit(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) sessiondto.Snapshot {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) TogglePreview(ctx context.Context) sessiondto.Snapshot {
	return h.usecase.TogglePreview(ctx)
}

func (h CLIHandler) CopyResponse(ctx context.Context) (sessiondto.CopyOutput, error) {
	return h.usecase.CopyResponse(ctx)
}

func (h CLIHandler) Snapshot(ctx context.Context) sessiondto.Snapshot {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Measure(ctx context.Context, text string) sessiondto.Metrics {
	return h.usecase.Measure(ctx, text)
}

func (h CLIHandler) Subscribe(fn func(sessiondto.Snapshot)) func() {
	return h.usecase.Subscribe(fn)
}

func (h CLIHandler) Close(ctx context.Context) {
	h.usecase.Close(ctx)
}

// Start begins a session using the prompt selected by input.Mode.
func (h CLIHandler) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.Snapshot, error) {
	return h.usecase.Start(ctx, input)
}
