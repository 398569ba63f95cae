package in

import (
	"context"

	"quill/internal/modules/prompt/dto"
	promptin "quill/internal/modules/prompt/port/in"
)

type CLIHandler struct {
	usecase promptin.Usecase
}

func NewCLIHandler(usecase promptin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PromptOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Show(ctx context.Context, id string) (dto.PromptOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) Random(ctx context.Context) (dto.PromptOutput, error) {
	return h.usecase.Random(ctx)
}

func (h CLIHandler) Add(ctx context.Context, input dto.AddPromptInput) (dto.PromptOutput, error) {
	return h.usecase.Add(ctx, input)
}
