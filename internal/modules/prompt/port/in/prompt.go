package in

import (
	"context"

	"quill/internal/modules/prompt/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PromptOutput, error)
	Get(ctx context.Context, id string) (dto.PromptOutput, error)
	Random(ctx context.Context) (dto.PromptOutput, error)
	Custom(ctx context.Context, text string) (dto.PromptOutput, error)
	Add(ctx context.Context, input dto.AddPromptInput) (dto.PromptOutput, error)
}
