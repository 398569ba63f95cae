package usecase

import (
	"context"

	"quill/internal/modules/prompt/domain"
	"quill/internal/modules/prompt/dto"
	promptin "quill/internal/modules/prompt/port/in"
	"quill/internal/modules/prompt/service"
)

type Interactor struct {
	svc *service.PromptService
}

func NewInteractor(svc *service.PromptService) promptin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PromptOutput, error) {
	prompts, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PromptOutput, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, toOutput(p))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.PromptOutput, error) {
	p, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.PromptOutput{}, err
	}
	return toOutput(p), nil
}

func (i *Interactor) Random(ctx context.Context) (dto.PromptOutput, error) {
	p, err := i.svc.Random(ctx)
	if err != nil {
		return dto.PromptOutput{}, err
	}
	return toOutput(p), nil
}

func (i *Interactor) Custom(ctx context.Context, text string) (dto.PromptOutput, error) {
	p, err := i.svc.Custom(ctx, text)
	if err != nil {
		return dto.PromptOutput{}, err
	}
	return toOutput(p), nil
}

func toOutput(p domain.Prompt) dto.PromptOutput {
	return dto.PromptOutput{
		ID:     p.ID,
		Title:  p.DisplayTitle(),
		Body:   p.Body,
		Tags:   p.Tags,
		Origin: string(p.Origin),
		Path:   p.Path,
	}
}

func (i *Interactor) Add(ctx context.Context, input dto.AddPromptInput) (dto.PromptOutput, error) {
	p, err := i.svc.Add(ctx, input.Title, input.Body, input.Tags)
	if err != nil {
		return dto.PromptOutput{}, err
	}
	return toOutput(p), nil
}
