package usecase_test

import (
	"context"
	"testing"

	"quill/internal/modules/prompt/domain"
	"quill/internal/modules/prompt/service"
	"quill/internal/modules/prompt/usecase"
)

type store []domain.Prompt

func (s store) List(context.Context) ([]domain.Prompt, error) { return s, nil }

func TestInteractorMapsDisplayTitle(t *testing.T) {
	t.Parallel()
	prompts := store{
		{ID: "untitled", Body: "First line wins\nsecond line", Origin: domain.OriginBuiltin},
		{ID: "titled", Title: "A title", Body: "body", Origin: domain.OriginVault, Tags: []string{"x"}},
	}
	uc := usecase.NewInteractor(service.NewPromptService(nil, nil, prompts))

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(list))
	}
	if list[0].ID != "titled" || list[0].Title != "A title" || list[0].Origin != "vault" {
		t.Fatalf("unexpected first prompt: %+v", list[0])
	}
	if list[1].Title != "First line wins" {
		t.Fatalf("expected title from body, got %q", list[1].Title)
	}

	got, err := uc.Get(context.Background(), "untitled")
	if err != nil || got.Body != "First line wins\nsecond line" {
		t.Fatalf("get: %+v %v", got, err)
	}

	custom, err := uc.Custom(context.Background(), "Describe a door.")
	if err != nil || custom.Origin != "custom" || custom.Title != "Your prompt" {
		t.Fatalf("custom: %+v %v", custom, err)
	}
}
