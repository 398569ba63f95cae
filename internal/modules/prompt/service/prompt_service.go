package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"quill/internal/modules/prompt/domain"
	promptout "quill/internal/modules/prompt/port/out"
	apperrors "quill/internal/platform/errors"
	"quill/internal/platform/slug"
)

type PromptService struct {
	stores []promptout.PromptStore
	writer promptout.PromptWriter
	picker promptout.Picker
}

// NewPromptService merges stores in order; a later store wins on ID clashes.
// writer may be nil, in which case Add fails.
func NewPromptService(picker promptout.Picker, writer promptout.PromptWriter, stores ...promptout.PromptStore) *PromptService {
	if picker == nil {
		picker = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PromptService{stores: stores, writer: writer, picker: picker}
}

func (s *PromptService) List(ctx context.Context) ([]domain.Prompt, error) {
	byID := map[string]domain.Prompt{}
	for _, store := range s.stores {
		if store == nil {
			continue
		}
		prompts, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range prompts {
			byID[p.ID] = p
		}
	}
	out := make([]domain.Prompt, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *PromptService) Get(ctx context.Context, id string) (domain.Prompt, error) {
	prompts, err := s.List(ctx)
	if err != nil {
		return domain.Prompt{}, err
	}
	for _, p := range prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Prompt{}, fmt.Errorf("prompt %q: %w", id, apperrors.ErrNotFound)
}

func (s *PromptService) Random(ctx context.Context) (domain.Prompt, error) {
	prompts, err := s.List(ctx)
	if err != nil {
		return domain.Prompt{}, err
	}
	if len(prompts) == 0 {
		return domain.Prompt{}, apperrors.ErrNoPrompts
	}
	return prompts[s.picker.IntN(len(prompts))], nil
}

// Custom turns user-supplied text into a prompt. Surrounding whitespace is
// dropped; blank text is rejected.
func (s *PromptService) Custom(_ context.Context, text string) (domain.Prompt, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.Prompt{}, apperrors.ErrEmptyPrompt
	}
	p := domain.Prompt{Body: trimmed, Origin: domain.OriginCustom}
	p.ID = "custom-" + slug.Make(p.DisplayTitle())
	p.Title = "Your prompt"
	return p, nil
}

// Add saves a new prompt through the writer. The ID is derived from the
// title, or from the body when no title is given.
func (s *PromptService) Add(ctx context.Context, title, body string, tags []string) (domain.Prompt, error) {
	if s.writer == nil {
		return domain.Prompt{}, fmt.Errorf("no prompt directory configured: %w", apperrors.ErrInvalidInput)
	}
	p := domain.Prompt{
		Title:  strings.TrimSpace(title),
		Body:   strings.TrimSpace(body),
		Tags:   tags,
		Origin: domain.OriginVault,
	}
	if p.Body == "" {
		return domain.Prompt{}, apperrors.ErrEmptyPrompt
	}
	p.ID = slug.Make(p.DisplayTitle())
	if existing, err := s.Get(ctx, p.ID); err == nil {
		return domain.Prompt{}, fmt.Errorf("prompt %q already exists at %s: %w", p.ID, existing.Path, apperrors.ErrInvalidInput)
	}
	path, err := s.writer.Save(ctx, p)
	if err != nil {
		return domain.Prompt{}, err
	}
	p.Path = path
	return p, nil
}
