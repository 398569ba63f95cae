package out

import (
	"context"

	"quill/internal/modules/prompt/domain"
)

type PromptStore interface {
	List(ctx context.Context) ([]domain.Prompt, error)
}

// PromptWriter persists user-authored prompts.
type PromptWriter interface {
	Save(ctx context.Context, prompt domain.Prompt) (string, error)
}

// Picker chooses an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}
