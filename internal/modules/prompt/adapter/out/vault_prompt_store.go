package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"quill/internal/modules/prompt/domain"
	"quill/internal/platform/markdown"
)

// VaultPromptStore keeps user prompts as markdown notes in a directory. A
// missing directory holds no prompts.
type VaultPromptStore struct {
	dir    string
	logger *zap.Logger
}

func NewVaultPromptStore(dir string, logger *zap.Logger) *VaultPromptStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VaultPromptStore{dir: dir, logger: logger}
}

func (s *VaultPromptStore) Dir() string { return s.dir }

func (s *VaultPromptStore) List(ctx context.Context) ([]domain.Prompt, error) {
	if s.dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	prompts, err := NewFSPromptStore(os.DirFS(s.dir), domain.OriginVault, "", s.logger).List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range prompts {
		prompts[i].Path = filepath.Join(s.dir, prompts[i].Path)
	}
	return prompts, nil
}

func (s *VaultPromptStore) Save(_ context.Context, prompt domain.Prompt) (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("prompt directory is not configured")
	}
	if err := prompt.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create prompt directory: %w", err)
	}
	rendered, err := markdown.RenderFrontmatter(toFrontmatter(prompt), prompt.Body+"\n")
	if err != nil {
		return "", err
	}
	notePath := filepath.Join(s.dir, prompt.ID+".md")
	f, err := os.OpenFile(notePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create prompt note: %w", err)
	}
	if _, err := f.WriteString(rendered); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write prompt note: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close prompt note: %w", err)
	}
	return notePath, nil
}
