package out

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"quill/internal/modules/prompt/adapter/out/builtin"
	"quill/internal/modules/prompt/domain"
	promptout "quill/internal/modules/prompt/port/out"
	"quill/internal/platform/markdown"
)

// promptMeta is the frontmatter of a prompt note.
type promptMeta struct {
	SchemaVersion int     `yaml:"schema_version"`
	ID            string  `yaml:"id"`
	Title         string  `yaml:"title,omitempty"`
	Tags          tagList `yaml:"tags,omitempty,flow"`
}

// tagList accepts either a YAML sequence or a single scalar.
type tagList []string

func (t *tagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(node.Value); v != "" {
			*t = tagList{v}
		}
		return nil
	case yaml.SequenceNode:
		var tags []string
		if err := node.Decode(&tags); err != nil {
			return err
		}
		*t = tags
		return nil
	}
	return fmt.Errorf("line %d: tags must be a list", node.Line)
}

// FSPromptStore reads prompt notes (*.md with YAML frontmatter) from the root
// of an fs.FS. Notes that cannot be read or parsed are skipped with a
// warning so one bad file never hides the rest.
type FSPromptStore struct {
	fsys   fs.FS
	origin domain.Origin
	base   string
	logger *zap.Logger
}

func NewFSPromptStore(fsys fs.FS, origin domain.Origin, base string, logger *zap.Logger) *FSPromptStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSPromptStore{fsys: fsys, origin: origin, base: base, logger: logger}
}

// NewBuiltinPromptStore serves the prompts compiled into the binary.
func NewBuiltinPromptStore() promptout.PromptStore {
	return NewFSPromptStore(builtin.FS(), domain.OriginBuiltin, "builtin:", nil)
}

func (s *FSPromptStore) List(ctx context.Context) ([]domain.Prompt, error) {
	matches, err := fs.Glob(s.fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("glob prompt notes: %w", err)
	}
	sort.Strings(matches)

	out := make([]domain.Prompt, 0, len(matches))
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			s.logger.Warn("skip unreadable prompt note", zap.String("file", s.base+name), zap.Error(err))
			continue
		}
		prompt, err := parsePrompt(string(content), name, s.origin)
		if err != nil {
			s.logger.Warn("skip malformed prompt note", zap.String("file", s.base+name), zap.Error(err))
			continue
		}
		prompt.Path = s.base + name
		out = append(out, prompt)
	}
	return out, nil
}

func parsePrompt(content, name string, origin domain.Origin) (domain.Prompt, error) {
	var meta promptMeta
	body, err := markdown.DecodeFrontmatter(content, &meta)
	if err != nil {
		return domain.Prompt{}, err
	}
	if meta.SchemaVersion > domain.SchemaVersion {
		return domain.Prompt{}, fmt.Errorf("schema_version %d is newer than %d", meta.SchemaVersion, domain.SchemaVersion)
	}
	prompt := domain.Prompt{
		ID:     strings.TrimSpace(meta.ID),
		Title:  strings.TrimSpace(meta.Title),
		Body:   strings.TrimSpace(body),
		Tags:   []string(meta.Tags),
		Origin: origin,
	}
	if prompt.ID == "" {
		prompt.ID = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if err := prompt.Validate(); err != nil {
		return domain.Prompt{}, err
	}
	return prompt, nil
}

func toFrontmatter(prompt domain.Prompt) promptMeta {
	return promptMeta{
		SchemaVersion: domain.SchemaVersion,
		ID:            prompt.ID,
		Title:         prompt.Title,
		Tags:          tagList(prompt.Tags),
	}
}
