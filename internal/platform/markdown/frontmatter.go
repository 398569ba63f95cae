// Package markdown reads and writes notes that open with a YAML frontmatter
// block fenced by "---" lines.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

var ErrUnterminated = errors.New("invalid frontmatter: missing closing separator")

// DecodeFrontmatter unmarshals the frontmatter of content into meta and
// returns the body that follows it. A note without frontmatter leaves meta
// untouched and comes back whole. CRLF line endings are accepted.
func DecodeFrontmatter(content string, meta any) (string, error) {
	raw, body, found, err := split(content)
	if err != nil {
		return "", err
	}
	if !found || strings.TrimSpace(raw) == "" {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(raw), meta); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return body, nil
}

func split(content string) (raw, body string, found bool, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fence) {
		return "", content, false, nil
	}
	rest := strings.TrimPrefix(content, fence)
	switch {
	case strings.HasPrefix(rest, fence):
		return "", strings.TrimPrefix(rest, fence), true, nil
	case strings.Contains(rest, "\n"+fence):
		raw, body, _ = strings.Cut(rest, "\n"+fence)
		return raw, body, true, nil
	case strings.HasSuffix(rest, "\n---"):
		return strings.TrimSuffix(rest, "\n---"), "", true, nil
	}
	return "", "", false, ErrUnterminated
}

// RenderFrontmatter writes meta as YAML between fences followed by body.
func RenderFrontmatter(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}
