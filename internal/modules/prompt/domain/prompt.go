package domain

import (
	"fmt"
	"strings"
)

const SchemaVersion = 1

type Origin string

const (
	OriginBuiltin Origin = "builtin"
	OriginVault   Origin = "vault"
	OriginCustom  Origin = "custom"
)

// Prompt is the text a practice session asks the user to respond to.
type Prompt struct {
	ID     string
	Title  string
	Body   string
	Tags   []string
	Origin Origin
	Path   string
}

func (p Prompt) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("prompt %s has an empty body", p.ID)
	}
	return nil
}

// DisplayTitle falls back to the first line of the body.
func (p Prompt) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	first, _, _ := strings.Cut(strings.TrimSpace(p.Body), "\n")
	const max = 60
	if r := []rune(first); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return first
}
