package markdown_test

import (
	"errors"
	"strings"
	"testing"

	"quill/internal/platform/markdown"
)

type noteMeta struct {
	ID            string   `yaml:"id"`
	SchemaVersion int      `yaml:"schema_version,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
}

func TestDecodeFrontmatter(t *testing.T) {
	t.Parallel()
	var meta noteMeta
	body, err := markdown.DecodeFrontmatter("---\nid: rain\ntags: [a, b]\n---\n\nWrite about rain.\n", &meta)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.ID != "rain" || len(meta.Tags) != 2 || meta.Tags[1] != "b" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if body != "\nWrite about rain.\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDecodeFrontmatterCRLF(t *testing.T) {
	t.Parallel()
	var meta noteMeta
	body, err := markdown.DecodeFrontmatter("---\r\nid: door\r\n---\r\nDescribe a door.\r\n", &meta)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.ID != "door" || body != "Describe a door.\n" {
		t.Fatalf("unexpected result %+v %q", meta, body)
	}
}

func TestDecodeFrontmatterEdgeFences(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		content string
		id      string
		body    string
	}{
		"no header":     {content: "Just a prompt.", body: "Just a prompt."},
		"empty header":  {content: "---\n---\nBody.", body: "Body."},
		"header only":   {content: "---\nid: lone\n---", id: "lone"},
		"fence in body": {content: "---\nid: x\n---\nA\n---\nB\n", id: "x", body: "A\n---\nB\n"},
	}
	for name, tc := range cases {
		var meta noteMeta
		body, err := markdown.DecodeFrontmatter(tc.content, &meta)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if meta.ID != tc.id || body != tc.body {
			t.Fatalf("%s: got id %q body %q", name, meta.ID, body)
		}
	}
}

func TestDecodeFrontmatterUnterminated(t *testing.T) {
	t.Parallel()
	var meta noteMeta
	if _, err := markdown.DecodeFrontmatter("---\ntitle: half written\n", &meta); !errors.Is(err, markdown.ErrUnterminated) {
		t.Fatalf("expected ErrUnterminated, got %v", err)
	}
}

func TestDecodeFrontmatterTypeMismatch(t *testing.T) {
	t.Parallel()
	var meta noteMeta
	if _, err := markdown.DecodeFrontmatter("---\ntags: {a: 1}\n---\nx", &meta); err == nil {
		t.Fatalf("a map cannot decode into a tag list")
	}
}

func TestRenderThenDecode(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter(noteMeta{ID: "door", SchemaVersion: 1}, "Describe a door.\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(rendered, "---\n") || !strings.HasSuffix(rendered, "\nDescribe a door.\n") {
		t.Fatalf("unexpected rendering %q", rendered)
	}
	var meta noteMeta
	body, err := markdown.DecodeFrontmatter(rendered, &meta)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.ID != "door" || meta.SchemaVersion != 1 || strings.TrimSpace(body) != "Describe a door." {
		t.Fatalf("unexpected decode result %+v %q", meta, body)
	}
}
