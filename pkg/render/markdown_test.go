package render_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-reportform/pkg/render"
)

func TestMarkdownHTMLRendersAndSanitizes(t *testing.T) {
	out := render.MarkdownHTML("**Nodule** in the upper lobe\n\n- size 8mm\n\n<script>alert(1)</script>")

	if !strings.Contains(out, "<strong>Nodule</strong>") {
		t.Fatalf("expected bold markup, got %q", out)
	}
	if !strings.Contains(out, "<li>size 8mm</li>") {
		t.Fatalf("expected list item, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script tag must be stripped, got %q", out)
	}
}

func TestMarkdownHTMLEmpty(t *testing.T) {
	if got := render.MarkdownHTML("   "); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
