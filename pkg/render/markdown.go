package render

import (
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	markdownPolicyOnce sync.Once
	markdownPolicy     *bluemonday.Policy
)

// MarkdownHTML converts model-generated markdown (image analysis output) into
// sanitized HTML that templates may emit with |safe.
func MarkdownHTML(source string) string {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return ""
	}
	// gomarkdown parsers are single use.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	unsafe := markdown.ToHTML([]byte(trimmed), p, renderer)
	return strings.TrimSpace(string(markdownSanitizer().SanitizeBytes(unsafe)))
}

func markdownSanitizer() *bluemonday.Policy {
	markdownPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		markdownPolicy = policy
	})
	return markdownPolicy
}
