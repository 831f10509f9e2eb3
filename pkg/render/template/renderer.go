package template

import (
	"io"
)

// TemplateRenderer executes named or inline templates. Data is converted to
// plain maps/slices through its JSON form before execution, so view structs
// need json tags matching the names the templates use.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
