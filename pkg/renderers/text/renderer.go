// Package text renders forms and reports as plain text for terminals and
// logs.
package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
)

// Name is the registry key of the text renderer.
const Name = "text"

// Renderer writes an outline of the form (with any prefilled values and
// errors) and the report viewer as indented text.
type Renderer struct {
	indent string
}

var (
	_ render.Renderer       = (*Renderer)(nil)
	_ render.ReportRenderer = (*Renderer)(nil)
)

// Option configures the text renderer.
type Option func(*Renderer)

// WithIndent sets the prefix used for nested lines. Defaults to two spaces.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs the text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{indent: "  "}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render prints the form outline followed by the report when one is set.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	var b strings.Builder
	if form.Title != "" {
		writeHeading(&b, form.Title, "=")
	}
	for _, message := range options.FormErrors {
		fmt.Fprintf(&b, "! %s\n", message)
	}

	for _, field := range form.Fields {
		if !field.IsGroup() {
			r.writeField(&b, "", field, options)
			continue
		}
		title := field.Label
		if section, ok := form.Section(field.Name); ok && section.Title != "" {
			title = section.Title
		}
		b.WriteString("\n")
		writeHeading(&b, title, "-")
		group := model.FormModel{Fields: field.Nested}
		for _, leaf := range group.Inputs() {
			r.writeField(&b, r.indent, leaf, options)
		}
	}

	if options.Report != nil {
		b.WriteString("\n")
		r.writeReport(&b, *options.Report)
	}
	return []byte(b.String()), nil
}

// RenderReport prints the report viewer on its own.
func (r *Renderer) RenderReport(_ context.Context, rep report.Report) ([]byte, error) {
	var b strings.Builder
	r.writeReport(&b, rep)
	return []byte(b.String()), nil
}

func (r *Renderer) writeField(b *strings.Builder, indent string, field model.Field, options render.RenderOptions) {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	value := ""
	if raw, ok := options.Values[field.Path]; ok {
		value = report.DisplayValue(raw)
	}
	fmt.Fprintf(b, "%s%s: %s\n", indent, label, value)
	for _, message := range options.Errors[field.Path] {
		fmt.Fprintf(b, "%s%s! %s\n", indent, r.indent, message)
	}
}

func (r *Renderer) writeReport(b *strings.Builder, rep report.Report) {
	writeHeading(b, report.Title, "=")
	fmt.Fprintf(b, "Report ID: %s\n", rep.ReportID)
	fmt.Fprintf(b, "Generated: %s\n", rep.GeneratedAt)

	b.WriteString("\n")
	writeHeading(b, "Summary", "-")
	for _, finding := range rep.Summary.KeyFindings {
		fmt.Fprintf(b, "%s* %s\n", r.indent, finding)
	}

	for _, section := range rep.Sections {
		b.WriteString("\n")
		writeHeading(b, section.Title, "-")
		r.writeEntries(b, r.indent, section.Data)
		if section.HasAdditionalInfo() {
			fmt.Fprintf(b, "%sAdditional Information\n", r.indent)
			r.writeEntries(b, r.indent+r.indent, section.AdditionalInfo)
		}
	}
}

func (r *Renderer) writeEntries(b *strings.Builder, indent string, fields report.Fields) {
	for _, entry := range fields {
		fmt.Fprintf(b, "%s%s: %s\n", indent, entry.Label(), entry.Display())
	}
}

func writeHeading(b *strings.Builder, title, underline string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(underline, len([]rune(title))))
	b.WriteString("\n")
}
