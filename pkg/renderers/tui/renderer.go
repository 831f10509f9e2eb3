package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/validation"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions: it
// prompts for every input of the form and returns the collected values.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	confirm           bool
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme: Theme{
			SectionPrefix: "==",
			ErrorPrefix:   "!",
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts section by section and serializes the answers. Values in
// opts prefill the prompts and Errors are shown next to their field.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if form.Title != "" {
		if err := r.driver.Info(ctx, form.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range opts.FormErrors {
		_ = r.driver.Info(ctx, r.errorLine(message))
	}

	state := NewState(opts.Values, opts.Errors)
	for _, field := range form.Fields {
		if !field.IsGroup() {
			if err := r.promptField(ctx, field, state); err != nil {
				return nil, err
			}
			continue
		}
		if err := r.driver.Info(ctx, r.sectionLine(sectionTitle(form, field))); err != nil {
			return nil, err
		}
		group := model.FormModel{Fields: field.Nested}
		for _, leaf := range group.Inputs() {
			if err := r.promptField(ctx, leaf, state); err != nil {
				return nil, err
			}
		}
	}

	if r.confirm {
		message := "Submit?"
		if form.SubmitLabel != "" {
			message = form.SubmitLabel + "?"
		}
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: true})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(form, values)
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	path := fieldPath(field)
	for _, message := range state.ErrorsFor(path) {
		_ = r.driver.Info(ctx, r.errorLine(displayLabel(field)+": "+message))
	}
	if len(field.Enum) > 0 {
		return r.promptEnum(ctx, field, state)
	}

	label := displayLabel(field)
	help := displayHelp(field)
	validate := validation.Validator(field)
	current := defaultStringValue(state, path, field.Default)

	for {
		var (
			response string
			err      error
		)
		if field.Widget == model.WidgetTextarea {
			response, err = r.driver.TextArea(ctx, TextAreaConfig{
				Message:   label,
				Default:   current,
				Help:      help,
				Validator: validate,
			})
		} else {
			response, err = r.driver.Input(ctx, InputConfig{
				Message:   label,
				Default:   current,
				Help:      help,
				Validator: validate,
			})
		}
		if err != nil {
			return err
		}

		// Drivers without validator support still get the same checks.
		if issue, ok := validation.Check(field, response); !ok {
			_ = r.driver.Info(ctx, r.errorLine(fmt.Sprintf("Invalid %s: %s", label, issue.Message)))
			current = response
			continue
		}
		return state.SetValue(path, strings.TrimSpace(response))
	}
}

func (r *Renderer) promptEnum(ctx context.Context, field model.Field, state *State) error {
	options := make([]string, 0, len(field.Enum))
	for _, value := range field.Enum {
		options = append(options, report.DisplayValue(value))
	}
	current := defaultStringValue(state, fieldPath(field), field.Default)
	defaultIdx := 0
	for i, option := range options {
		if option == current {
			defaultIdx = i
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Options:      options,
		DefaultIndex: defaultIdx,
		Help:         displayHelp(field),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("tui: invalid selection %d for %s", idx, fieldPath(field))
	}
	return state.SetValue(fieldPath(field), options[idx])
}

func (r *Renderer) serialize(form model.FormModel, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		flat := render.FlattenValues(values)
		encoded := url.Values{}
		for path, value := range flat {
			encoded.Set(path, report.DisplayValue(value))
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyText(form, values)), nil
	default:
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return out, nil
	}
}

func prettyText(form model.FormModel, values map[string]any) string {
	flat := render.FlattenValues(values)
	var b strings.Builder
	seen := make(map[string]struct{}, len(flat))
	for _, field := range form.Fields {
		if !field.IsGroup() {
			writeLine(&b, "", field, flat, seen)
			continue
		}
		fmt.Fprintf(&b, "%s\n", sectionTitle(form, field))
		group := model.FormModel{Fields: field.Nested}
		for _, leaf := range group.Inputs() {
			writeLine(&b, "  ", leaf, flat, seen)
		}
	}

	// Values added by a transformer have no field; list them last.
	var extra []string
	for path := range flat {
		if _, ok := seen[path]; !ok {
			extra = append(extra, path)
		}
	}
	sort.Strings(extra)
	for _, path := range extra {
		fmt.Fprintf(&b, "%s: %s\n", path, report.DisplayValue(flat[path]))
	}
	return b.String()
}

func writeLine(b *strings.Builder, indent string, field model.Field, flat map[string]any, seen map[string]struct{}) {
	path := fieldPath(field)
	seen[path] = struct{}{}
	fmt.Fprintf(b, "%s%s: %s\n", indent, displayLabel(field), report.DisplayValue(flat[path]))
}

func (r *Renderer) sectionLine(title string) string {
	if r.theme.SectionPrefix == "" {
		return title
	}
	return r.theme.SectionPrefix + " " + title
}

func (r *Renderer) errorLine(message string) string {
	if r.theme.ErrorPrefix == "" {
		return message
	}
	return r.theme.ErrorPrefix + " " + message
}

func sectionTitle(form model.FormModel, field model.Field) string {
	if section, ok := form.Section(field.Name); ok && section.Title != "" {
		return section.Title
	}
	return displayLabel(field)
}

func fieldPath(field model.Field) string {
	if field.Path != "" {
		return field.Path
	}
	return field.Name
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Placeholder
}

func defaultStringValue(state *State, path string, fallback any) string {
	if value, ok := state.GetValue(path); ok {
		return report.DisplayValue(value)
	}
	return report.DisplayValue(fallback)
}
