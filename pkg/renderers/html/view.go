package html

import (
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
)

// ReportTitle heads every rendered report.
const ReportTitle = report.Title

// The template engine sees these views through their JSON form, so slices
// carry anything whose order matters.

type formView struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Action      string        `json:"action"`
	Method      string        `json:"method"`
	SubmitLabel string        `json:"submit_label"`
	Loading     bool          `json:"loading"`
	FormErrors  []string      `json:"form_errors"`
	Sections    []sectionView `json:"sections"`
}

type sectionView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Fields      []fieldView `json:"fields"`
}

type fieldView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	InputType   string   `json:"input_type"`
	Multiline   bool     `json:"multiline"`
	Rows        int      `json:"rows"`
	Required    bool     `json:"required"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Description string   `json:"description"`
	Min         string   `json:"min"`
	Max         string   `json:"max"`
	MaxLength   string   `json:"max_length"`
	Errors      []string `json:"errors"`
}

type reportView struct {
	Title       string              `json:"title"`
	ReportID    string              `json:"report_id"`
	GeneratedAt string              `json:"generated_at"`
	KeyFindings []string            `json:"key_findings"`
	Sections    []reportSectionView `json:"sections"`
}

type reportSectionView struct {
	Key            string      `json:"key"`
	Title          string      `json:"title"`
	Data           []entryView `json:"data"`
	AdditionalInfo []entryView `json:"additional_info"`
}

type entryView struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type analysisView struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	ResultHTML  string `json:"result_html"`
	Error       string `json:"error"`
}

// buildSections groups the leaf inputs under their top-level object field.
// Leaves sitting directly on the form share an untitled section.
func buildSections(form model.FormModel, options render.RenderOptions) []sectionView {
	var (
		sections []sectionView
		loose    sectionView
	)
	for _, field := range form.Fields {
		if !field.IsGroup() {
			loose.Fields = append(loose.Fields, newFieldView(field, options))
			continue
		}
		section := sectionView{ID: field.Name, Title: field.Label, Description: field.Description}
		if meta, ok := form.Section(field.Name); ok {
			section.Title = meta.Title
			if meta.Description != "" {
				section.Description = meta.Description
			}
		}
		group := model.FormModel{Fields: field.Nested}
		for _, leaf := range group.Inputs() {
			section.Fields = append(section.Fields, newFieldView(leaf, options))
		}
		sections = append(sections, section)
	}
	if len(loose.Fields) > 0 {
		sections = append([]sectionView{loose}, sections...)
	}
	return sections
}

func newFieldView(field model.Field, options render.RenderOptions) fieldView {
	path := field.Path
	if path == "" {
		path = field.Name
	}
	view := fieldView{
		ID:          "field-" + path,
		Name:        path,
		Label:       field.Label,
		InputType:   model.WidgetText,
		Required:    field.Required,
		Placeholder: field.Placeholder,
		Description: field.Description,
		Errors:      options.Errors[path],
	}
	if value, ok := options.Values[path]; ok {
		view.Value = report.DisplayValue(value)
	}

	switch field.Widget {
	case model.WidgetTextarea:
		view.Multiline = true
		view.Rows = field.Rows
		if view.Rows <= 0 {
			view.Rows = 2
		}
	case model.WidgetNumber:
		view.InputType = model.WidgetNumber
	}
	if rule, ok := field.Rule(model.ValidationRuleMin); ok {
		view.Min = rule.Params["value"]
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok {
		view.Max = rule.Params["value"]
	}
	if rule, ok := field.Rule(model.ValidationRuleMaxLength); ok {
		view.MaxLength = rule.Params["value"]
	}
	return view
}

func newReportView(rep report.Report) reportView {
	view := reportView{
		Title:       ReportTitle,
		ReportID:    rep.ReportID,
		GeneratedAt: rep.GeneratedAt,
		KeyFindings: rep.Summary.KeyFindings,
	}
	for _, section := range rep.Sections {
		view.Sections = append(view.Sections, reportSectionView{
			Key:            section.Key,
			Title:          section.Title,
			Data:           entries(section.Data),
			AdditionalInfo: entries(section.AdditionalInfo),
		})
	}
	return view
}

func entries(fields report.Fields) []entryView {
	out := make([]entryView, 0, len(fields))
	for _, entry := range fields {
		out = append(out, entryView{Key: entry.Key, Value: entry.Value})
	}
	return out
}
