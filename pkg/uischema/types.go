package uischema

import "strings"

// Store keeps the parsed operations from UI schema documents. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	operations map[string]Operation
}

// Operation describes the UI schema overrides for a specific OpenAPI operation.
type Operation struct {
	ID       string
	Source   string
	Form     FormConfig
	Sections []SectionConfig
	Fields   map[string]FieldConfig
}

// FormConfig captures page-level copy.
type FormConfig struct {
	Title       string            `json:"title" yaml:"title"`
	Subtitle    string            `json:"subtitle" yaml:"subtitle"`
	SubmitLabel string            `json:"submitLabel" yaml:"submitLabel"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

// SectionConfig titles and orders a top-level group of fields.
type SectionConfig struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Order       *int   `json:"order,omitempty" yaml:"order,omitempty"`
}

// FieldConfig customises how a single field is rendered.
type FieldConfig struct {
	Order        *int              `json:"order,omitempty" yaml:"order,omitempty"`
	Label        string            `json:"label,omitempty" yaml:"label,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder  string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Widget       string            `json:"widget,omitempty" yaml:"widget,omitempty"`
	Rows         int               `json:"rows,omitempty" yaml:"rows,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	OriginalPath string            `json:"-" yaml:"-"`
}

// NormalizeFieldPath trims whitespace and stray dots from a UI schema field key.
func NormalizeFieldPath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), ".")
	for strings.Contains(trimmed, "..") {
		trimmed = strings.ReplaceAll(trimmed, "..", ".")
	}
	return trimmed
}
