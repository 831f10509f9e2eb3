package model

import "strings"

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMaxLength = "maxLength"
	ValidationRuleNumeric   = "numeric"
)

// Widgets understood by the bundled renderers. An empty widget renders a
// single-line text input.
const (
	WidgetText     = "text"
	WidgetNumber   = "number"
	WidgetTextarea = "textarea"
)

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds and length limits encode their threshold in Params["value"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models an individual input inside a generated form. Path is the dotted
// location of the value inside the submitted document and doubles as the HTML
// input name.
type Field struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Widget      string            `json:"widget,omitempty"`
	Rows        int               `json:"rows,omitempty"`
	Order       int               `json:"order,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IsGroup reports whether the field only groups nested inputs.
func (f Field) IsGroup() bool {
	return f.Type == FieldTypeObject && len(f.Nested) > 0
}

// Rule returns the first validation rule of the given kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// Section titles a top-level group of fields. ID matches the group field name.
type Section struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Title       string            `json:"title,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	SubmitLabel string            `json:"submitLabel,omitempty"`
	Fields      []Field           `json:"fields"`
	Sections    []Section         `json:"sections,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Walk visits every field depth first. Returning false from fn stops the walk.
func (m *FormModel) Walk(fn func(field *Field) bool) {
	if m == nil || fn == nil {
		return
	}
	walkFields(m.Fields, fn)
}

func walkFields(fields []Field, fn func(field *Field) bool) bool {
	for i := range fields {
		if !fn(&fields[i]) {
			return false
		}
		if !walkFields(fields[i].Nested, fn) {
			return false
		}
	}
	return true
}

// Lookup returns the field stored at the dotted path.
func (m *FormModel) Lookup(path string) (*Field, bool) {
	if m == nil || path == "" {
		return nil, false
	}
	fields := m.Fields
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		var next *Field
		for j := range fields {
			if fields[j].Name == segment {
				next = &fields[j]
				break
			}
		}
		if next == nil {
			return nil, false
		}
		if i == len(segments)-1 {
			return next, true
		}
		fields = next.Nested
	}
	return nil, false
}

// Inputs returns the leaf fields in render order.
func (m *FormModel) Inputs() []Field {
	var out []Field
	m.Walk(func(field *Field) bool {
		if !field.IsGroup() {
			out = append(out, *field)
		}
		return true
	})
	return out
}

// Section returns the section metadata registered for id.
func (m *FormModel) Section(id string) (Section, bool) {
	if m == nil {
		return Section{}, false
	}
	for _, section := range m.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

// Clone returns a deep copy so callers can decorate a shared model safely.
func (m FormModel) Clone() FormModel {
	out := m
	out.Fields = cloneFields(m.Fields)
	if m.Sections != nil {
		out.Sections = append([]Section(nil), m.Sections...)
	}
	out.Metadata = cloneStrings(m.Metadata)
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = cloneField(field)
	}
	return out
}

func cloneField(field Field) Field {
	out := field
	out.Nested = cloneFields(field.Nested)
	if field.Items != nil {
		items := cloneField(*field.Items)
		out.Items = &items
	}
	if field.Enum != nil {
		out.Enum = append([]any(nil), field.Enum...)
	}
	if field.Validations != nil {
		out.Validations = make([]ValidationRule, len(field.Validations))
		for i, rule := range field.Validations {
			out.Validations[i] = ValidationRule{Kind: rule.Kind, Params: cloneStrings(rule.Params)}
		}
	}
	out.Metadata = cloneStrings(field.Metadata)
	return out
}

func cloneStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
