package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
)

const extensionNamespace = "x-reportform"

// Metadata keys the builder interprets on top of copying them through.
const (
	metaLabel       = "label"
	metaPlaceholder = "placeholder"
	metaWidget      = "widget"
	metaRows        = "rows"
	metaNumeric     = "numeric"
)

// Builder converts OpenAPI operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	return &Builder{opts: options.withDefaults()}
}

// Build transforms an OpenAPI operation into a FormModel. Properties come out
// sorted by name; presentation order is applied later by decorators.
func (b *Builder) Build(op pkgopenapi.Operation) (FormModel, error) {
	if err := validateOperation(op); err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Title:       op.Summary,
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    make(map[string]string),
	}
	mergeMetadata(form.Metadata, metadataFromExtensions(op.Extensions))
	mergeMetadata(form.Metadata, metadataFromExtensions(op.RequestBody.Extensions))

	fields, err := b.fieldsFromObject("", op.RequestBody)
	if err != nil {
		return FormModel{}, err
	}
	form.Fields = fields

	for i, field := range form.Fields {
		if !field.IsGroup() {
			continue
		}
		form.Sections = append(form.Sections, Section{
			ID:          field.Name,
			Title:       field.Label,
			Description: field.Description,
			Order:       i,
		})
	}

	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}
	return form, nil
}

func (b *Builder) fieldsFromObject(prefix string, schema pkgopenapi.Schema) ([]Field, error) {
	requiredSet := make(map[string]struct{}, len(schema.Required))
	for _, item := range schema.Required {
		requiredSet[item] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		_, required := requiredSet[name]
		field, err := b.field(prefix, name, schema.Properties[name], required)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (b *Builder) field(prefix, name string, schema pkgopenapi.Schema, required bool) (Field, error) {
	path := name
	if prefix != "" {
		path = prefix + "." + name
	}

	field := Field{
		Name:        name,
		Path:        path,
		Type:        mapType(schema.Type),
		Format:      schema.Format,
		Required:    required,
		Label:       b.opts.Labeler(name),
		Description: schema.Description,
		Default:     schema.Default,
	}
	if schema.Title != "" {
		field.Label = schema.Title
	}
	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}

	switch field.Type {
	case FieldTypeObject:
		nested, err := b.fieldsFromObject(path, schema)
		if err != nil {
			return Field{}, err
		}
		field.Nested = nested
	case FieldTypeArray:
		if schema.Items == nil {
			return Field{}, fmt.Errorf("model builder: array field %q missing items", path)
		}
		item, err := b.field(path, name+"Item", *schema.Items, false)
		if err != nil {
			return Field{}, err
		}
		field.Items = &item
	}

	applyValidations(&field, schema)
	field.Metadata = metadataFromExtensions(schema.Extensions)
	applyMetadataHints(&field)
	return field, nil
}

func mapType(schemaType string) FieldType {
	switch schemaType {
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	case "object":
		return FieldTypeObject
	default:
		return FieldTypeString
	}
}

func applyValidations(field *Field, schema pkgopenapi.Schema) {
	if schema.Minimum != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMin,
			Params: map[string]string{"value": formatFloat(*schema.Minimum)},
		})
	}
	if schema.Maximum != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMax,
			Params: map[string]string{"value": formatFloat(*schema.Maximum)},
		})
	}
	if schema.MaxLength != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MaxLength)},
		})
	}
}

// applyMetadataHints promotes well-known x-reportform keys onto the field.
func applyMetadataHints(field *Field) {
	if len(field.Metadata) == 0 {
		field.Metadata = nil
		return
	}
	if label := field.Metadata[metaLabel]; label != "" {
		field.Label = label
	}
	if placeholder := field.Metadata[metaPlaceholder]; placeholder != "" {
		field.Placeholder = placeholder
	}
	if widget := field.Metadata[metaWidget]; widget != "" {
		field.Widget = widget
	}
	if rows, err := strconv.Atoi(field.Metadata[metaRows]); err == nil && rows > 0 {
		field.Rows = rows
	}
	if field.Metadata[metaNumeric] == "true" {
		if field.Widget == "" {
			field.Widget = WidgetNumber
		}
		if _, ok := field.Rule(ValidationRuleNumeric); !ok {
			field.Validations = append(field.Validations, ValidationRule{Kind: ValidationRuleNumeric})
		}
	}
	if field.Widget == "" && (field.Type == FieldTypeNumber || field.Type == FieldTypeInteger) {
		field.Widget = WidgetNumber
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func metadataFromExtensions(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}

	result := make(map[string]string)
	for key, value := range ext {
		if key == extensionNamespace {
			nested, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for nestedKey, nestedValue := range nested {
				if str, ok := CanonicalizeExtensionValue(nestedValue); ok {
					result[nestedKey] = str
				}
			}
			continue
		}
		if strings.HasPrefix(key, extensionNamespace+"-") {
			trimmed := strings.TrimPrefix(key, extensionNamespace+"-")
			if str, ok := CanonicalizeExtensionValue(value); ok {
				result[trimmed] = str
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func mergeMetadata(target map[string]string, updates map[string]string) {
	if target == nil {
		return
	}
	for key, value := range updates {
		target[key] = value
	}
}

// CanonicalizeExtensionValue flattens scalar extension values into strings.
// Maps, slices and empty strings are rejected.
func CanonicalizeExtensionValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return formatFloat(v), true
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		return "", false
	}
}
