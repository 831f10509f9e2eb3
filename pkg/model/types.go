package model

import internalmodel "github.com/goliatone/go-reportform/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeInteger = internalmodel.FieldTypeInteger
	FieldTypeNumber  = internalmodel.FieldTypeNumber
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
	FieldTypeArray   = internalmodel.FieldTypeArray
	FieldTypeObject  = internalmodel.FieldTypeObject
)

const (
	ValidationRuleMin       = internalmodel.ValidationRuleMin
	ValidationRuleMax       = internalmodel.ValidationRuleMax
	ValidationRuleMaxLength = internalmodel.ValidationRuleMaxLength
	ValidationRuleNumeric   = internalmodel.ValidationRuleNumeric
)

const (
	WidgetText     = internalmodel.WidgetText
	WidgetNumber   = internalmodel.WidgetNumber
	WidgetTextarea = internalmodel.WidgetTextarea
)

type ValidationRule = internalmodel.ValidationRule
type Field = internalmodel.Field
type Section = internalmodel.Section
type FormModel = internalmodel.FormModel

// DefaultLabeler is the label function used when none is configured.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}
