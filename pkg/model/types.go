package model

import internalmodel "github.com/goliatone/go-predictform/internal/model"

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

type ValidationRule = internalmodel.ValidationRule
type Field = internalmodel.Field
type FormModel = internalmodel.FormModel

const (
	ValidationRuleMin  = internalmodel.ValidationRuleMin
	ValidationRuleMax  = internalmodel.ValidationRuleMax
	ValidationRuleStep = internalmodel.ValidationRuleStep
)

// DefaultLabeler exposes the built-in label generator.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}
