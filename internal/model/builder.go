package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
)

const extensionNamespace = "x-formgen"

// Metadata keys recognised on fields and forms.
const (
	metaLabel       = "label"
	metaPlaceholder = "placeholder"
	metaOrder       = "order"
	metaStep        = "step"
)

// Builder converts OpenAPI operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	return &Builder{opts: opts}
}

// Build transforms an OpenAPI operation into a FormModel. Only the request
// body contributes fields; responses are left to the caller.
func (b *Builder) Build(op pkgopenapi.Operation) (FormModel, error) {
	if err := validateOperation(op); err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    make(map[string]string),
	}
	mergeMetadata(form.Metadata, metadataFromExtensions(op.Extensions))
	mergeMetadata(form.Metadata, metadataFromExtensions(op.RequestBody.Extensions))

	fields, err := b.fieldsFromSchema("", op.RequestBody, true)
	if err != nil {
		return FormModel{}, err
	}
	form.Fields = fields

	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}
	return form, nil
}

func (b *Builder) fieldsFromSchema(name string, schema pkgopenapi.Schema, required bool) ([]Field, error) {
	if schema.Ref != "" && schema.Type == "" && len(schema.Properties) == 0 {
		// Unresolved reference; surface it so callers can decide.
		return nil, fmt.Errorf("model builder: unresolved reference %q for field %q", schema.Ref, name)
	}

	switch schema.Type {
	case "object", "":
		return b.fieldsFromObject(name, schema, required)
	case "array":
		return nil, fmt.Errorf("model builder: array field %q is not supported", name)
	default:
		field, err := b.fieldFromPrimitive(name, schema, required)
		if err != nil {
			return nil, err
		}
		return []Field{field}, nil
	}
}

func (b *Builder) fieldsFromObject(name string, schema pkgopenapi.Schema, required bool) ([]Field, error) {
	requiredSet := make(map[string]struct{}, len(schema.Required))
	for _, item := range schema.Required {
		requiredSet[item] = struct{}{}
	}

	fields := make([]Field, 0, len(schema.Properties))
	for propName, propSchema := range schema.Properties {
		_, isRequired := requiredSet[propName]
		converted, err := b.fieldsFromSchema(propName, propSchema, isRequired)
		if err != nil {
			return nil, err
		}
		fields = append(fields, converted...)
	}
	sortFields(fields)

	if name == "" {
		return fields, nil
	}

	parent := Field{
		Name:        name,
		Type:        FieldTypeObject,
		Label:       b.opts.Labeler(name),
		Description: schema.Description,
		Required:    required,
		Nested:      fields,
	}
	b.applyExtensions(&parent, schema.Extensions)
	return []Field{parent}, nil
}

func (b *Builder) fieldFromPrimitive(name string, schema pkgopenapi.Schema, required bool) (Field, error) {
	field := Field{
		Name:        name,
		Type:        mapType(schema.Type),
		Format:      schema.Format,
		Label:       b.opts.Labeler(name),
		Description: schema.Description,
		Required:    required,
		Default:     schema.Default,
	}
	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}
	applyValidations(&field, schema)
	if err := b.applyExtensions(&field, schema.Extensions); err != nil {
		return Field{}, err
	}
	return field, nil
}

// applyExtensions lifts label, placeholder, order and step out of the
// x-formgen metadata onto typed Field attributes.
func (b *Builder) applyExtensions(field *Field, ext map[string]any) error {
	meta := metadataFromExtensions(ext)
	if len(meta) == 0 {
		return nil
	}
	if label := meta[metaLabel]; label != "" {
		field.Label = label
	}
	field.Placeholder = meta[metaPlaceholder]
	if raw, ok := meta[metaOrder]; ok {
		order, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("model builder: field %q has invalid order %q: %w", field.Name, raw, err)
		}
		field.Order = order
	}
	if raw, ok := meta[metaStep]; ok {
		step, err := strconv.ParseFloat(raw, 64)
		if err != nil || step <= 0 {
			return fmt.Errorf("model builder: field %q has invalid step %q", field.Name, raw)
		}
		field.Step = raw
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleStep,
			Params: map[string]string{"value": raw},
		})
	}

	for _, key := range []string{metaLabel, metaPlaceholder, metaOrder, metaStep} {
		delete(meta, key)
	}
	if len(meta) > 0 {
		if field.Metadata == nil {
			field.Metadata = make(map[string]string, len(meta))
		}
		mergeMetadata(field.Metadata, meta)
	}
	return nil
}

// sortFields orders by explicit order first; unordered fields follow, by name.
func sortFields(fields []Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i], fields[j]
		switch {
		case a.Order > 0 && b.Order > 0 && a.Order != b.Order:
			return a.Order < b.Order
		case a.Order > 0 && b.Order == 0:
			return true
		case a.Order == 0 && b.Order > 0:
			return false
		}
		return a.Name < b.Name
	})
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
		field.Min = formatFloat(*schema.Minimum)
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMin,
			Params: map[string]string{"value": field.Min},
		})
	}
	if schema.Maximum != nil {
		field.Max = formatFloat(*schema.Maximum)
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMax,
			Params: map[string]string{"value": field.Max},
		})
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
				if str, ok := canonicalizeExtensionValue(nestedValue); ok {
					result[nestedKey] = str
				}
			}
			continue
		}
		if strings.HasPrefix(key, extensionNamespace+"-") {
			if str, ok := canonicalizeExtensionValue(value); ok {
				result[strings.TrimPrefix(key, extensionNamespace+"-")] = str
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

// canonicalizeExtensionValue renders scalar extension values as strings.
// Composite values are JSON encoded.
func canonicalizeExtensionValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return formatFloat(v), true
	case float32:
		return formatFloat(float64(v)), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}
