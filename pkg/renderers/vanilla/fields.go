package vanilla

import (
	"github.com/goliatone/go-predictform/pkg/model"
	"github.com/goliatone/go-predictform/pkg/render"
)

type fieldView struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	ErrorID     string `json:"error_id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
	Step        string `json:"step,omitempty"`
	Required    bool   `json:"required"`
	Value       string `json:"value"`
	Error       string `json:"error,omitempty"`
}

// buildFieldViews pairs each model field with its current value and inline
// error. Nested fields are not rendered.
func buildFieldViews(fields []model.Field, values, errors map[string]string) []fieldView {
	views := make([]fieldView, 0, len(fields))
	for _, field := range fields {
		if len(field.Nested) > 0 {
			continue
		}
		label := field.Label
		if label == "" {
			label = model.DefaultLabeler(field.Name)
		}
		views = append(views, fieldView{
			Name:        field.Name,
			ID:          controlID(field.Name),
			ErrorID:     errorID(field.Name),
			Label:       label,
			Placeholder: field.Placeholder,
			Description: render.SanitizeMarkup(field.Description),
			Type:        field.InputType(),
			Min:         field.Min,
			Max:         field.Max,
			Step:        field.Step,
			Required:    field.Required,
			Value:       values[field.Name],
			Error:       errors[field.Name],
		})
	}
	return views
}
