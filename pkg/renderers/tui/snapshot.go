package tui

import (
	"strings"

	"github.com/goliatone/go-predictform/pkg/model"
	"github.com/goliatone/go-predictform/pkg/render"
)

// FieldValue is one collected input.
type FieldValue struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ResultSummary is the printable projection of a prediction.
type ResultSummary struct {
	IsDiabetic      bool    `json:"is_diabetic" yaml:"is_diabetic"`
	Probability     float64 `json:"probability" yaml:"probability"`
	Classification  string  `json:"classification" yaml:"classification"`
	Label           string  `json:"label" yaml:"label"`
	ProbabilityText string  `json:"probability_text" yaml:"probability_text"`
}

// Snapshot is what json and yaml output serialise.
type Snapshot struct {
	Form    string         `json:"form" yaml:"form"`
	Phase   string         `json:"phase" yaml:"phase"`
	Fields  []FieldValue   `json:"fields" yaml:"fields"`
	Result  *ResultSummary `json:"result,omitempty" yaml:"result,omitempty"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Loading bool           `json:"loading,omitempty" yaml:"loading,omitempty"`
}

// NewSnapshot combines the form model with per-request render options.
func NewSnapshot(form model.FormModel, opts render.RenderOptions) Snapshot {
	snap := Snapshot{
		Form:    form.OperationID,
		Loading: opts.Loading,
		Error:   strings.TrimSpace(opts.FormError),
		Fields:  make([]FieldValue, 0, len(form.Fields)),
	}
	for _, field := range form.Fields {
		label := field.Label
		if label == "" {
			label = model.DefaultLabeler(field.Name)
		}
		snap.Fields = append(snap.Fields, FieldValue{
			Name:  field.Name,
			Label: label,
			Value: opts.Values[field.Name],
			Error: opts.Errors[field.Name],
		})
	}
	if opts.Result != nil && snap.Error == "" {
		view := render.NewResultView(*opts.Result, opts.Theme)
		snap.Result = &ResultSummary{
			IsDiabetic:      opts.Result.IsDiabetic,
			Probability:     opts.Result.Probability,
			Classification:  string(view.Classification),
			Label:           view.Label,
			ProbabilityText: view.Probability,
		}
	}

	switch {
	case snap.Loading:
		snap.Phase = "loading"
	case snap.Error != "":
		snap.Phase = "error"
	case snap.Result != nil:
		snap.Phase = "result"
	default:
		snap.Phase = "idle"
	}
	return snap
}
