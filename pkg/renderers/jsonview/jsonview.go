package jsonview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-predictform/pkg/model"
	"github.com/goliatone/go-predictform/pkg/predictor"
	"github.com/goliatone/go-predictform/pkg/render"
)

// Option customises the renderer configuration.
type Option func(*Renderer)

// WithIndent pretty-prints the document using indent per level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer serialises the form model together with the current form state
// so script clients can draw the page themselves.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the JSON view renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

// ContentType returns the MIME type for generated documents.
func (r *Renderer) ContentType() string {
	return "application/json"
}

// Document is the top-level payload.
type Document struct {
	Form  orderedFormModel `json:"form"`
	State StateView        `json:"state"`
	Theme *ThemeView       `json:"theme,omitempty"`
}

// StateView mirrors the render options a page needs.
type StateView struct {
	Phase       string               `json:"phase"`
	Values      orderedMap           `json:"values"`
	FieldErrors orderedMap           `json:"fieldErrors,omitempty"`
	Error       string               `json:"error,omitempty"`
	Loading     bool                 `json:"loading"`
	Result      *ResultView          `json:"result,omitempty"`
	Hidden      []render.HiddenField `json:"hidden,omitempty"`
}

// ResultView carries the raw prediction plus its display strings.
type ResultView struct {
	IsDiabetic  bool              `json:"is_diabetic"`
	Probability float64           `json:"probability"`
	Display     render.ResultView `json:"display"`
}

// ThemeView exposes the resolved theme tokens.
type ThemeView struct {
	Name    string     `json:"name"`
	Variant string     `json:"variant,omitempty"`
	Tokens  orderedMap `json:"tokens,omitempty"`
	CSSVars orderedMap `json:"cssVars,omitempty"`
}

// Render produces the JSON document.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := Document{
		Form:  toOrderedFormModel(form),
		State: buildState(form, opts),
		Theme: buildThemeView(opts.Theme),
	}

	var (
		payload []byte
		err     error
	)
	if r.indent != "" {
		payload, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		payload, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview renderer: marshal document: %w", err)
	}
	return payload, nil
}

func buildState(form model.FormModel, opts render.RenderOptions) StateView {
	values := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		values[field.Name] = opts.Values[field.Name]
	}

	state := StateView{
		Values:      orderedMap(values),
		FieldErrors: newOrderedMap(opts.Errors),
		Error:       strings.TrimSpace(opts.FormError),
		Loading:     opts.Loading,
		Hidden:      render.SortedHiddenFields(opts.Hidden),
	}
	if opts.Result != nil && state.Error == "" {
		state.Result = newResultView(*opts.Result, opts.Theme)
	}

	switch {
	case state.Loading:
		state.Phase = "loading"
	case state.Error != "":
		state.Phase = "error"
	case state.Result != nil:
		state.Phase = "result"
	default:
		state.Phase = "idle"
	}
	return state
}

func newResultView(result predictor.Result, cfg *theme.RendererConfig) *ResultView {
	return &ResultView{
		IsDiabetic:  result.IsDiabetic,
		Probability: result.Probability,
		Display:     render.NewResultView(result, cfg),
	}
}

type orderedFormModel struct {
	OperationID string         `json:"operationId"`
	Endpoint    string         `json:"endpoint"`
	Method      string         `json:"method"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Fields      []orderedField `json:"fields"`
	Metadata    orderedMap     `json:"metadata,omitempty"`
}

type orderedField struct {
	Name        string          `json:"name"`
	Type        model.FieldType `json:"type"`
	InputType   string          `json:"inputType"`
	Required    bool            `json:"required"`
	Label       string          `json:"label,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Description string          `json:"description,omitempty"`
	Min         string          `json:"min,omitempty"`
	Max         string          `json:"max,omitempty"`
	Step        string          `json:"step,omitempty"`
	Order       int             `json:"order,omitempty"`
	Metadata    orderedMap      `json:"metadata,omitempty"`
}

func toOrderedFormModel(form model.FormModel) orderedFormModel {
	fields := make([]orderedField, len(form.Fields))
	for i, field := range form.Fields {
		fields[i] = toOrderedField(field)
	}

	return orderedFormModel{
		OperationID: form.OperationID,
		Endpoint:    form.Endpoint,
		Method:      form.Method,
		Summary:     form.Summary,
		Description: form.Description,
		Fields:      fields,
		Metadata:    newOrderedMap(form.Metadata),
	}
}

func toOrderedField(field model.Field) orderedField {
	label := field.Label
	if label == "" {
		label = model.DefaultLabeler(field.Name)
	}
	return orderedField{
		Name:        field.Name,
		Type:        field.Type,
		InputType:   field.InputType(),
		Required:    field.Required,
		Label:       label,
		Placeholder: field.Placeholder,
		Description: field.Description,
		Min:         field.Min,
		Max:         field.Max,
		Step:        field.Step,
		Order:       field.Order,
		Metadata:    newOrderedMap(field.Metadata),
	}
}

func buildThemeView(cfg *theme.RendererConfig) *ThemeView {
	if cfg == nil {
		return nil
	}
	return &ThemeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  newOrderedMap(cfg.Tokens),
		CSSVars: newOrderedMap(cfg.CSSVars),
	}
}

type orderedMap map[string]string

func newOrderedMap(values map[string]string) orderedMap {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		result[key] = value
	}
	return orderedMap(result)
}

// MarshalJSON writes keys in sorted order so documents diff cleanly.
func (m orderedMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyPayload, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valuePayload, err := json.Marshal(m[key])
		if err != nil {
			return nil, err
		}
		buf.Write(keyPayload)
		buf.WriteByte(':')
		buf.Write(valuePayload)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
