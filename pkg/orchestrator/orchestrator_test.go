package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-predictform/pkg/contract"
	pkgmodel "github.com/goliatone/go-predictform/pkg/model"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
	"github.com/goliatone/go-predictform/pkg/predictor"
	"github.com/goliatone/go-predictform/pkg/render"
)

func TestOrchestrator_RendersEmbeddedContract(t *testing.T) {
	orch := New()

	form, err := orch.Form(context.Background())
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.OperationID != contract.PredictOperationID {
		t.Fatalf("operation mismatch: %s", form.OperationID)
	}
	want := []string{
		"Pregnancies", "Glucose", "BloodPressure", "SkinThickness",
		"Insulin", "BMI", "DiabetesPedigreeFunction", "Age",
	}
	if diff := cmp.Diff(want, form.FieldNames()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	out, err := orch.Render(context.Background(), Request{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out.ContentType, "text/html") {
		t.Fatalf("expected html content type, got %s", out.ContentType)
	}
	body := string(out.Body)
	for _, snippet := range []string{
		"Diabetes Prediction System",
		`name="Glucose"`,
		"Predict Diabetes Risk",
		"/assets/predictform.css",
	} {
		if !strings.Contains(body, snippet) {
			t.Fatalf("expected %q in output", snippet)
		}
	}

	out, err = orch.Render(context.Background(), Request{
		Renderer: "json",
		Options: render.RenderOptions{
			Result: &predictor.Result{IsDiabetic: true, Probability: 0.8},
		},
	})
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if out.ContentType != "application/json" {
		t.Fatalf("unexpected content type %s", out.ContentType)
	}
	if !strings.Contains(string(out.Body), `"is_diabetic":true`) {
		t.Fatalf("expected result in json view:\n%s", out.Body)
	}
}

func TestOrchestrator_CachesFormModel(t *testing.T) {
	loader := &countingLoader{}
	builder := &countingBuilder{form: pkgmodel.FormModel{
		OperationID: "create",
		Fields:      []pkgmodel.Field{{Name: "Age", Metadata: map[string]string{"k": "v"}}},
	}}

	orch := New(
		WithLoader(loader),
		WithParser(stubParser{operations: map[string]pkgopenapi.Operation{
			"create": pkgopenapi.MustNewOperation("create", "POST", "/items", pkgopenapi.Schema{}, nil),
		}}),
		WithModelBuilder(builder),
		WithOperationID("create"),
	)

	first, err := orch.Form(context.Background())
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	first.Fields[0].Metadata["k"] = "mutated"
	first.Fields[0].Label = "mutated"

	second, err := orch.Form(context.Background())
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if loader.calls != 1 || builder.calls != 1 {
		t.Fatalf("expected a single build, got loads=%d builds=%d", loader.calls, builder.calls)
	}
	if second.Fields[0].Metadata["k"] != "v" || second.Fields[0].Label != "" {
		t.Fatalf("cached form leaked caller mutation: %+v", second.Fields[0])
	}

	orch.Reload()
	if _, err := orch.Form(context.Background()); err != nil {
		t.Fatalf("form after reload: %v", err)
	}
	if builder.calls != 2 {
		t.Fatalf("expected rebuild after reload, got %d builds", builder.calls)
	}
}

func TestOrchestrator_DoesNotCacheErrors(t *testing.T) {
	builder := &countingBuilder{err: errors.New("boom")}
	orch := New(
		WithLoader(&countingLoader{}),
		WithParser(stubParser{operations: map[string]pkgopenapi.Operation{
			"create": pkgopenapi.MustNewOperation("create", "POST", "/items", pkgopenapi.Schema{}, nil),
		}}),
		WithModelBuilder(builder),
		WithOperationID("create"),
	)

	if _, err := orch.Form(context.Background()); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected build error, got %v", err)
	}
	builder.err = nil
	builder.form = pkgmodel.FormModel{OperationID: "create"}
	if _, err := orch.Form(context.Background()); err != nil {
		t.Fatalf("expected recovery after error, got %v", err)
	}
}

func TestOrchestrator_UnknownOperation(t *testing.T) {
	orch := New(WithOperationID("missing"))
	_, err := orch.Form(context.Background())
	if err == nil || !strings.Contains(err.Error(), `operation "missing" not found`) {
		t.Fatalf("expected missing operation error, got %v", err)
	}
}

func TestOrchestrator_TransformerRunsBeforeDecorators(t *testing.T) {
	var order []string
	transformer := TransformerFunc(func(_ context.Context, form *pkgmodel.FormModel) error {
		order = append(order, "transform")
		form.Summary = "Transformed"
		return nil
	})
	decorator := pkgmodel.DecoratorFunc(func(form *pkgmodel.FormModel) error {
		order = append(order, "decorate:"+form.Summary)
		return nil
	})

	orch := New(
		WithSchemaTransformer(transformer),
		WithDecorators(decorator),
	)
	form, err := orch.Form(context.Background())
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.Summary != "Transformed" {
		t.Fatalf("transformer not applied: %q", form.Summary)
	}
	if diff := cmp.Diff([]string{"transform", "decorate:Transformed"}, order); diff != "" {
		t.Fatalf("pipeline order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_DecoratorErrorPropagates(t *testing.T) {
	orch := New(WithDecorators(pkgmodel.DecoratorFunc(func(*pkgmodel.FormModel) error {
		return errors.New("bad metadata")
	})))
	_, err := orch.Form(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decorate form: bad metadata") {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
	}
	selection := &theme.Selection{
		Theme:    "acme",
		Variant:  "custom-variant",
		Manifest: manifest,
	}
	selector := &stubThemeSelector{selection: selection}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
	)

	out, err := orch.Render(context.Background(), Request{
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out.Body) != contract.PredictOperationID || out.ContentType != "text/plain" {
		t.Fatalf("unexpected output: %+v", out)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if diff := cmp.Diff(selectorCall{name: "custom-theme", variant: "custom-variant"}, selector.calls[0], cmp.AllowUnexported(selectorCall{})); diff != "" {
		t.Fatalf("selector args mismatch (-want +got):\n%s", diff)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "custom-variant" {
		t.Fatalf("unexpected theme selection: %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.Partials[render.PartialPage]; got != render.DefaultPartials()[render.PartialPage] {
		t.Fatalf("partials not merged with fallbacks: %s", got)
	}
	if cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("css vars not derived from tokens")
	}
}

func TestOrchestrator_ThemeDefaultsAndExplicitTheme(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithThemeDefaults(render.DefaultThemeName, render.DarkVariant),
	)

	if _, err := orch.Render(context.Background(), Request{Renderer: "capture"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	cfg := renderer.options.Theme
	if cfg == nil || cfg.Variant != render.DarkVariant {
		t.Fatalf("expected dark variant by default, got %+v", cfg)
	}
	if cfg.Tokens["surface"] != "#1f2933" {
		t.Fatalf("variant tokens not merged: %s", cfg.Tokens["surface"])
	}
	if got := cfg.AssetURL(render.AssetStylesheet); got != "/assets/predictform.css" {
		t.Fatalf("unexpected stylesheet url: %s", got)
	}

	explicit := &theme.RendererConfig{Theme: "inline"}
	if _, err := orch.Render(context.Background(), Request{
		Renderer: "capture",
		Options:  render.RenderOptions{Theme: explicit},
	}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if renderer.options.Theme != explicit {
		t.Fatalf("explicit theme config should be passed through")
	}

	if _, err := orch.Render(context.Background(), Request{Renderer: "capture", ThemeVariant: "sepia"}); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func TestOrchestrator_UnknownRenderer(t *testing.T) {
	orch := New()
	_, err := orch.Render(context.Background(), Request{Renderer: "react"})
	if err == nil || !strings.Contains(err.Error(), `renderer "react"`) {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Form(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type countingLoader struct {
	calls int
}

func (l *countingLoader) Load(_ context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	l.calls++
	return pkgopenapi.MustNewDocument(src, []byte("{}")), nil
}

type stubParser struct {
	operations map[string]pkgopenapi.Operation
	err        error
}

func (s stubParser) Operations(_ context.Context, _ pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.operations, nil
}

type countingBuilder struct {
	form  pkgmodel.FormModel
	err   error
	calls int
}

func (s *countingBuilder) Build(pkgopenapi.Operation) (pkgmodel.FormModel, error) {
	s.calls++
	if s.err != nil {
		return pkgmodel.FormModel{}, s.err
	}
	return cloneForm(s.form), nil
}

type captureRenderer struct {
	options render.RenderOptions
}

func (r *captureRenderer) Name() string {
	return "capture"
}

func (r *captureRenderer) ContentType() string {
	return "text/plain"
}

func (r *captureRenderer) Render(_ context.Context, form pkgmodel.FormModel, opts render.RenderOptions) ([]byte, error) {
	r.options = opts
	return []byte(form.OperationID), nil
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
