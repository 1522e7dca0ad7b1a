package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	theme "github.com/goliatone/go-theme"

	internalLoader "github.com/goliatone/go-predictform/internal/openapi/loader"
	internalParser "github.com/goliatone/go-predictform/internal/openapi/parser"
	"github.com/goliatone/go-predictform/pkg/contract"
	"github.com/goliatone/go-predictform/pkg/model"
	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
	"github.com/goliatone/go-predictform/pkg/render"
	"github.com/goliatone/go-predictform/pkg/renderers/jsonview"
	"github.com/goliatone/go-predictform/pkg/renderers/vanilla"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSource sets where the contract is loaded from. Defaults to the
// embedded contract.
func WithSource(src pkgopenapi.Source) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithOperationID selects the operation rendered as the form.
func WithOperationID(id string) Option {
	return func(o *Orchestrator) {
		o.operationID = id
	}
}

// WithSchemaTransformer registers a Transformer that runs after the form
// model is built and before decorators.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the built form model.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector resolves themes through selector instead of the built-in
// catalog.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeDefaults names the theme and variant used when a request leaves
// them empty.
func WithThemeDefaults(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithThemeFallbacks sets partials used when a theme manifest omits them.
func WithThemeFallbacks(partials map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = partials
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the full pipeline from contract to rendered
// output. It applies defaults (embedded contract, vanilla and json renderers,
// built-in theme catalog) while remaining open to dependency injection.
type Orchestrator struct {
	loader          pkgopenapi.Loader
	parser          pkgopenapi.Parser
	builder         model.Builder
	registry        *render.Registry
	defaultRenderer string
	source          pkgopenapi.Source
	operationID     string
	transformer     Transformer
	decorators      []model.Decorator
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	themeFallbacks  map[string]string
	logger          *slog.Logger
	initialiseErr   error

	mu   sync.Mutex
	form *model.FormModel
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a single render.
type Request struct {
	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant select the theme. Empty values use the
	// configured defaults. Ignored when Options.Theme is already set.
	ThemeName    string
	ThemeVariant string

	// Options carries the per-request form state.
	Options render.RenderOptions
}

// Output is a rendered document and its media type.
type Output struct {
	ContentType string
	Body        []byte
}

// Form returns the form model, loading and building it on first use. Callers
// receive a copy they may modify.
func (o *Orchestrator) Form(ctx context.Context) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.form != nil {
		return cloneForm(*o.form), nil
	}

	form, err := o.build(ctx)
	if err != nil {
		return model.FormModel{}, err
	}
	o.form = &form
	o.logger.Debug("form model built",
		"operation", form.OperationID,
		"source", o.source.Location(),
		"fields", len(form.Fields),
	)
	return cloneForm(form), nil
}

// Reload drops the cached form model so the next call rebuilds it.
func (o *Orchestrator) Reload() {
	o.mu.Lock()
	o.form = nil
	o.mu.Unlock()
}

// Render builds (or reuses) the form model, resolves the theme and renders
// through the requested renderer.
func (o *Orchestrator) Render(ctx context.Context, req Request) (Output, error) {
	form, err := o.Form(ctx)
	if err != nil {
		return Output{}, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Output{}, err
	}

	opts := req.Options
	if opts.Theme == nil {
		cfg, err := o.ThemeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return Output{}, err
		}
		opts.Theme = cfg
	}

	body, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return Output{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return Output{ContentType: renderer.ContentType(), Body: body}, nil
}

// ThemeConfig resolves a theme selection into renderer configuration.
func (o *Orchestrator) ThemeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.themeName
	}
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return render.RendererConfigFromSelection(selection, o.themeFallbacks), nil
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) build(ctx context.Context) (model.FormModel, error) {
	doc, err := o.loader.Load(ctx, o.source)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: load document: %w", err)
	}

	operations, err := o.parser.Operations(ctx, doc)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: parse operations: %w", err)
	}

	op, ok := operations[o.operationID]
	if !ok {
		return model.FormModel{}, fmt.Errorf("orchestrator: operation %q not found", o.operationID)
	}

	form, err := o.builder.Build(op)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &form); err != nil {
			return model.FormModel{}, fmt.Errorf("orchestrator: transform form: %w", err)
		}
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&form); err != nil {
			return model.FormModel{}, fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return form, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.source == nil {
		o.source = contract.Source()
	}
	if o.operationID == "" {
		o.operationID = contract.PredictOperationID
	}
	if o.loader == nil {
		o.loader = internalLoader.New(pkgopenapi.NewLoaderOptions(
			pkgopenapi.WithFileSystem(contract.FS()),
		))
	}
	if o.parser == nil {
		o.parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry.MustRegister(renderer)
		o.registry.MustRegister(jsonview.New())
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = render.DefaultPartials()
	}
	if o.themeSelector == nil {
		catalog, err := render.NewThemeCatalog(o.themeName, o.themeVariant)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: theme catalog: %w", err)
			return
		}
		o.themeSelector = catalog
	}
}

func cloneForm(form model.FormModel) model.FormModel {
	out := form
	out.Metadata = cloneStrings(form.Metadata)
	if form.Fields != nil {
		out.Fields = make([]model.Field, len(form.Fields))
		for i, field := range form.Fields {
			out.Fields[i] = cloneField(field)
		}
	}
	return out
}

func cloneField(field model.Field) model.Field {
	out := field
	out.Metadata = cloneStrings(field.Metadata)
	if field.Enum != nil {
		out.Enum = append([]any(nil), field.Enum...)
	}
	if field.Validations != nil {
		out.Validations = make([]model.ValidationRule, len(field.Validations))
		for i, rule := range field.Validations {
			out.Validations[i] = model.ValidationRule{Kind: rule.Kind, Params: cloneStrings(rule.Params)}
		}
	}
	if field.Nested != nil {
		out.Nested = make([]model.Field, len(field.Nested))
		for i, nested := range field.Nested {
			out.Nested[i] = cloneField(nested)
		}
	}
	return out
}

func cloneStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
