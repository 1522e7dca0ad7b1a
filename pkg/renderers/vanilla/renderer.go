package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-predictform/pkg/model"
	"github.com/goliatone/go-predictform/pkg/render"
	rendertemplate "github.com/goliatone/go-predictform/pkg/render/template"
	gotemplate "github.com/goliatone/go-predictform/pkg/render/template/gotemplate"
)

const (
	defaultSubmitLabel  = "Submit"
	defaultLoadingLabel = "Submitting..."
	defaultResetLabel   = "Reset"
	defaultFieldsURL    = "/fields/"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	fieldsURL        string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithFieldsURL sets the prefix the inline script posts single field edits
// to. The field name is appended.
func WithFieldsURL(prefix string) Option {
	return func(cfg *config) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			cfg.fieldsURL = prefix
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), fieldsURL: defaultFieldsURL}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	// page chrome that does not change between requests
	globals := map[string]any{
		"method":     "post",
		"fields_url": cfg.fieldsURL,
		"classes":    chromeClasses(),
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithGlobalData(globals),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	} else if err := renderer.GlobalContext(globals); err != nil {
		return nil, fmt.Errorf("vanilla renderer: apply global context: %w", err)
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the full prediction page: header, inputs, action buttons
// and whichever of the error or result panels applies.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := r.templates.RenderTemplate(r.pageTemplate(opts), r.pageContext(form, opts))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(page), nil
}

func (r *Renderer) pageTemplate(opts render.RenderOptions) string {
	if opts.Theme != nil {
		if partial := strings.TrimSpace(opts.Theme.Partials[render.PartialPage]); partial != "" {
			return partial
		}
	}
	return PageTemplate
}

func (r *Renderer) pageContext(form model.FormModel, opts render.RenderOptions) map[string]any {
	formError := strings.TrimSpace(opts.FormError)

	submitLabel := metadataOr(form.Metadata, "submit-label", defaultSubmitLabel)
	loadingLabel := metadataOr(form.Metadata, "loading-label", defaultLoadingLabel)
	buttonLabel := submitLabel
	if opts.Loading {
		buttonLabel = loadingLabel
	}

	title := strings.TrimSpace(form.Summary)
	if title == "" {
		title = form.OperationID
	}

	themeCtx := map[string]any{}
	var stylesheet, inlineCSS string
	if cfg := opts.Theme; cfg != nil {
		themeCtx["name"] = cfg.Theme
		themeCtx["variant"] = cfg.Variant
		themeCtx["css"] = render.CSSVarsStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			stylesheet = cfg.AssetURL(render.AssetStylesheet)
		}
	}
	if stylesheet == "" {
		inlineCSS = defaultStylesheet()
	}

	var result any
	if opts.Result != nil && formError == "" {
		result = render.NewResultView(*opts.Result, opts.Theme)
	}

	return map[string]any{
		"title":         title,
		"subtitle":      render.SanitizeMarkup(form.Description),
		"action":        opts.Action,
		"fields":        buildFieldViews(form.Fields, opts.Values, opts.Errors),
		"hidden":        render.SortedHiddenFields(opts.Hidden),
		"loading":       opts.Loading,
		"submit_label":  buttonLabel,
		"loading_label": loadingLabel,
		"reset_label":   metadataOr(form.Metadata, "reset-label", defaultResetLabel),
		"error":         formError,
		"result":        result,
		"theme":         themeCtx,
		"stylesheet":    stylesheet,
		"inline_css":    inlineCSS,
	}
}
