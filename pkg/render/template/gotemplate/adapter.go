// Package gotemplate adapts github.com/goliatone/go-template to the
// template.TemplateRenderer seam and registers the filters the page
// templates use.
package gotemplate

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplate "github.com/goliatone/go-template"

	"github.com/goliatone/go-predictform/pkg/render/template"
)

// Option configures the underlying go-template engine.
type Option = gotemplate.Option

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return gotemplate.WithFS(files)
}

// WithExtension overrides the template extension appended to bare names.
func WithExtension(ext string) Option {
	return gotemplate.WithExtension(strings.TrimSpace(ext))
}

// WithGlobalData seeds values every template can read.
func WithGlobalData(data map[string]any) Option {
	return gotemplate.WithGlobalData(data)
}

// WithFilters registers pongo2 filter functions or callable globals.
func WithFilters(funcs map[string]any) Option {
	return gotemplate.WithTemplateFunc(funcs)
}

// Engine is a go-template engine. Parsed templates are cached by path.
type Engine struct {
	*gotemplate.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine with the default filters applied before options.
func New(options ...Option) (*Engine, error) {
	opts := make([]Option, 0, len(options)+1)
	opts = append(opts, WithFilters(defaultFilters()))
	for _, opt := range options {
		if opt != nil {
			opts = append(opts, opt)
		}
	}

	engine, err := gotemplate.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: %w", err)
	}
	return &Engine{Engine: engine}, nil
}

func defaultFilters() map[string]any {
	return map[string]any{
		"fallback": filterFallback,
	}
}

// filterFallback returns param when the input is blank after trimming.
func filterFallback(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() || strings.TrimSpace(in.String()) == "" {
		return param, nil
	}
	return in, nil
}
