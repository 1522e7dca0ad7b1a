package tui

import (
	"fmt"
	"io"
	"strings"
)

// OutputFormat controls how outcomes are serialized.
type OutputFormat string

const (
	// OutputFormatHuman prints a coloured summary with a text fill bar.
	OutputFormatHuman OutputFormat = "human"
	// OutputFormatJSON emits the snapshot as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML emits the snapshot as YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat maps flag text onto an OutputFormat. Empty selects
// OutputFormatHuman.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", OutputFormatHuman:
		return OutputFormatHuman, nil
	case OutputFormatJSON:
		return OutputFormatJSON, nil
	case OutputFormatYAML, "yml":
		return OutputFormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Theme captures optional message prefixes. Keep minimal to avoid coupling
// session logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by sessions.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithWriter sets where sessions print outcomes.
func WithWriter(w io.Writer) Option {
	return func(r *Renderer) {
		if w != nil {
			r.out = w
		}
	}
}

// WithIndicator replaces the loading spinner. Pass nil to disable it.
func WithIndicator(indicator Indicator) Option {
	return func(r *Renderer) {
		r.indicator = indicator
		r.indicatorSet = true
	}
}

// WithColor forces coloured output on or off.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = &enabled
	}
}

// WithBarWidth sets the number of cells in the probability bar.
func WithBarWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.barWidth = width
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
