package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-predictform/pkg/model"
	"github.com/goliatone/go-predictform/pkg/render"
)

const defaultBarWidth = 30

// Renderer implements render.Renderer for terminal output and carries the
// prompt driver used by interactive sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	out          io.Writer
	indicator    Indicator
	indicatorSet bool
	color        *bool
	barWidth     int
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, human output,
// spinner on stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatHuman,
		out:          os.Stdout,
		barWidth:     defaultBarWidth,
		theme:        Theme{ErrorPrefix: "Error: "},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if _, err := ParseOutputFormat(string(r.outputFormat)); err != nil {
		return nil, err
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	if !r.indicatorSet {
		r.indicator = NewSpinner(r.out)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatJSON:
		return "application/json"
	case OutputFormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render prints the form values and outcome in the configured format. It
// does not prompt; see Session for the interactive flow.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := NewSnapshot(form, opts)
	switch r.outputFormat {
	case OutputFormatJSON:
		payload, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return append(payload, '\n'), nil
	case OutputFormatYAML:
		payload, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return payload, nil
	default:
		return []byte(r.human(form, snap)), nil
	}
}

func (r *Renderer) human(form model.FormModel, snap Snapshot) string {
	var b strings.Builder

	title := form.Summary
	if title == "" {
		title = form.OperationID
	}
	b.WriteString(r.paint(title, color.Bold))
	b.WriteString("\n\n")

	width := 0
	for _, field := range snap.Fields {
		if n := utf8.RuneCountInString(field.Label); n > width {
			width = n
		}
	}
	for _, field := range snap.Fields {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(field.Label))
		fmt.Fprintf(&b, "  %s%s  %s", field.Label, pad, field.Value)
		if field.Error != "" {
			b.WriteString("  ")
			b.WriteString(r.paint(field.Error, color.FgRed))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	switch {
	case snap.Loading:
		b.WriteString(r.paint(metadataLabel(form, "loading-label", "Submitting..."), color.Faint))
		b.WriteByte('\n')
	case snap.Error != "":
		b.WriteString(r.paint(r.theme.ErrorPrefix+snap.Error, color.FgRed, color.Bold))
		b.WriteByte('\n')
	case snap.Result != nil:
		attr := color.FgGreen
		if snap.Result.IsDiabetic {
			attr = color.FgRed
		}
		class := render.Classification(snap.Result.Classification)
		b.WriteString(r.paint(class.Headline(), attr, color.Bold))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "Prediction: %s\n", r.paint(snap.Result.Label, attr))
		fmt.Fprintf(&b, "Probability of Diabetes: %s\n", snap.Result.ProbabilityText)
		b.WriteString(r.paint(FillBar(snap.Result.Probability, r.barWidth), attr))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Renderer) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if r.colorEnabled() {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func (r *Renderer) colorEnabled() bool {
	if r.color != nil {
		return *r.color
	}
	return !color.NoColor
}

// FillBar draws the probability as a bar of width cells.
func FillBar(probability float64, width int) string {
	if width <= 0 {
		width = defaultBarWidth
	}
	filled := int(math.Round(render.FillPercent(probability) / 100 * float64(width)))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func metadataLabel(form model.FormModel, key, fallback string) string {
	if value := strings.TrimSpace(form.Metadata[key]); value != "" {
		return value
	}
	return fallback
}
