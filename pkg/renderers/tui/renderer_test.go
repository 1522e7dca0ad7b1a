package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-predictform/pkg/predictor"
	"github.com/goliatone/go-predictform/pkg/render"
	"github.com/goliatone/go-predictform/pkg/testsupport"
)

func TestParseOutputFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"":      OutputFormatHuman,
		"human": OutputFormatHuman,
		"JSON":  OutputFormatJSON,
		"yml":   OutputFormatYAML,
		"yaml":  OutputFormatYAML,
	}
	for raw, want := range tests {
		got, err := ParseOutputFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseOutputFormat(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFillBar(t *testing.T) {
	tests := []struct {
		probability float64
		want        string
	}{
		{0, "[░░░░░░░░░░]"},
		{0.5, "[█████░░░░░]"},
		{1, "[██████████]"},
		{1.7, "[██████████]"},
		{-0.2, "[░░░░░░░░░░]"},
	}
	for _, tt := range tests {
		if got := FillBar(tt.probability, 10); got != tt.want {
			t.Fatalf("FillBar(%v) = %q, want %q", tt.probability, got, tt.want)
		}
	}
}

func TestRenderer_ContentType(t *testing.T) {
	tests := map[OutputFormat]string{
		OutputFormatHuman: "text/plain; charset=utf-8",
		OutputFormatJSON:  "application/json",
		OutputFormatYAML:  "application/yaml",
	}
	for format, want := range tests {
		r, err := New(WithOutputFormat(format), WithPromptDriver(&stubDriver{}), WithIndicator(nil))
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if got := r.ContentType(); got != want {
			t.Fatalf("%s content type = %q", format, got)
		}
	}
	if _, err := New(WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestRenderer_HumanStates(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}), WithIndicator(nil), WithColor(false))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	form := testsupport.MustPredictForm(t)

	loading, err := r.Render(context.Background(), form, render.RenderOptions{Loading: true})
	if err != nil {
		t.Fatalf("render loading: %v", err)
	}
	if !strings.Contains(string(loading), "Predicting...") {
		t.Fatalf("loading output missing label:\n%s", loading)
	}

	failed, err := r.Render(context.Background(), form, render.RenderOptions{
		FormError: "<b>Service down</b>",
		Errors:    map[string]string{"Age": "is required"},
		Result:    &predictor.Result{IsDiabetic: true, Probability: 0.9},
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	text := string(failed)
	if !strings.Contains(text, "Error: Service down") || strings.Contains(text, "Positive for Diabetes") {
		t.Fatalf("unexpected error output:\n%s", text)
	}
	if !strings.Contains(text, "is required") {
		t.Fatalf("expected inline field error:\n%s", text)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}), WithIndicator(nil))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, testsupport.MustPredictForm(t), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
