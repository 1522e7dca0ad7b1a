// Package predictform renders a diabetes risk prediction form from an OpenAPI
// contract and drives submissions against the prediction service.
package predictform

import (
	"context"

	pkgopenapi "github.com/goliatone/go-predictform/pkg/openapi"
	"github.com/goliatone/go-predictform/pkg/orchestrator"
	"github.com/goliatone/go-predictform/pkg/predictor"
	"github.com/goliatone/go-predictform/pkg/render"
)

// RenderOptions describes per-request state renderers use to prefill values,
// surface validation errors and show results.
type RenderOptions = render.RenderOptions

// Result is a prediction returned by the service.
type Result = predictor.Result

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewClient returns a prediction client for the service at baseURL.
func NewClient(baseURL string, options ...predictor.Option) (*predictor.Client, error) {
	return predictor.New(baseURL, options...)
}

// GenerateHTML renders the prediction form page using the embedded contract
// unless a different source is supplied through options.
func GenerateHTML(ctx context.Context, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	out, err := orchestrator.New(options...).Render(ctx, orchestrator.Request{
		Renderer: "vanilla",
		Options:  opts,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// GenerateHTMLFromSource renders the form described by operationID in the
// contract at source.
func GenerateHTMLFromSource(ctx context.Context, source pkgopenapi.Source, operationID string, options ...orchestrator.Option) ([]byte, error) {
	options = append(options,
		orchestrator.WithSource(source),
		orchestrator.WithOperationID(operationID),
		orchestrator.WithLoader(NewLoader(pkgopenapi.WithHTTPFallback(0))),
	)
	return GenerateHTML(ctx, RenderOptions{}, options...)
}
