// Package orchestrator wires the loader → parser → model builder → renderer
// pipeline for the prediction form. The built form model is cached; themes
// are resolved per request through a go-theme selector.
package orchestrator
