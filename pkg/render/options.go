package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-predictform/pkg/predictor"
)

// RenderOptions carry the per-request form state renderers need on top of
// the form model.
type RenderOptions struct {
	// Action is the form's submit target; empty means the current URL.
	Action string
	// Values pre-populates inputs keyed by field name.
	Values map[string]string
	// Errors holds inline messages keyed by field name.
	Errors map[string]string
	// FormError is the single message shown in the error panel.
	FormError string
	// Loading disables the submit control and swaps its label.
	Loading bool
	// Result, when non-nil, is shown in the result panel. It is never set
	// together with FormError.
	Result *predictor.Result
	// Hidden lists hidden inputs (CSRF token) emitted inside the form.
	Hidden map[string]string
	// Theme carries resolved tokens, partials and asset URLs.
	Theme *theme.RendererConfig
}
