package render

import (
	"context"

	"github.com/goliatone/go-predictform/pkg/model"
)

// Renderer converts a FormModel plus per-request state into a byte
// representation (HTML page, JSON view).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, model model.FormModel, options RenderOptions) ([]byte, error)
}
