package render

import "github.com/goliatone/go-predictform/pkg/form"

// StateOptions projects a controller snapshot onto render options. Action,
// Hidden and Theme are left for the caller.
func StateOptions(state form.State) RenderOptions {
	opts := RenderOptions{
		Values:    state.Fields.Clone(),
		FormError: state.Error,
		Loading:   state.Loading,
	}
	if len(state.FieldErrors) > 0 {
		opts.Errors = make(map[string]string, len(state.FieldErrors))
		for key, value := range state.FieldErrors {
			opts.Errors[key] = value
		}
	}
	if state.Result != nil && state.Error == "" {
		result := *state.Result
		opts.Result = &result
	}
	return opts
}
