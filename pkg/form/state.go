package form

import (
	"time"

	"github.com/goliatone/go-predictform/pkg/predictor"
)

// Phase is the render state derived from a State.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseResult  Phase = "result"
	PhaseError   Phase = "error"
)

// State is an immutable snapshot of the form. Result and Error are never set
// together.
type State struct {
	Fields      Values            `json:"fields"`
	Loading     bool              `json:"loading"`
	Result      *predictor.Result `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Seq         uint64            `json:"seq"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// Phase derives the render state.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Error != "":
		return PhaseError
	case s.Result != nil:
		return PhaseResult
	default:
		return PhaseIdle
	}
}

// clone deep-copies maps and the result pointer so callers cannot reach the
// controller's copy.
func (s State) clone() State {
	out := s
	out.Fields = s.Fields.Clone()
	if s.Result != nil {
		result := *s.Result
		out.Result = &result
	}
	if len(s.FieldErrors) > 0 {
		out.FieldErrors = make(map[string]string, len(s.FieldErrors))
		for key, value := range s.FieldErrors {
			out.FieldErrors[key] = value
		}
	}
	return out
}

func (s State) withoutOutcome() State {
	s.Result = nil
	s.Error = ""
	s.FieldErrors = nil
	return s
}
