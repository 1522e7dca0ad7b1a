package tui

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/model"
	"github.com/goliatone/go-predictform/pkg/render"
)

// Menu entries offered after each outcome.
const (
	MenuPredictAgain = "Predict again"
	MenuEditValues   = "Edit values"
	MenuResetForm    = "Reset form"
	MenuQuit         = "Quit"
)

var menuOptions = []string{MenuPredictAgain, MenuEditValues, MenuResetForm, MenuQuit}

// Session drives one form controller through terminal prompts.
type Session struct {
	renderer   *Renderer
	form       model.FormModel
	controller *form.Controller

	mu       sync.Mutex
	spinning bool
}

// NewSession builds a session and its controller. The controller's change
// hook is owned by the session and toggles the loading indicator.
func NewSession(renderer *Renderer, fm model.FormModel, p form.Predictor, opts ...form.Option) (*Session, error) {
	if renderer == nil {
		return nil, fmt.Errorf("tui: renderer is nil")
	}
	if len(fm.Fields) == 0 {
		return nil, fmt.Errorf("tui: form %q has no fields", fm.OperationID)
	}
	s := &Session{renderer: renderer, form: fm}
	controllerOpts := append(append([]form.Option(nil), opts...), form.WithOnChange(s.onChange))
	s.controller = form.New(p, controllerOpts...)
	return s, nil
}

// Controller exposes the session's controller.
func (s *Session) Controller() *form.Controller {
	return s.controller
}

// Run prompts for every field, submits, prints the outcome and loops on the
// follow-up menu until the user quits. ErrAborted is returned on Ctrl+C.
func (s *Session) Run(ctx context.Context) error {
	if err := s.PromptFields(ctx); err != nil {
		return err
	}

	for {
		if err := s.SubmitAndPrint(ctx); err != nil {
			return err
		}

		choice, err := s.renderer.driver.Select(ctx, SelectConfig{
			Message: "What next?",
			Options: menuOptions,
		})
		if err != nil {
			return err
		}

		switch indexOrQuit(choice) {
		case MenuPredictAgain:
		case MenuEditValues:
			if err := s.PromptFields(ctx); err != nil {
				return err
			}
		case MenuResetForm:
			s.controller.Reset()
			if err := s.PromptFields(ctx); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// PromptFields asks for each field in form order, offering the current value
// as the default. Under PolicyValidate answers must be numbers within the
// field's bounds.
func (s *Session) PromptFields(ctx context.Context) error {
	validate := s.controller.Policy() == form.PolicyValidate

	for _, field := range s.form.Fields {
		current := s.controller.State()
		label := field.Label
		if label == "" {
			label = model.DefaultLabeler(field.Name)
		}
		if msg := current.FieldErrors[field.Name]; msg != "" {
			if err := s.info(ctx, fmt.Sprintf("%s%s %s", s.renderer.theme.ErrorPrefix, label, msg)); err != nil {
				return err
			}
		}

		var validator func(string) error
		if validate {
			validator = numericValidator(field)
		}

		for {
			answer, err := s.renderer.driver.Input(ctx, InputConfig{
				Message:   label,
				Default:   current.Fields.Get(field.Name),
				Help:      field.Placeholder,
				Validator: validator,
			})
			if err != nil {
				return err
			}
			if validator != nil {
				if verr := validator(answer); verr != nil {
					if err := s.info(ctx, fmt.Sprintf("%s%s %v", s.renderer.theme.ErrorPrefix, label, verr)); err != nil {
						return err
					}
					continue
				}
			}
			if err := s.controller.UpdateField(field.Name, answer); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// SubmitAndPrint submits the current values and writes the outcome.
func (s *Session) SubmitAndPrint(ctx context.Context) error {
	state := s.controller.Submit(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.print(ctx, state)
}

func (s *Session) print(ctx context.Context, state form.State) error {
	out, err := s.renderer.Render(ctx, s.form, render.StateOptions(state))
	if err != nil {
		return err
	}
	_, err = s.renderer.out.Write(out)
	return err
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.renderer.driver.Info(ctx, s.renderer.theme.InfoPrefix+msg)
}

func (s *Session) onChange(state form.State) {
	indicator := s.renderer.indicator
	if indicator == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.Loading == s.spinning {
		return
	}
	s.spinning = state.Loading
	if state.Loading {
		indicator.Start(metadataLabel(s.form, "loading-label", "Submitting..."))
		return
	}
	indicator.Stop()
}

func numericValidator(field model.Field) func(string) error {
	lower, hasLower := parseBound(field.Min)
	upper, hasUpper := parseBound(field.Max)
	return func(raw string) error {
		value, err := form.ParseNumber(raw)
		if err != nil {
			return err
		}
		if hasLower && value < lower {
			return fmt.Errorf("must be at least %s", field.Min)
		}
		if hasUpper && value > upper {
			return fmt.Errorf("must be at most %s", field.Max)
		}
		return nil
	}
}

func parseBound(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func indexOrQuit(idx int) string {
	if idx < 0 || idx >= len(menuOptions) {
		return MenuQuit
	}
	return menuOptions[idx]
}
