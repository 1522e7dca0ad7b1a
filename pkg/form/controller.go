package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-predictform/pkg/predictor"
)

var errNoPredictor = errors.New("form: predictor is not configured")

// Predictor performs one prediction call.
type Predictor interface {
	Predict(ctx context.Context, req predictor.Request) (predictor.Result, error)
}

// PredictorFunc adapts a function into a Predictor.
type PredictorFunc func(ctx context.Context, req predictor.Request) (predictor.Result, error)

// Predict calls fn.
func (fn PredictorFunc) Predict(ctx context.Context, req predictor.Request) (predictor.Result, error) {
	return fn(ctx, req)
}

// Option configures a Controller.
type Option func(*Controller)

// WithPolicy selects the numeric policy applied on Submit.
func WithPolicy(policy NumericPolicy) Option {
	return func(c *Controller) {
		if policy != "" {
			c.policy = policy
		}
	}
}

// WithLogger sets the logger used for failed predictions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnChange registers a hook invoked with every new state. The hook runs
// outside the controller lock and may call State but must not block.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithClock overrides the time source used for SubmittedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller owns the form state for one session. It is safe for concurrent
// use.
type Controller struct {
	predictor Predictor
	policy    NumericPolicy
	logger    *slog.Logger
	onChange  func(State)
	now       func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// New constructs a Controller with all fields blank.
func New(p Predictor, opts ...Option) *Controller {
	c := &Controller{
		predictor: p,
		policy:    PolicyValidate,
		logger:    slog.Default(),
		now:       time.Now,
		state:     State{Fields: EmptyValues()},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Policy reports the numeric policy in effect.
func (c *Controller) Policy() NumericPolicy {
	return c.policy
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// UpdateField overwrites one field and clears any result or error. An
// in-flight submission is abandoned.
func (c *Controller) UpdateField(name, value string) error {
	return c.UpdateFields(Values{name: value})
}

// UpdateFields applies several field values at once. Either every name is
// known and all are applied, or ErrUnknownField is returned and nothing
// changes.
func (c *Controller) UpdateFields(values Values) error {
	for name := range values {
		if !IsField(name) {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	c.mu.Lock()
	next := c.abandonLocked().withoutOutcome()
	next.Fields = next.Fields.Clone()
	for name, value := range values {
		next.Fields[name] = value
	}
	c.state = next
	snapshot := next.clone()
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// Reset blanks every field and clears any result or error. An in-flight
// submission is abandoned.
func (c *Controller) Reset() {
	c.mu.Lock()
	next := c.abandonLocked().withoutOutcome()
	next.Fields = EmptyValues()
	c.state = next
	snapshot := next.clone()
	c.mu.Unlock()

	c.notify(snapshot)
}

// Submit converts the fields, calls the predictor and records the outcome.
// It blocks until the call finishes and returns the state at that point.
// Failures never escape; they are recorded as State.Error.
func (c *Controller) Submit(ctx context.Context) State {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	next := c.state.withoutOutcome()
	next.Loading = true
	next.Seq++
	next.SubmittedAt = c.now()
	c.state = next
	seq := next.Seq
	fields := next.Fields.Clone()
	snapshot := next.clone()
	c.mu.Unlock()

	c.notify(snapshot)

	result, err := c.predict(callCtx, fields)
	return c.complete(seq, cancel, result, err)
}

func (c *Controller) predict(ctx context.Context, fields Values) (predictor.Result, error) {
	values, invalid := convert(fields, c.policy)
	if invalid != nil {
		return predictor.Result{}, invalid
	}
	if c.predictor == nil {
		return predictor.Result{}, errNoPredictor
	}
	return c.predictor.Predict(ctx, predictor.Request(values))
}

func (c *Controller) complete(seq uint64, cancel context.CancelFunc, result predictor.Result, err error) State {
	c.mu.Lock()
	cancel()
	if c.state.Seq != seq {
		current := c.state.clone()
		c.mu.Unlock()
		c.logger.Debug("discarding stale prediction", "seq", seq, "current", current.Seq)
		return current
	}
	c.cancel = nil

	next := c.state
	next.Loading = false
	if err != nil {
		next.Error, next.FieldErrors = MessageFor(err)
		c.logger.Warn("prediction failed",
			"operation", "predict",
			"outcome", "error",
			"seq", seq,
			"error", err,
		)
	} else {
		outcome := result
		next.Result = &outcome
	}
	c.state = next
	snapshot := next.clone()
	c.mu.Unlock()

	c.notify(snapshot)
	return snapshot
}

// abandonLocked ends any in-flight submission so its response is discarded.
// Callers hold c.mu.
func (c *Controller) abandonLocked() State {
	next := c.state
	if next.Loading {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		next.Loading = false
		next.Seq++
	}
	return next
}

func (c *Controller) notify(state State) {
	if c.onChange != nil {
		c.onChange(state)
	}
}
