package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-predictform/pkg/predictor"
)

// StubPredictor records requests and replies with a canned result or error.
// Respond, when set, overrides both.
type StubPredictor struct {
	Result  predictor.Result
	Err     error
	Respond func(ctx context.Context, req predictor.Request) (predictor.Result, error)

	mu       sync.Mutex
	requests []predictor.Request
}

// Predict records req and returns the configured outcome.
func (s *StubPredictor) Predict(ctx context.Context, req predictor.Request) (predictor.Result, error) {
	s.mu.Lock()
	clone := make(predictor.Request, len(req))
	for key, value := range req {
		clone[key] = value
	}
	s.requests = append(s.requests, clone)
	respond := s.Respond
	s.mu.Unlock()

	if respond != nil {
		return respond(ctx, req)
	}
	return s.Result, s.Err
}

// Requests returns the recorded requests.
func (s *StubPredictor) Requests() []predictor.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]predictor.Request(nil), s.requests...)
}

// Calls reports how many requests were made.
func (s *StubPredictor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
