// Package server serves the prediction form over HTTP. Each browser session
// owns a form controller; the HTML page posts back and is redirected, and a
// JSON API exposes the same operations.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/orchestrator"
	"github.com/goliatone/go-predictform/pkg/predictor"
	"github.com/goliatone/go-predictform/pkg/renderers/vanilla"
)

const (
	readyTimeout    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// HealthChecker probes the prediction service.
type HealthChecker interface {
	Health(ctx context.Context) (predictor.HealthStatus, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and failed predictions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionTTL evicts sessions idle for longer than ttl.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.sessionTTL = ttl
	}
}

// WithHealthChecker backs /readyz with checker.
func WithHealthChecker(checker HealthChecker) Option {
	return func(s *Server) {
		s.health = checker
	}
}

// WithFormOptions passes options to every session controller.
func WithFormOptions(opts ...form.Option) Option {
	return func(s *Server) {
		s.formOptions = append(s.formOptions, opts...)
	}
}

// Server wires the orchestrator, session store and predictor into a router.
type Server struct {
	orch        *orchestrator.Orchestrator
	predictor   form.Predictor
	health      HealthChecker
	logger      *slog.Logger
	sessionTTL  time.Duration
	formOptions []form.Option

	sessions *SessionStore
	router   chi.Router
}

// New builds a Server. The orchestrator renders pages and the predictor
// serves submissions.
func New(orch *orchestrator.Orchestrator, p form.Predictor, opts ...Option) (*Server, error) {
	if orch == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	if p == nil {
		return nil, errors.New("server: predictor is required")
	}

	s := &Server{
		orch:      orch,
		predictor: p,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.sessions = NewSessionStore(s.sessionTTL, s.newController)
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions exposes the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.sweepEvery(sweepCtx, s.sessions.ttl)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) newController() *form.Controller {
	opts := append([]form.Option{form.WithLogger(s.logger)}, s.formOptions...)
	return form.New(s.predictor, opts...)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))

	r.Get("/", s.page)
	r.Post("/", s.pageAction)
	r.Post("/fields/{name}", s.pageField)

	r.Route("/api/form", func(r chi.Router) {
		r.Get("/", s.apiForm)
		r.Get("/state", s.apiState)
		r.Put("/fields/{name}", s.apiField)
		r.Post("/reset", s.apiReset)
		r.Post("/submit", s.apiSubmit)
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, predictor.HealthStatus{Status: "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, predictor.HealthStatus{Status: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, err := s.health.Health(ctx)
	if err != nil {
		s.logger.Warn("readiness check failed", "operation", "health", "outcome", "error", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// submit runs a prediction detached from the request so a dropped
// connection does not abandon it.
func (s *Server) submit(r *http.Request, sess *Session) form.State {
	state := sess.Controller.Submit(context.WithoutCancel(r.Context()))
	s.logger.Debug("prediction submitted",
		"session", sess.ID,
		"phase", state.Phase(),
		"request_id", middleware.GetReqID(r.Context()),
	)
	return state
}
