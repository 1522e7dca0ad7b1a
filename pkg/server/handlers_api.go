package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/orchestrator"
	"github.com/goliatone/go-predictform/pkg/render"
)

const maxBodyBytes = 64 << 10

type stateResponse struct {
	Phase form.Phase `json:"phase"`
	form.State
}

func newStateResponse(state form.State) stateResponse {
	return stateResponse{Phase: state.Phase(), State: state}
}

type fieldRequest struct {
	Value *string `json:"value"`
}

func (s *Server) apiForm(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.resolve(w, r)

	out, err := s.orch.Render(r.Context(), orchestrator.Request{
		Renderer: "json",
		Options:  render.StateOptions(sess.Controller.State()),
	})
	if err != nil {
		s.logger.Error("render form document failed", "operation", "render", "outcome", "error", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to render form")
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	_, _ = w.Write(out.Body)
}

func (s *Server) apiState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.resolve(w, r)
	writeJSON(w, http.StatusOK, newStateResponse(sess.Controller.State()))
}

func (s *Server) apiField(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.resolve(w, r)

	var req fieldRequest
	if err := decodeBody(r, &req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, `body must be {"value": "..."}`)
		return
	}
	if err := sess.Controller.UpdateField(chi.URLParam(r, "name"), *req.Value); err != nil {
		if errors.Is(err, form.ErrUnknownField) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(sess.Controller.State()))
}

func (s *Server) apiReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.resolve(w, r)
	sess.Controller.Reset()
	writeJSON(w, http.StatusOK, newStateResponse(sess.Controller.State()))
}

func (s *Server) apiSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.resolve(w, r)

	var values form.Values
	if err := decodeBody(r, &values); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "body must be an object of field values")
		return
	}
	if len(values) > 0 {
		if err := sess.Controller.UpdateFields(values); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, newStateResponse(s.submit(r, sess)))
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
