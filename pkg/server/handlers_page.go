package server

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-predictform/pkg/form"
	"github.com/goliatone/go-predictform/pkg/orchestrator"
	"github.com/goliatone/go-predictform/pkg/render"
)

const (
	actionSubmit = "submit"
	actionReset  = "reset"
)

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.resolve(w, r)

	opts := render.StateOptions(sess.Controller.State())
	opts.Action = "/"
	opts.Hidden = render.MergeHiddenFields(nil, render.CSRFToken(sess.CSRF))

	out, err := s.orch.Render(r.Context(), orchestrator.Request{
		Renderer: "vanilla",
		Options:  opts,
	})
	if err != nil {
		s.logger.Error("render page failed", "operation", "render", "outcome", "error", "error", err)
		http.Error(w, "unable to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(out.Body)
}

func (s *Server) pageAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.checkedSession(w, r)
	if !ok {
		return
	}

	switch r.PostForm.Get("action") {
	case actionReset:
		sess.Controller.Reset()
	case actionSubmit, "":
		values := form.Values{}
		for _, name := range form.FieldNames() {
			if posted, ok := r.PostForm[name]; ok && len(posted) > 0 {
				values[name] = posted[0]
			}
		}
		if len(values) > 0 {
			if err := sess.Controller.UpdateFields(values); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		s.submit(r, sess)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) pageField(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.checkedSession(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if err := sess.Controller.UpdateField(name, r.PostForm.Get("value")); err != nil {
		if errors.Is(err, form.ErrUnknownField) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newStateResponse(sess.Controller.State()))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// checkedSession parses the posted form and requires a known session whose
// CSRF token matches.
func (s *Server) checkedSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return nil, false
	}
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		http.Error(w, "session required", http.StatusForbidden)
		return nil, false
	}
	sess, ok := s.sessions.Lookup(cookie.Value)
	if !ok {
		http.Error(w, "session expired", http.StatusForbidden)
		return nil, false
	}
	token := r.PostForm.Get(render.CSRFFieldName)
	if subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRF)) != 1 {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return nil, false
	}
	return sess, true
}
