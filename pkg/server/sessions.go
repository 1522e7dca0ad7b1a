package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-predictform/pkg/form"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "predictform_session"

// Session binds one browser to one form controller.
type Session struct {
	ID         string
	CSRF       string
	Controller *form.Controller

	lastSeen time.Time
}

// SessionStore keeps sessions in memory and evicts them after an idle TTL.
// Lookups only check the session they ask for; the full scan runs at most
// once per TTL, from Create or from the server's sweeper.
type SessionStore struct {
	ttl           time.Duration
	now           func() time.Time
	newController func() *form.Controller

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSweep time.Time
}

// NewSessionStore returns a store whose sessions get controllers from
// factory. A zero ttl keeps sessions until the process exits.
func NewSessionStore(ttl time.Duration, factory func() *form.Controller) *SessionStore {
	return &SessionStore{
		ttl:           ttl,
		now:           time.Now,
		newController: factory,
		sessions:      make(map[string]*Session),
	}
}

// Lookup returns the live session for id.
func (s *SessionStore) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// Create starts a new session with fresh ids.
func (s *SessionStore) Create() *Session {
	sess := &Session{
		ID:         uuid.NewString(),
		CSRF:       uuid.NewString(),
		Controller: s.newController(),
	}

	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.ttl {
		s.sweepLocked(now)
	}
	sess.lastSeen = now
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	live := 0
	for _, sess := range s.sessions {
		if !s.expired(sess, now) {
			live++
		}
	}
	return live
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	s.lastSweep = now
	if s.ttl <= 0 {
		return 0
	}
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

// sweepEvery runs Sweep on a ticker until ctx is done. A non-positive
// interval disables it.
func (s *SessionStore) sweepEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// resolve returns the request's session, creating one and setting the cookie
// when the request has none or it expired.
func (s *SessionStore) resolve(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.Lookup(cookie.Value); ok {
			return sess
		}
	}
	sess := s.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}
