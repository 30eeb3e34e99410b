package http

import (
	"net/http"

	"canestats/internal/core"
)

// SessionGate decides whether a request belongs to an authenticated
// dashboard session. Authentication itself lives outside this service; the
// gate only reports its outcome and ends sessions on logout.
type SessionGate interface {
	Session(r *http.Request) core.Session
	Logout(w http.ResponseWriter, r *http.Request)
}

// OpenGate treats every request as authenticated.
type OpenGate struct{}

func (OpenGate) Session(*http.Request) core.Session {
	return core.Session{Authenticated: true}
}

func (OpenGate) Logout(http.ResponseWriter, *http.Request) {}

// HeaderGate trusts an authenticating proxy that sets a user header.
type HeaderGate struct {
	Header string
}

func (g HeaderGate) Session(r *http.Request) core.Session {
	return core.Session{Authenticated: r.Header.Get(g.Header) != ""}
}

func (HeaderGate) Logout(http.ResponseWriter, *http.Request) {}

// session resolves the caller's session and attaches the filters carried by
// the request.
func (s *Server) session(r *http.Request) (core.Session, error) {
	sess := s.gate.Session(r)
	if !sess.Authenticated {
		return sess, nil
	}
	f, err := ParseFilters(r.URL.Query())
	if err != nil {
		return sess, err
	}
	sess.Filters = f
	return sess, nil
}

// requireSession answers 401 for unauthenticated API calls.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.Session(r).Authenticated {
			s.writeError(w, r, UnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}
