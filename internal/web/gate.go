package web

import (
	"context"
	"errors"
	"net/http"

	"cloudgrade-web/internal/api"
	"cloudgrade-web/internal/session"
)

// RequireRole guards a protected route. It re-evaluates the session on every
// request: no cached decision survives a navigation. An absent session or a
// role mismatch both redirect to the login view.
func (s *Server) RequireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := s.Sessions.Load(r)
			if !ok || sess.User.Role != role {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}

// apiContext returns a request context carrying the gated session's token so
// the API client transport can attach it.
func apiContext(r *http.Request) (context.Context, session.Session) {
	sess, _ := session.FromContext(r.Context())
	return api.WithToken(r.Context(), sess.Token), sess
}

// handleUnauthorized implements the global reaction to a backend rejection:
// the session is destroyed and the user lands on the login view, whatever
// they were doing. Returns true when err was that rejection.
func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	s.Sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}
