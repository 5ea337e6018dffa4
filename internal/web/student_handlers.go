package web

import (
	"net/http"

	"cloudgrade-web/internal/api"
	"cloudgrade-web/internal/session"
)

const (
	periodClosedMessage      = "Grade queries are not open at this time. Please contact your teacher."
	periodUnavailableMessage = "The query window status could not be determined. Please try again later."
)

type studentPageData struct {
	User         session.User
	Tab          string
	Grades       []api.GradeRecord
	QueryAllowed bool
	QueryMessage string
}

// StudentDashboard renders the student tabs. Entering the grades tab first
// checks whether the query period is open; grades are only fetched when it
// is.
func (s *Server) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	data := studentPageData{
		User:         sess.User,
		Tab:          r.URL.Query().Get("tab"),
		QueryAllowed: true,
	}
	if data.Tab != "grades" {
		data.Tab = "home"
	}

	if data.Tab == "grades" {
		open, err := s.API.QueryPeriodOpen(ctx)
		switch {
		case err != nil:
			if s.handleUnauthorized(w, r, err) {
				return
			}
			data.QueryAllowed = false
			data.QueryMessage = periodUnavailableMessage
		case !open:
			data.QueryAllowed = false
			data.QueryMessage = periodClosedMessage
		default:
			grades, err := s.API.GradesByUserID(ctx, sess.User.ID)
			if err != nil {
				if s.handleUnauthorized(w, r, err) {
					return
				}
				data.QueryMessage = "Could not load grades: " + api.ErrorMessage(err, "unknown error")
			}
			data.Grades = grades
		}
	}
	render(w, s.pages.student, data)
}
