package web

import (
	"net/http"
	"strings"

	"cloudgrade-web/internal/api"
	"cloudgrade-web/internal/session"
)

const (
	genericLoginError    = "Login failed: invalid credentials"
	genericRegisterError = "Registration failed: unknown error"
)

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type registerForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Role     string `validate:"required,oneof=STUDENT TEACHER"`
}

type authPageData struct {
	Error    string
	Message  string
	Username string
	Role     string
}

// LoginPage renders the login form. A visitor who already holds a session is
// sent straight to the dashboard matching the cached role.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.Sessions.Load(r); ok {
		http.Redirect(w, r, sess.User.Role.DashboardPath(), http.StatusSeeOther)
		return
	}
	render(w, s.pages.login, authPageData{})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, s.pages.login, authPageData{Error: genericLoginError})
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if err := s.validate.Struct(form); err != nil {
		render(w, s.pages.login, authPageData{
			Error:    "Username and password are required",
			Username: form.Username,
		})
		return
	}

	result, err := s.API.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		render(w, s.pages.login, authPageData{
			Error:    "Login failed: " + api.ErrorMessage(err, "invalid credentials"),
			Username: form.Username,
		})
		return
	}

	sess := session.Session{
		Token: result.Token,
		User: session.User{
			ID:       result.ID,
			Username: result.Username,
			Role:     session.Role(result.Role),
		},
	}
	if err := s.Sessions.Save(w, r, sess); err != nil {
		render(w, s.pages.login, authPageData{Error: genericLoginError, Username: form.Username})
		return
	}
	http.Redirect(w, r, sess.User.Role.DashboardPath(), http.StatusSeeOther)
}

func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, s.pages.register, authPageData{Role: string(session.RoleStudent)})
}

// Register creates an account and, on success, shows a confirmation that
// forwards to the login view after a short delay.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, s.pages.register, authPageData{Error: genericRegisterError})
		return
	}
	form := registerForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
	}
	if err := s.validate.Struct(form); err != nil {
		render(w, s.pages.register, authPageData{
			Error:    "All fields are required, and the role must be STUDENT or TEACHER",
			Username: form.Username,
			Role:     form.Role,
		})
		return
	}

	if err := s.API.Register(r.Context(), form.Username, form.Password, form.Role); err != nil {
		render(w, s.pages.register, authPageData{
			Error:    "Registration failed: " + api.ErrorMessage(err, "unknown error"),
			Username: form.Username,
			Role:     form.Role,
		})
		return
	}
	render(w, s.pages.register, authPageData{
		Message: "Registration successful, redirecting to login...",
	})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
