package web

import (
	"net/http"

	"cloudgrade-web/internal/api"
	"cloudgrade-web/internal/config"
	"cloudgrade-web/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

type Server struct {
	API      *api.Client
	Sessions *session.Store
	Config   config.Config

	validate *validator.Validate
	pages    pageTemplates
}

func NewServer(client *api.Client, sessions *session.Store, cfg config.Config) *Server {
	return &Server{
		API:      client,
		Sessions: sessions,
		Config:   cfg,
		validate: validator.New(),
		pages:    loadPages(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	r.Get("/login", s.LoginPage)
	r.Post("/login", s.Login)
	r.Get("/register", s.RegisterPage)
	r.Post("/register", s.Register)
	r.Get("/logout", s.Logout)

	r.Route("/dashboard/student", func(student chi.Router) {
		student.Use(s.RequireRole(session.RoleStudent))
		student.Get("/", s.StudentDashboard)
	})

	r.Route("/dashboard/teacher", func(teacher chi.Router) {
		teacher.Use(s.RequireRole(session.RoleTeacher))
		teacher.Get("/", s.TeacherDashboard)
		teacher.Post("/upload", s.TeacherUpload)
		teacher.Post("/grades/{gradeId}/update", s.TeacherUpdateGrade)
		teacher.Post("/grades/{gradeId}/delete", s.TeacherDeleteGrade)
		teacher.Post("/period", s.TeacherSetPeriod)
	})

	r.Route("/dashboard/admin", func(admin chi.Router) {
		admin.Use(s.RequireRole(session.RoleAdmin))
		admin.Get("/", s.AdminDashboard)
		admin.Post("/{table}/{rowId}/update", s.AdminUpdateRow)
		admin.Post("/{table}/{rowId}/delete", s.AdminDeleteRow)
	})

	// Unknown paths redirect to login, same as the catch-all route.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	return r
}
