package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageTemplates struct {
	login    *template.Template
	register *template.Template
	student  *template.Template
	teacher  *template.Template
	admin    *template.Template
}

func loadPages() pageTemplates {
	return pageTemplates{
		login:    parsePage("login.html"),
		register: parsePage("register.html"),
		student:  parsePage("student.html"),
		teacher:  parsePage("teacher.html"),
		admin:    parsePage("admin.html"),
	}
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

func render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Printf("render: %v", err)
	}
}
