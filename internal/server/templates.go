package server

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var tmplFS embed.FS

func pageTemplates() *template.Template {
	return template.Must(template.ParseFS(tmplFS, "templates/*.html"))
}
