package site

import (
	"embed"
	"html/template"
)

//go:embed templates
var templatesFS embed.FS

// templates holds the parsed console pages. Parsing happens once at
// package load; a broken template fails fast instead of at request time.
var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))
