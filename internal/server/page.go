package server

import (
	"embed"
	"html/template"
)

//go:embed web/index.html.tmpl
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html.tmpl"))
