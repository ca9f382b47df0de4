// Package view holds the server-rendered pages.
package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Page names, one per route.
const (
	Index  = "index.html"
	Add    = "add.html"
	Tasks  = "tasks.html"
	Update = "update.html"
	Delete = "delete.html"
)

var Templates = template.Must(template.ParseFS(files, "templates/*.html"))
