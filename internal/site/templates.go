package site

import (
	"embed"
	"html/template"
)

// templateFS contains the HTML templates bundled with the binary.
//
//go:embed templates/*
var templateFS embed.FS

type templateSet struct {
	page     *template.Template
	notFound *template.Template
}

// parseTemplates builds one template per view, each a clone of the layout
// with its own "content" block.
func parseTemplates() (*templateSet, error) {
	layout, err := template.New("layout.gohtml").ParseFS(templateFS, "templates/layout.gohtml")
	if err != nil {
		return nil, err
	}
	view := func(file string) (*template.Template, error) {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		return clone.ParseFS(templateFS, "templates/"+file)
	}
	page, err := view("page.gohtml")
	if err != nil {
		return nil, err
	}
	notFound, err := view("notfound.gohtml")
	if err != nil {
		return nil, err
	}
	return &templateSet{page: page, notFound: notFound}, nil
}
