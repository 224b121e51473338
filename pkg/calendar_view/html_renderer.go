package calendar_view

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templates embed.FS

type HtmlRendererImpl struct {
	tmpl *template.Template
}

func NewHtmlRenderer() *HtmlRendererImpl {
	return &HtmlRendererImpl{
		tmpl: template.Must(template.ParseFS(templates, "templates/calendar.html")),
	}
}

func (r *HtmlRendererImpl) RenderPage(w io.Writer, page Page) error {
	return r.tmpl.ExecuteTemplate(w, "calendar.html", page)
}
