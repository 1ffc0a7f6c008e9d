package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	pdf       *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        string
	Data        any
}

var printer = message.NewPrinter(language.Spanish)

// Money formats an amount as 1.234,50 €.
func Money(v float64) string {
	return printer.Sprintf("%.2f €", v)
}

// Number formats a quantity with Spanish grouping and up to two decimals.
func Number(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}

// Date renders an ISO date (YYYY-MM-DD) as DD/MM/YYYY.
func Date(iso string) string {
	if iso == "" {
		return "-"
	}
	t, err := time.Parse("2006-01-02", iso[:min(len(iso), 10)])
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// Funcs is the function map shared by page and PDF templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
		"isoDate": Date,
		"money":   Money,
		"number":  Number,
		"add":     func(a, b int) int { return a + b },
		"hasPrefix": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},
		"navActive": func(current, section string) bool {
			if section == "/" {
				return current == "/"
			}
			return current == section || strings.HasPrefix(current, section+"/")
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(Funcs()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	pdf, err := template.New("pdf").Funcs(Funcs()).ParseFS(web.Templates, "templates/pdf/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, pdf: pdf}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderStatus writes status before rendering.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderDocument executes a standalone document template (used for PDFs).
func (e *Engine) RenderDocument(name string, data any) (string, error) {
	if e == nil {
		return "", fmt.Errorf("template engine not initialised")
	}
	var b strings.Builder
	if err := e.pdf.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
