// Package render writes view models out as HTML pages, PDF reports and
// Markdown. It is the only place that produces bytes for the viewer.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yourusername/tickerlens/internal/model"
	"github.com/yourusername/tickerlens/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is what every template receives. Only one of Company and
// Comparison is set.
type PageData struct {
	Title         string
	Query         string
	CompareQuery  string
	Error         string
	Company       *view.CompanyPage
	Comparison    *view.ComparisonPage
	NarrativeHTML template.HTML
	Charts        []*view.ChartHandle
	History       []model.SearchRecord
}

// HTML renders full pages from the embedded template set.
type HTML struct {
	pages map[string]*template.Template
	md    goldmark.Markdown
}

var pageNames = []string{"index", "company", "compare", "error"}

func NewHTML() (*HTML, error) {
	funcs := template.FuncMap{
		"join":       strings.Join,
		"span":       func(cols []string) int { return len(cols) + 1 },
		"isSection":  func(r view.Row) bool { return r.Kind == view.RowSection },
		"isEmphasis": func(r view.Row) bool { return r.Kind == view.RowEmphasis },
		"live":       func(h *view.ChartHandle) bool { return h != nil && !h.Released() },
	}

	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	h := &HTML{
		pages: make(map[string]*template.Template, len(pageNames)),
		md:    goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

func (h *HTML) execute(w io.Writer, name string, data PageData) error {
	t, ok := h.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	// Render into a buffer so a template failure never leaves half a page on the wire.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (h *HTML) Index(w io.Writer, history []model.SearchRecord) error {
	return h.execute(w, "index", PageData{Title: "Tickerlens", History: history})
}

// Error renders the search page with a single error banner.
func (h *HTML) Error(w io.Writer, query, compareQuery, msg string) error {
	return h.execute(w, "error", PageData{
		Title:        "Tickerlens",
		Query:        query,
		CompareQuery: compareQuery,
		Error:        msg,
	})
}

func (h *HTML) Company(w io.Writer, p *view.CompanyPage) error {
	data := PageData{
		Title:   p.Name + " (" + p.Symbol + ") | Tickerlens",
		Query:   p.Symbol,
		Company: p,
		Charts:  liveCharts(p.Sections),
	}
	if p.Narrative != nil {
		html, err := h.markdown(p.Narrative.Markdown())
		if err != nil {
			return err
		}
		data.NarrativeHTML = html
	}
	return h.execute(w, "company", data)
}

func (h *HTML) Comparison(w io.Writer, p *view.ComparisonPage) error {
	data := PageData{
		Title:        "Compare " + strings.Join(p.Symbols, ", ") + " | Tickerlens",
		CompareQuery: strings.Join(p.Symbols, ","),
		Comparison:   p,
		Charts:       liveCharts(p.Sections),
	}
	if p.Comparison != nil {
		html, err := h.markdown(p.Comparison.Markdown())
		if err != nil {
			return err
		}
		data.NarrativeHTML = html
	}
	return h.execute(w, "compare", data)
}

// markdown converts generated narrative text. goldmark escapes raw HTML by
// default, so the result is safe to embed.
func (h *HTML) markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting narrative markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// liveCharts skips handles the session has already released, so a page
// built before a newer request never redraws stale charts.
func liveCharts(sections []view.Section) []*view.ChartHandle {
	var out []*view.ChartHandle
	for _, s := range sections {
		if s.Chart != nil && !s.Chart.Released() {
			out = append(out, s.Chart)
		}
	}
	return out
}
