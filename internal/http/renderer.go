package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
)

const (
	layoutGlob   = "layout.tmpl"
	partialsGlob = "partials/*.tmpl"
	pagesGlob    = "pages/*.tmpl"
)

// TemplateRenderer renders HTML pages. Each page template is parsed
// together with the shared layout and partials, so pages only define their
// content block. In dev mode templates are re-parsed on every render.
type TemplateRenderer struct {
	fsys    fs.FS
	pages   map[string]*template.Template
	devMode bool
	logger  *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	// TemplateFS contains layout.tmpl, partials/ and pages/ (required).
	TemplateFS fs.FS
	// DevMode re-parses templates on each request.
	DevMode bool
	Logger  *slog.Logger
}

// NewTemplateRenderer parses every page template up front.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	r := &TemplateRenderer{
		fsys:    cfg.TemplateFS,
		devMode: cfg.DevMode,
		logger:  cfg.Logger,
	}
	pages, err := parsePages(cfg.TemplateFS)
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	names, err := fs.Glob(fsys, pagesGlob)
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}
	if len(names) == 0 {
		return nil, errors.New("no page templates found")
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.New(layoutGlob).
			Funcs(templateFuncs()).
			ParseFS(fsys, layoutGlob, partialsGlob, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[pageName(name)] = t
	}
	return pages, nil
}

func pageName(file string) string {
	return strings.TrimSuffix(path.Base(file), ".tmpl")
}

// Render writes the named page. The body is rendered to a buffer first so a
// template fault never ships a half-written page.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, err := r.lookup(page)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutGlob, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func (r *TemplateRenderer) lookup(page string) (*template.Template, error) {
	if r.devMode {
		pages, err := parsePages(r.fsys)
		if err != nil {
			return nil, err
		}
		r.pages = pages
	}
	t, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page template %q", page)
	}
	return t, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"deref": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
		"friendlyTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		// Post content arrives sanitized from the backend.
		"postHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203
		},
	}
}
