// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns published pages into HTML for visitors.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

// DefaultSiteName is shown in the page header when none is configured.
const DefaultSiteName = "BlockCMS"

// Renderer handles template rendering with caching.
type Renderer struct {
	templates map[string]*template.Template
	siteName  string
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS fs.FS
	SiteName    string
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  cfg.SiteName,
	}
	if r.siteName == "" {
		r.siteName = DefaultSiteName
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates pairs every public template with the base layout.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	const baseLayout = "layouts/base.html"

	pages, err := fs.Glob(templatesFS, "public/*.html")
	if err != nil {
		return fmt.Errorf("listing public templates: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no templates found under public/")
	}

	for _, tmplPath := range pages {
		name := "public/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, baseLayout, tmplPath)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"audienceLabel": AudienceLabel,
		"optionAt": func(options []string, i int) string {
			if i < 0 || i >= len(options) {
				return ""
			}
			return options[i]
		},
	}
}

// AudienceLabel returns the display name of a page audience.
func AudienceLabel(audience string) string {
	switch audience {
	case model.AudienceJunior:
		return "Junior"
	case model.AudienceUndergrad:
		return "Undergraduate"
	default:
		return "General"
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	SiteName    string
	CurrentYear int
}

// Render renders a template with the given status code.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.SiteName = r.siteName
	data.CurrentYear = time.Now().Year()

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
