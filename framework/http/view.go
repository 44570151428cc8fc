package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"
)

// ViewEngine renders html/template files from a filesystem. Templates are
// parsed once per name and cached.
type ViewEngine struct {
	fsys fs.FS
	ext  string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewViewEngine creates a ViewEngine over fsys. ext is the file extension
// (e.g. ".html").
func NewViewEngine(fsys fs.FS, ext string) *ViewEngine {
	return &ViewEngine{fsys: fsys, ext: ext, cache: make(map[string]*template.Template)}
}

// View renders name inside layout with status 200. The layout file must
// {{template "content" .}}.
//
//	engine.View(w, "layout", "users/index", data)
func (ve *ViewEngine) View(w http.ResponseWriter, layout, name string, data any) error {
	return ve.ViewStatus(w, http.StatusOK, layout, name, data)
}

// ViewStatus is View with an explicit status. Nothing is written to w when
// rendering fails, so the caller can still send an error response.
func (ve *ViewEngine) ViewStatus(w http.ResponseWriter, status int, layout, name string, data any) error {
	var buf bytes.Buffer
	if err := ve.Render(&buf, layout, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Render executes name inside layout into w.
func (ve *ViewEngine) Render(w io.Writer, layout, name string, data any) error {
	tmpl, err := ve.lookup(layout, name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("view: rendering %s: %w", name, err)
	}
	return nil
}

func (ve *ViewEngine) lookup(layout, name string) (*template.Template, error) {
	key := layout + "|" + name
	ve.mu.Lock()
	defer ve.mu.Unlock()
	if tmpl, ok := ve.cache[key]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New("layout").ParseFS(ve.fsys, layout+ve.ext, name+ve.ext)
	if err != nil {
		return nil, fmt.Errorf("view: parsing %s: %w", name, err)
	}
	ve.cache[key] = tmpl
	return tmpl, nil
}
