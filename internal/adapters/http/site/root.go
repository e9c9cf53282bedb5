// Package site serves the HTML landing page.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/stats"
)

// ErrRender is returned when the landing page cannot be rendered.
var ErrRender = errors.New("site render failed")

//go:embed templates/*.html.tmpl
var templatesFS embed.FS

var index = template.Must(template.ParseFS(templatesFS, "templates/index.html.tmpl"))

type editionView struct {
	ID         string
	Name       string
	Teams      int
	HasResults bool
	Default    bool
}

type pageData struct {
	Editions []editionView
	Presets  []stats.Preset
	Default  string
}

// RootHandler renders the landing page.
type RootHandler struct {
	catalog *edition.Catalog
}

// NewRootHandler creates a new root handler.
func NewRootHandler(catalog *edition.Catalog) *RootHandler {
	return &RootHandler{catalog: catalog}
}

// Register attaches the landing page to mux.
func Register(_ context.Context, mux *http.ServeMux, catalog *edition.Catalog) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", NewRootHandler(catalog).HandleRoot)
}

// HandleRoot handles GET / with the editions and presets the API serves.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.render(&buf); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *RootHandler) render(buf *bytes.Buffer) error {
	data := pageData{Presets: stats.Presets(), Default: h.catalog.DefaultID()}
	for _, e := range h.catalog.List() {
		data.Editions = append(data.Editions, editionView{
			ID:         e.ID,
			Name:       e.Name,
			Teams:      len(e.Teams),
			HasResults: e.HasResults(),
			Default:    e.ID == data.Default,
		})
	}
	if err := index.Execute(buf, data); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
