package api

import (
	"net/http"
	"time"

	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/stats"
)

// CatalogHandler serves the static reference data.
type CatalogHandler struct {
	catalog *edition.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *edition.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type editionResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	AsOf       *time.Time `json:"as_of,omitempty"`
	HasResults bool       `json:"has_results"`
	Default    bool       `json:"default"`
	Teams      int        `json:"teams"`
}

// HandleEditions handles GET /editions.
func (h *CatalogHandler) HandleEditions(w http.ResponseWriter, r *http.Request) {
	eds := h.catalog.List()
	out := make([]editionResponse, 0, len(eds))
	for _, e := range eds {
		resp := editionResponse{
			ID:         e.ID,
			Name:       e.Name,
			HasResults: e.HasResults(),
			Default:    e.ID == h.catalog.DefaultID(),
			Teams:      len(e.Teams),
		}
		if !e.AsOf.IsZero() {
			asOf := e.AsOf
			resp.AsOf = &asOf
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

type statResponse struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

type groupResponse struct {
	Label string   `json:"label"`
	Stats []string `json:"stats"`
}

type presetResponse struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Weights stats.Weights `json:"weights"`
}

type statsResponse struct {
	Stats          []statResponse   `json:"stats"`
	Groups         []groupResponse  `json:"groups"`
	Presets        []presetResponse `json:"presets"`
	DefaultWeights stats.Weights    `json:"default_weights"`
	MinWeight      int              `json:"min_weight"`
	MaxWeight      int              `json:"max_weight"`
}

// HandleStats handles GET /stats: the stat keys, their groups and presets.
func (h *CatalogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		DefaultWeights: stats.DefaultWeights(),
		MinWeight:      stats.MinWeight,
		MaxWeight:      stats.MaxWeight,
	}
	for _, s := range stats.All() {
		resp.Stats = append(resp.Stats, statResponse{Index: int(s), Key: s.Key(), Label: s.Label()})
	}
	for _, g := range stats.Groups() {
		gr := groupResponse{Label: g.Label}
		for _, s := range g.Stats {
			gr.Stats = append(gr.Stats, s.Key())
		}
		resp.Groups = append(resp.Groups, gr)
	}
	for _, p := range stats.Presets() {
		resp.Presets = append(resp.Presets, presetResponse{Name: p.Name, Label: p.Label, Weights: p.Weights})
	}
	writeJSON(w, http.StatusOK, resp)
}
