package api

import (
	"net/http"
)

// RankHandler handles rank requests.
type RankHandler struct {
	deps LeaderboardService
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps LeaderboardService) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{model_id}?e= requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	standing, err := h.deps.Rank(r.Context(), r.URL.Query().Get(paramEdition), r.PathValue("model_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standing)
}
