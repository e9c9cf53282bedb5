package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// DefaultLeaderboardLimit applies when ?limit is absent.
const DefaultLeaderboardLimit = 10

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardService
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardService, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N&e= requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := r.URL.Query()
	n := DefaultLeaderboardLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, badRequest(op, fmt.Errorf("limit must be a positive integer")))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, fmt.Errorf("%s: %w: at most %d", op, ErrLimitExceeded, h.maxLimit))
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), q.Get(paramEdition), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
