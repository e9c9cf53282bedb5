package api

import (
	"errors"
	"net/http"

	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/codec/brackettoken"
	"github.com/okian/fanhop/internal/codec/modeltoken"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/scorecard"
	"github.com/okian/fanhop/internal/domain/stats"
)

// Query parameters shared by the simulation endpoints.
const (
	paramModel   = modeltoken.QueryParam
	paramBracket = brackettoken.QueryParam
	paramEdition = brackettoken.EditionParam
	paramPreset  = "preset"
)

// SimulateHandler handles simulation, bracket and scoring requests.
type SimulateHandler struct {
	deps SimulationService
}

// NewSimulateHandler creates a new simulate handler.
func NewSimulateHandler(deps SimulationService) *SimulateHandler {
	return &SimulateHandler{deps: deps}
}

type simulateRequest struct {
	Edition string         `json:"edition"`
	Name    string         `json:"name"`
	Preset  string         `json:"preset"`
	Weights *stats.Weights `json:"weights"`
}

type bracketResponse struct {
	EditionID    string             `json:"edition"`
	BracketToken string             `json:"bracket_token"`
	Tournament   bracket.Tournament `json:"tournament"`
	Champion     string             `json:"champion"`
}

type bracketScoreResponse struct {
	EditionID    string         `json:"edition"`
	BracketToken string         `json:"bracket_token"`
	Card         scorecard.Card `json:"scorecard"`
}

// modelFromQuery reads ?m= or ?preset= into a simulate request.
func modelFromQuery(r *http.Request) (service.SimulateRequest, error) {
	q := r.URL.Query()
	m, source, err := service.ResolveModel(q.Get(paramModel), q.Get(paramPreset))
	if err != nil {
		return service.SimulateRequest{}, err
	}
	return service.SimulateRequest{
		EditionID: q.Get(paramEdition),
		Name:      m.Name,
		Weights:   m.Weights,
		Source:    source,
	}, nil
}

// HandleGetSimulate handles GET /simulate?m=&preset=&e=.
func (h *SimulateHandler) HandleGetSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := modelFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sim, err := h.deps.Simulate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// HandlePostSimulate handles POST /simulate with explicit weights or a preset.
func (h *SimulateHandler) HandlePostSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_simulate"
	var body simulateRequest
	if err := decodeJSON(w, r, op, &body); err != nil {
		writeError(w, err)
		return
	}

	req := service.SimulateRequest{EditionID: body.Edition, Name: body.Name, Source: service.SourceWeights}
	switch {
	case body.Weights != nil:
		req.Weights = *body.Weights
	case body.Preset != "":
		m, source, err := service.ResolveModel("", body.Preset)
		if err != nil {
			writeError(w, err)
			return
		}
		req.Weights, req.Source = m.Weights, source
		if req.Name == "" {
			req.Name = m.Name
		}
	default:
		req.Weights, req.Source = stats.DefaultWeights(), service.SourceDefault
	}

	sim, err := h.deps.Simulate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// HandleGetBracket handles GET /bracket?b=&e= by replaying a bracket token.
func (h *SimulateHandler) HandleGetBracket(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_bracket"
	q := r.URL.Query()
	token := q.Get(paramBracket)
	if token == "" {
		writeError(w, badRequest(op, errors.New("missing b parameter")))
		return
	}
	e, err := h.deps.Catalog().Get(q.Get(paramEdition))
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.deps.DecodeBracket(r.Context(), e.ID, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bracketResponse{
		EditionID:    e.ID,
		BracketToken: token,
		Tournament:   t,
		Champion:     t.Champion,
	})
}

// HandleGetScore handles GET /score. A ?b= bracket token is graded as is;
// otherwise the model named by ?m= or ?preset= is simulated first.
func (h *SimulateHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if token := q.Get(paramBracket); token != "" {
		e, err := h.deps.Catalog().Get(q.Get(paramEdition))
		if err != nil {
			writeError(w, err)
			return
		}
		card, err := h.deps.ScoreBracket(r.Context(), e.ID, token)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bracketScoreResponse{EditionID: e.ID, BracketToken: token, Card: card})
		return
	}

	req, err := modelFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	graded, err := h.deps.Score(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graded)
}
