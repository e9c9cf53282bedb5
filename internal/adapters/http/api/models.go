package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/fanhop/internal/adapters/storage"
	service "github.com/okian/fanhop/internal/app"
	"github.com/okian/fanhop/internal/domain/stats"
)

// ModelsHandler handles saved model requests.
type ModelsHandler struct {
	deps ModelService
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(deps ModelService) *ModelsHandler {
	return &ModelsHandler{deps: deps}
}

type saveModelRequest struct {
	Name    string         `json:"name"`
	Edition string         `json:"edition"`
	Weights *stats.Weights `json:"weights"`
}

type saveModelResponse struct {
	Model   storage.Model `json:"model"`
	Updated bool          `json:"updated"`
}

type patchModelRequest struct {
	Public *bool `json:"is_public"`
}

func owner(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(OwnerHeader))
	if id == "" {
		return "", ErrNoOwner
	}
	return id, nil
}

// HandleList handles GET /models.
func (h *ModelsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		writeError(w, err)
		return
	}
	models, err := h.deps.Models(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if models == nil {
		models = []storage.Model{}
	}
	writeJSON(w, http.StatusOK, models)
}

// HandleSave handles POST /models. Saving a name the owner already uses
// replaces that model's weights.
func (h *ModelsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_model"
	ownerID, err := owner(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body saveModelRequest
	if err := decodeJSON(w, r, op, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Weights == nil {
		writeError(w, badRequest(op, errors.New("weights are required")))
		return
	}

	m, updated, err := h.deps.SaveModel(r.Context(), service.SaveModelRequest{
		OwnerID:   ownerID,
		Name:      body.Name,
		EditionID: body.Edition,
		Weights:   *body.Weights,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if updated {
		status = http.StatusOK
	}
	writeJSON(w, status, saveModelResponse{Model: m, Updated: updated})
}

// HandlePatch handles PATCH /models/{id} to publish or hide a model.
func (h *ModelsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_model"
	ownerID, err := owner(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body patchModelRequest
	if err := decodeJSON(w, r, op, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Public == nil {
		writeError(w, badRequest(op, errors.New("is_public is required")))
		return
	}
	m, err := h.deps.SetModelPublic(r.Context(), ownerID, r.PathValue("id"), *body.Public)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /models/{id}.
func (h *ModelsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.DeleteModel(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePublic handles GET /models/public/{slug}. No owner is needed.
func (h *ModelsHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.PublicModel(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
