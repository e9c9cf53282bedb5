// Package storage persists saved bracket models.
//
// A model is a named weight vector owned by a user, optionally published
// under a short slug. Names are unique per owner, compared case-insensitively.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/fanhop/internal/domain/stats"
)

// MaxNameLength bounds model names in runes.
const MaxNameLength = 80

// Model is a saved weight vector.
type Model struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Name      string        `json:"name"`
	Weights   stats.Weights `json:"weights"`
	EditionID string        `json:"edition"`
	Champion  string        `json:"champion"`
	Public    bool          `json:"is_public"`
	Slug      string        `json:"slug,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SaveRequest carries the fields a caller may set on save.
type SaveRequest struct {
	OwnerID   string
	Name      string
	Weights   stats.Weights
	EditionID string
	Champion  string
}

// Validate checks owner, name and weights.
func (r SaveRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidModel)
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidModel)
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidModel, MaxNameLength)
	}
	if err := r.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return nil
}

// Store provides read/write access to saved models.
type Store interface {
	// Save inserts a model or, when the owner already has one with the same
	// name, replaces its weights. Returns true when an existing model was updated.
	Save(ctx context.Context, req SaveRequest) (Model, bool, error)

	// Get returns a model by id.
	Get(ctx context.Context, id string) (Model, error)

	// List returns an owner's models, most recently updated first.
	List(ctx context.Context, ownerID string) ([]Model, error)

	// SetPublic publishes or hides one of the owner's models.
	SetPublic(ctx context.Context, ownerID, id string, public bool) (Model, error)

	// Delete removes one of the owner's models.
	Delete(ctx context.Context, ownerID, id string) error

	// GetBySlug returns a public model by its share slug.
	GetBySlug(ctx context.Context, slug string) (Model, error)

	// ListPublic returns every public model, most recently updated first.
	ListPublic(ctx context.Context) ([]Model, error)

	// Close releases backend resources.
	Close() error
}
