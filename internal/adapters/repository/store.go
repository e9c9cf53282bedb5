// Package repository holds the per-edition leaderboard of public models.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank     int    `json:"rank"`
	ModelID  string `json:"model_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	Champion string `json:"champion"`
	Points   int    `json:"points"`
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Upsert places or moves a model on the board.
	// Returns true if the model was not ranked before.
	Upsert(ctx context.Context, e Entry) (bool, error)

	// Remove drops a model. Returns false if it was not ranked.
	Remove(ctx context.Context, modelID string) (bool, error)

	// Rank returns the current rank and points for a model.
	// Returns ErrNotFound if the model is not ranked.
	Rank(ctx context.Context, modelID string) (Entry, error)

	// TopN returns the top-N entries ordered by points desc, model id asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked models.
	Count(ctx context.Context) int
}
