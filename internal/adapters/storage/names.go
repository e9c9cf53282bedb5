package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/cases"
)

const (
	slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugLength   = 10
)

// NameKey folds a model name for uniqueness checks.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NewID returns a fresh model id.
func NewID() string {
	return uuid.NewString()
}

// NewSlug returns a fresh public share slug.
func NewSlug() (string, error) {
	return gonanoid.Generate(slugAlphabet, slugLength)
}

// SortNewestFirst orders models by UpdatedAt desc, then id asc.
func SortNewestFirst(models []Model) {
	sort.SliceStable(models, func(i, j int) bool {
		if !models[i].UpdatedAt.Equal(models[j].UpdatedAt) {
			return models[i].UpdatedAt.After(models[j].UpdatedAt)
		}
		return models[i].ID < models[j].ID
	})
}

// Apply builds the stored form of a save request on top of an existing model.
// A zero existing model means insert.
func Apply(existing Model, req SaveRequest, now time.Time) Model {
	m := existing
	if m.ID == "" {
		m.ID = NewID()
		m.OwnerID = req.OwnerID
		m.CreatedAt = now
	}
	m.Name = strings.TrimSpace(req.Name)
	m.Weights = req.Weights
	m.EditionID = req.EditionID
	m.Champion = req.Champion
	m.UpdatedAt = now
	return m
}
