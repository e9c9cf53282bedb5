package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	repository "github.com/okian/fanhop/internal/adapters/repository"
	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/pkg/logger"
)

// Standing is a model's place on an edition's leaderboard.
type Standing struct {
	repository.Entry
	EditionID string `json:"edition"`
	Total     int    `json:"total"`
}

func (s *Service) board(editionID string) (*repository.TreapStore, string, error) {
	e, err := s.catalog.Get(editionID)
	if err != nil {
		return nil, "", err
	}
	b, ok := s.boards[e.ID]
	if !ok {
		return nil, e.ID, fmt.Errorf("%w: %s", ErrNoResults, e.ID)
	}
	return b, e.ID, nil
}

// Leaderboard returns the top n public models of an edition.
func (s *Service) Leaderboard(ctx context.Context, editionID string, n int) ([]repository.Entry, error) {
	b, _, err := s.board(editionID)
	if err != nil {
		return nil, err
	}
	entries, err := b.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return entries, nil
}

// Rank returns where a public model stands on an edition's leaderboard.
func (s *Service) Rank(ctx context.Context, editionID, modelID string) (Standing, error) {
	b, id, err := s.board(editionID)
	if err != nil {
		return Standing{}, err
	}
	entry, err := b.Rank(ctx, modelID)
	if err != nil {
		return Standing{}, err
	}
	return Standing{Entry: entry, EditionID: id, Total: b.Count(ctx)}, nil
}

// rebuild regrades every public model into empty boards.
func (s *Service) rebuild(ctx context.Context) error {
	start := time.Now()
	for _, b := range s.boards {
		b.Reset(ctx)
	}
	models, err := s.store.ListPublic(ctx)
	if err != nil {
		return fmt.Errorf("list public models: %w", err)
	}
	for _, m := range models {
		if err := s.rank(ctx, m); err != nil {
			s.log().Warn(ctx, "skipping model during rebuild",
				logger.String("model_id", m.ID),
				logger.Error(err),
			)
		}
	}
	s.log().Info(ctx, "leaderboards rebuilt",
		logger.Int("models", len(models)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// rank grades m and places it on the board of its edition, and only there.
func (s *Service) rank(ctx context.Context, m storage.Model) error {
	s.unrank(ctx, m.ID, m.EditionID)
	b, ok := s.boards[m.EditionID]
	if !ok {
		return nil
	}
	e, err := s.catalog.Get(m.EditionID)
	if err != nil {
		return err
	}
	t := bracket.Simulate(e, m.Weights)
	card, err := s.grade(e.ID, t)
	if err != nil {
		return err
	}
	_, err = b.Upsert(ctx, repository.Entry{
		ModelID:  m.ID,
		Name:     m.Name,
		Slug:     m.Slug,
		Champion: t.Champion,
		Points:   card.Total,
	})
	return err
}

// unrank drops a model from every board except keep.
func (s *Service) unrank(ctx context.Context, modelID, keep string) {
	for id, b := range s.boards {
		if id == keep {
			continue
		}
		if _, err := b.Remove(ctx, modelID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log().Warn(ctx, "leaderboard remove failed",
				logger.String("edition", id),
				logger.String("model_id", modelID),
				logger.Error(err),
			)
		}
	}
}
