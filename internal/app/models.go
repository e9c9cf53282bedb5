package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/model"
	"github.com/okian/fanhop/internal/domain/stats"
	"github.com/okian/fanhop/pkg/logger"
	"github.com/okian/fanhop/pkg/metrics"
)

// SaveModelRequest is a model to save for an owner.
type SaveModelRequest struct {
	OwnerID   string
	Name      string
	EditionID string
	Weights   stats.Weights
}

// PublicModel is a published model together with its bracket.
type PublicModel struct {
	Model      storage.Model `json:"model"`
	Simulation Simulation    `json:"simulation"`
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get().Named("service")
}

// SaveModel simulates the model to record its champion, then stores it.
// Saving a name the owner already uses replaces that model's weights.
func (s *Service) SaveModel(ctx context.Context, req SaveModelRequest) (storage.Model, bool, error) {
	e, err := s.catalog.Get(req.EditionID)
	if err != nil {
		return storage.Model{}, false, err
	}
	if err := req.Weights.Validate(); err != nil {
		return storage.Model{}, false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	t := bracket.Simulate(e, req.Weights)

	m, updated, err := s.store.Save(ctx, storage.SaveRequest{
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		Weights:   req.Weights,
		EditionID: e.ID,
		Champion:  t.Champion,
	})
	if err != nil {
		return storage.Model{}, false, err
	}
	if m.Public {
		s.enqueue(ctx, model.Job{ModelID: m.ID, Kind: model.JobGrade})
	}
	return m, updated, nil
}

// Models lists an owner's models, newest first.
func (s *Service) Models(ctx context.Context, ownerID string) ([]storage.Model, error) {
	return s.store.List(ctx, ownerID)
}

// SetModelPublic publishes or hides a model and updates the leaderboard.
func (s *Service) SetModelPublic(ctx context.Context, ownerID, id string, public bool) (storage.Model, error) {
	m, err := s.store.SetPublic(ctx, ownerID, id, public)
	if err != nil {
		return storage.Model{}, err
	}
	s.enqueue(ctx, model.Job{ModelID: m.ID, Kind: model.JobGrade})
	return m, nil
}

// DeleteModel removes a model and takes it off the leaderboard.
func (s *Service) DeleteModel(ctx context.Context, ownerID, id string) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.enqueue(ctx, model.Job{ModelID: id, Kind: model.JobRemove})
	return nil
}

// PublicModel returns a published model by slug with its simulated bracket.
func (s *Service) PublicModel(ctx context.Context, slug string) (PublicModel, error) {
	m, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return PublicModel{}, err
	}
	sim, err := s.Simulate(ctx, SimulateRequest{
		EditionID: m.EditionID,
		Name:      m.Name,
		Weights:   m.Weights,
		Source:    SourceToken,
	})
	if err != nil {
		return PublicModel{}, err
	}
	return PublicModel{Model: m, Simulation: sim}, nil
}

// enqueue hands a job to the workers. Jobs for a model already waiting are
// coalesced since the worker reads the model's latest state. Before Start,
// or when the queue refuses the job, it is applied inline.
func (s *Service) enqueue(ctx context.Context, j model.Job) {
	j.Enqueued = time.Now()

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		s.applyNow(ctx, j)
		return
	}

	if s.pending.SeenAndRecord(ctx, j.Key()) {
		metrics.RecordJobEnqueue("coalesced")
		return
	}
	if err := s.jobs.Enqueue(ctx, j); err != nil {
		s.pending.Unrecord(ctx, j.Key())
		s.log().Warn(ctx, "grading queue refused job, applying inline",
			logger.String("model_id", j.ModelID),
			logger.Error(err),
		)
		s.applyNow(ctx, j)
	}
}

func (s *Service) applyNow(ctx context.Context, j model.Job) {
	if err := s.handle(ctx, j); err != nil {
		s.log().Error(ctx, "grading job failed",
			logger.String("model_id", j.ModelID),
			logger.Error(err),
		)
	}
}

func (s *Service) modelLock(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.modelLocks[h.Sum32()%modelLockStripes]
}

// handle is the worker entry point. Jobs for one model never overlap, so a
// removal cannot slip between a grade's read and its board write.
func (s *Service) handle(ctx context.Context, j model.Job) error {
	if s.pending != nil {
		s.pending.Unrecord(ctx, j.Key())
	}

	mu := s.modelLock(j.ModelID)
	mu.Lock()
	defer mu.Unlock()

	switch j.Kind {
	case model.JobRemove:
		s.unrank(ctx, j.ModelID, "")
		return nil
	case model.JobGrade:
		m, err := s.store.Get(ctx, j.ModelID)
		if errors.Is(err, storage.ErrNotFound) {
			s.unrank(ctx, j.ModelID, "")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load model %s: %w", j.ModelID, err)
		}
		if !m.Public {
			s.unrank(ctx, m.ID, "")
			return nil
		}
		return s.rank(ctx, m)
	default:
		return fmt.Errorf("unknown job kind %q", j.Kind)
	}
}
