package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fanhop/internal/codec/brackettoken"
	"github.com/okian/fanhop/internal/codec/modeltoken"
	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/scorecard"
	"github.com/okian/fanhop/internal/domain/stats"
	"github.com/okian/fanhop/pkg/metrics"
)

// Weight sources, used as a metrics label.
const (
	SourceWeights = "weights"
	SourceToken   = "token"
	SourcePreset  = "preset"
	SourceDefault = "default"
)

// SimulateRequest selects an edition and a model.
type SimulateRequest struct {
	EditionID string
	Name      string
	Weights   stats.Weights
	Source    string
}

// Simulation is a simulated bracket plus everything needed to share it.
type Simulation struct {
	EditionID    string             `json:"edition"`
	Name         string             `json:"name,omitempty"`
	Weights      stats.Weights      `json:"weights"`
	Tournament   bracket.Tournament `json:"tournament"`
	Champion     string             `json:"champion"`
	ModelToken   string             `json:"model_token"`
	BracketToken string             `json:"bracket_token"`
	ModelURL     string             `json:"model_url"`
	BracketURL   string             `json:"bracket_url"`
}

// Graded is a simulation with its scorecard.
type Graded struct {
	Simulation
	Card scorecard.Card `json:"scorecard"`
}

// Edition resolves an edition id; empty means the default edition.
func (s *Service) Edition(id string) (*edition.Edition, error) {
	return s.catalog.Get(id)
}

// ResolveModel turns the three ways a caller can name a model into a
// ModelState and a source label. A token that does not decode falls back to
// the default weights; an unknown preset is an error.
func ResolveModel(token, preset string) (modeltoken.ModelState, string, error) {
	if token != "" {
		m, ok := modeltoken.ParseOrDefault(token)
		metrics.RecordTokenDecode("model", ok)
		if ok {
			return m, SourceToken, nil
		}
		return m, SourceDefault, nil
	}
	if preset != "" {
		p, err := stats.LookupPreset(preset)
		if err != nil {
			return modeltoken.ModelState{}, "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return modeltoken.ModelState{Name: p.Label, Weights: p.Weights}, SourcePreset, nil
	}
	return modeltoken.ModelState{Weights: stats.DefaultWeights()}, SourceDefault, nil
}

// Simulate runs the full tournament for a model.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (Simulation, error) {
	e, err := s.catalog.Get(req.EditionID)
	if err != nil {
		return Simulation{}, err
	}
	if err := req.Weights.Validate(); err != nil {
		return Simulation{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	source := req.Source
	if source == "" {
		source = SourceWeights
	}

	start := time.Now()
	t := bracket.Simulate(e, req.Weights)
	metrics.RecordSimulation(e.ID, source, float64(time.Since(start).Microseconds())/1000)

	state := modeltoken.ModelState{Name: req.Name, Weights: req.Weights}
	token, err := modeltoken.Encode(state)
	if err != nil {
		return Simulation{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	modelURL, err := modeltoken.ShareURL(s.baseURL, state)
	if err != nil {
		return Simulation{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return Simulation{
		EditionID:    e.ID,
		Name:         req.Name,
		Weights:      req.Weights,
		Tournament:   t,
		Champion:     t.Champion,
		ModelToken:   token,
		BracketToken: brackettoken.Encode(t),
		ModelURL:     modelURL,
		BracketURL:   brackettoken.ShareURL(s.baseURL, e.ID, t),
	}, nil
}

// DecodeBracket replays a bracket token over an edition's seeding.
func (s *Service) DecodeBracket(ctx context.Context, editionID, token string) (bracket.Tournament, error) {
	e, err := s.catalog.Get(editionID)
	if err != nil {
		return bracket.Tournament{}, err
	}
	t, err := brackettoken.Decode(token, e)
	metrics.RecordTokenDecode("bracket", err == nil)
	if err != nil {
		return bracket.Tournament{}, err
	}
	return t, nil
}

// Score simulates a model and grades it against the edition's results.
func (s *Service) Score(ctx context.Context, req SimulateRequest) (Graded, error) {
	sim, err := s.Simulate(ctx, req)
	if err != nil {
		return Graded{}, err
	}
	card, err := s.grade(sim.EditionID, sim.Tournament)
	if err != nil {
		return Graded{}, err
	}
	return Graded{Simulation: sim, Card: card}, nil
}

// ScoreBracket grades an already decided bracket token.
func (s *Service) ScoreBracket(ctx context.Context, editionID, token string) (scorecard.Card, error) {
	t, err := s.DecodeBracket(ctx, editionID, token)
	if err != nil {
		return scorecard.Card{}, err
	}
	return s.grade(editionID, t)
}

func (s *Service) grade(editionID string, t bracket.Tournament) (scorecard.Card, error) {
	e, err := s.catalog.Get(editionID)
	if err != nil {
		return scorecard.Card{}, err
	}
	card, err := scorecard.Grade(e, t)
	if err != nil {
		if errors.Is(err, scorecard.ErrNoResults) {
			return scorecard.Card{}, fmt.Errorf("%w: %s", ErrNoResults, e.ID)
		}
		return scorecard.Card{}, err
	}
	metrics.RecordScorecard()
	return card, nil
}
