// Package scoring turns a team's stat ranks and a weight vector into a
// single comparable strength score.
package scoring

import (
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/stats"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithMaxRank sets the league population size M. Non-positive values are ignored.
func WithMaxRank(m int) Option {
	return func(s *Scorer) {
		if m > 0 {
			s.maxRank = m
		}
	}
}

// Scorer computes sum over weighted stats of (M - rank) / M * weight.
// A zero or missing rank counts as M and contributes nothing. The zero
// value is not usable; build one with New.
type Scorer struct {
	maxRank int
}

// New creates a scorer with M = edition.DefaultMaxRank unless overridden.
func New(opts ...Option) Scorer {
	s := Scorer{maxRank: edition.DefaultMaxRank}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ForEdition returns the scorer matching e's league size.
func ForEdition(e *edition.Edition) Scorer {
	return New(WithMaxRank(e.MaxRank))
}

// MaxRank returns M.
func (s Scorer) MaxRank() int { return s.maxRank }

// term returns one stat's contribution. Ranks outside [1,M] clamp so a
// bad data row can never flip a score negative.
func (s Scorer) term(rank, weight int) float64 {
	if weight == 0 {
		return 0
	}
	if rank <= 0 || rank > s.maxRank {
		rank = s.maxRank
	}
	m := float64(s.maxRank)
	return (m - float64(rank)) / m * float64(weight)
}

// Team scores a known team.
func (s Scorer) Team(t edition.Team, w stats.Weights) float64 {
	var total float64
	for i, weight := range w {
		total += s.term(t.Ranks[i], weight)
	}
	return total
}

// Score looks name up in reg and scores it; unknown teams score 0.
func (s Scorer) Score(reg edition.Registry, name string, w stats.Weights) float64 {
	t, ok := reg.Lookup(name)
	if !ok {
		return 0
	}
	return s.Team(t, w)
}

// Contribution is one stat's share of a team score.
type Contribution struct {
	Stat   stats.Stat
	Rank   int
	Weight int
	Points float64
}

// Breakdown lists the nonzero-weight terms of a team score in stat order.
func (s Scorer) Breakdown(t edition.Team, w stats.Weights) []Contribution {
	out := make([]Contribution, 0, stats.Count)
	for i, weight := range w {
		if weight == 0 {
			continue
		}
		out = append(out, Contribution{
			Stat:   stats.Stat(i),
			Rank:   t.Ranks[i],
			Weight: weight,
			Points: s.term(t.Ranks[i], weight),
		})
	}
	return out
}
