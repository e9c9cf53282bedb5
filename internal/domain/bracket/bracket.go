// Package bracket simulates a 64-team single-elimination tournament. Every
// game is decided by comparing the two teams' scores under one weight
// vector, so the same edition and weights always produce the same bracket.
package bracket

import (
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/scoring"
	"github.com/okian/fanhop/internal/domain/stats"
)

// Games per round inside one region.
const (
	R64Games = 8
	R32Games = 4
	S16Games = 2
)

// GamesPerRegion is the number of games played inside one region.
const GamesPerRegion = R64Games + R32Games + S16Games + 1

// TotalGames is the number of games in the whole tournament.
const TotalGames = edition.NumRegions*GamesPerRegion + 3

// FirstRoundPairs lists the R64 seed pairings top to bottom.
var FirstRoundPairs = [R64Games][2]int{
	{1, 16}, {8, 9}, {5, 12}, {4, 13}, {6, 11}, {3, 14}, {7, 10}, {2, 15},
}

// Matchup is one decided game.
type Matchup struct {
	Team1  string `json:"team1"`
	Seed1  int    `json:"seed1"`
	Team2  string `json:"team2"`
	Seed2  int    `json:"seed2"`
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

// Team1Won reports whether the first-listed team advanced.
func (m Matchup) Team1Won() bool { return m.Winner == m.Team1 }

// WinnerSeed returns the advancing team's seed.
func (m Matchup) WinnerSeed() int {
	if m.Team1Won() {
		return m.Seed1
	}
	return m.Seed2
}

// Decide fills Winner and Loser.
func (m Matchup) Decide(team1Wins bool) Matchup {
	if team1Wins {
		m.Winner, m.Loser = m.Team1, m.Team2
	} else {
		m.Winner, m.Loser = m.Team2, m.Team1
	}
	return m
}

// RegionResult is one region's fifteen games.
type RegionResult struct {
	Region edition.Region    `json:"region"`
	R64    [R64Games]Matchup `json:"r64"`
	R32    [R32Games]Matchup `json:"r32"`
	S16    [S16Games]Matchup `json:"s16"`
	E8     Matchup           `json:"e8"`
	Winner string            `json:"winner"`
}

// Tournament is a fully simulated bracket.
type Tournament struct {
	Regions [edition.NumRegions]RegionResult `json:"regions"`
	// Semifinals[0] pairs the Midwest and West winners, Semifinals[1] East and South.
	Semifinals   [2]Matchup                 `json:"semifinals"`
	Championship Matchup                    `json:"championship"`
	FinalFour    [edition.NumRegions]string `json:"final_four"`
	Champion     string                     `json:"champion"`
}

// Region returns the result for r.
func (t Tournament) Region(r edition.Region) (RegionResult, bool) {
	i, ok := r.Index()
	if !ok {
		return RegionResult{}, false
	}
	return t.Regions[i], true
}

// Games returns all 63 games in the canonical order: each region's R64,
// R32, S16 and E8 in region order, then both semifinals and the final.
func (t Tournament) Games() []Matchup {
	out := make([]Matchup, 0, TotalGames)
	for _, r := range t.Regions {
		out = append(out, r.R64[:]...)
		out = append(out, r.R32[:]...)
		out = append(out, r.S16[:]...)
		out = append(out, r.E8)
	}
	out = append(out, t.Semifinals[:]...)
	return append(out, t.Championship)
}

// Decider chooses a game's winner. Returning true advances Team1.
type Decider interface {
	Decide(m Matchup) bool
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(m Matchup) bool

// Decide calls f.
func (f DeciderFunc) Decide(m Matchup) bool { return f(m) }

// weighted decides games by score, falling back to seed on exact ties.
type weighted struct {
	scorer scoring.Scorer
	teams  edition.Registry
	w      stats.Weights
}

func (d weighted) Decide(m Matchup) bool {
	s1 := d.scorer.Score(d.teams, m.Team1, d.w)
	s2 := d.scorer.Score(d.teams, m.Team2, d.w)
	if s1 != s2 {
		return s1 > s2
	}
	return m.Seed1 <= m.Seed2
}

// WeightedDecider returns the scoring rule used by Simulate.
func WeightedDecider(e *edition.Edition, w stats.Weights) Decider {
	return weighted{scorer: scoring.ForEdition(e), teams: e.Teams, w: w}
}

// Resolve plays a single game between two seeded teams.
func Resolve(e *edition.Edition, w stats.Weights, team1 string, seed1 int, team2 string, seed2 int) Matchup {
	m := Matchup{Team1: team1, Seed1: seed1, Team2: team2, Seed2: seed2}
	return m.Decide(WeightedDecider(e, w).Decide(m))
}

func play(d Decider, a, b Matchup) Matchup {
	m := Matchup{Team1: a.Winner, Seed1: a.WinnerSeed(), Team2: b.Winner, Seed2: b.WinnerSeed()}
	return m.Decide(d.Decide(m))
}

// PlayRegion runs one region with an arbitrary decider. Seeds travel with
// the winners, so later rounds never look a seed up by name.
func PlayRegion(r edition.Region, seeding edition.RegionSeeding, d Decider) RegionResult {
	res := RegionResult{Region: r}
	for i, p := range FirstRoundPairs {
		m := Matchup{Team1: seeding.Team(p[0]), Seed1: p[0], Team2: seeding.Team(p[1]), Seed2: p[1]}
		res.R64[i] = m.Decide(d.Decide(m))
	}
	for i := range res.R32 {
		res.R32[i] = play(d, res.R64[2*i], res.R64[2*i+1])
	}
	for i := range res.S16 {
		res.S16[i] = play(d, res.R32[2*i], res.R32[2*i+1])
	}
	res.E8 = play(d, res.S16[0], res.S16[1])
	res.Winner = res.E8.Winner
	return res
}

// Play runs the whole tournament with an arbitrary decider.
func Play(e *edition.Edition, d Decider) Tournament {
	var t Tournament
	for i, r := range edition.Regions() {
		t.Regions[i] = PlayRegion(r, e.Seeding[i], d)
		t.FinalFour[i] = t.Regions[i].Winner
	}
	t.Semifinals[0] = play(d, t.Regions[0].E8, t.Regions[1].E8)
	t.Semifinals[1] = play(d, t.Regions[2].E8, t.Regions[3].E8)
	t.Championship = play(d, t.Semifinals[0], t.Semifinals[1])
	t.Champion = t.Championship.Winner
	return t
}

// SimulateRegion plays region r of e under w.
func SimulateRegion(e *edition.Edition, r edition.Region, w stats.Weights) RegionResult {
	return PlayRegion(r, e.Seeding.Region(r), WeightedDecider(e, w))
}

// Simulate plays the full tournament of e under w.
func Simulate(e *edition.Edition, w stats.Weights) Tournament {
	return Play(e, WeightedDecider(e, w))
}
