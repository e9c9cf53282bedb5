package stats

import (
	"fmt"
	"strings"
)

// Group is a display grouping of related statistics.
type Group struct {
	Label string
	Stats []Stat
}

// Groups returns the four display groups in display order.
func Groups() []Group {
	return []Group{
		{Label: "Offense", Stats: []Stat{PPG, FGPct, ThreePG, FTPct, ScoreMargin}},
		{Label: "Defense", Stats: []Stat{OppPPG, OppFGPct, BlocksPG, StealsPG}},
		{Label: "Efficiency", Stats: []Stat{ReboundMargin, AssistsPG, AstTORatio, TurnoversPG, OppTurnoversPG}},
		{Label: "Reputation", Stats: []Stat{WinPct, RPI, ConfStrength}},
	}
}

// DefaultWeights is the balanced starting vector.
func DefaultWeights() Weights {
	return Weights{5, 5, 3, 2, 5, 5, 5, 2, 3, 4, 3, 4, 3, 3, 4, 5, 3}
}

// Preset is a named, curated weight vector.
type Preset struct {
	Name    string
	Label   string
	Weights Weights
}

// DefaultPreset names the preset equal to DefaultWeights.
const DefaultPreset = "balanced"

var presets = []Preset{
	{Name: DefaultPreset, Label: "Balanced", Weights: DefaultWeights()},
	{Name: "offense", Label: "Offense", Weights: Weights{9, 8, 7, 5, 8, 2, 2, 1, 1, 3, 6, 6, 2, 2, 5, 3, 2}},
	{Name: "defense", Label: "Defense", Weights: Weights{2, 3, 1, 2, 5, 9, 9, 5, 6, 5, 2, 3, 3, 6, 4, 5, 3}},
	{Name: "chalk", Label: "Chalk", Weights: Weights{3, 3, 2, 2, 4, 3, 3, 2, 2, 3, 2, 3, 2, 2, 3, 10, 9}},
	{Name: "chaos", Label: "Chaos", Weights: Weights{4, 4, 7, 2, 3, 4, 3, 3, 7, 4, 5, 4, 5, 5, 2, 1, 1}},
	{Name: "hindsight2025", Label: "2025 Hindsight", Weights: Weights{0, 0, 1, 3, 6, 7, 6, 9, 10, 10, 0, 1, 1, 0, 5, 3, 8}},
}

// Presets returns every preset in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset returns the preset with the given name (case-insensitive).
func LookupPreset(name string) (Preset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == n {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
