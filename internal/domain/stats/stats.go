// Package stats names the seventeen team statistics a model can weight and
// defines the weight vector shared by scoring, the codecs and persistence.
package stats

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stat identifies one ranked team statistic. The numeric value is the
// statistic's position in every packed or ordered representation.
type Stat int

const (
	PPG Stat = iota
	FGPct
	ThreePG
	FTPct
	ScoreMargin
	OppPPG
	OppFGPct
	BlocksPG
	StealsPG
	ReboundMargin
	AssistsPG
	AstTORatio
	TurnoversPG
	OppTurnoversPG
	WinPct
	RPI
	ConfStrength

	// Count is the number of statistics.
	Count = int(ConfStrength) + 1
)

// Weight bounds, inclusive.
const (
	MinWeight = 0
	MaxWeight = 10
)

type meta struct {
	key   string
	label string
}

var table = [Count]meta{
	PPG:            {"ppg", "Points/Game"},
	FGPct:          {"fg_pct", "FG%"},
	ThreePG:        {"three_pg", "3-Pointers/Game"},
	FTPct:          {"ft_pct", "FT%"},
	ScoreMargin:    {"scr_mar", "Score Margin"},
	OppPPG:         {"opp_ppg", "Opp PPG"},
	OppFGPct:       {"opp_fg_pct", "Opp FG%"},
	BlocksPG:       {"bkpg", "Blocks/Game"},
	StealsPG:       {"stpg", "Steals/Game"},
	ReboundMargin:  {"reb_mar", "Rebound Margin"},
	AssistsPG:      {"apg", "Assists/Game"},
	AstTORatio:     {"ast_to", "Ast/TO Ratio"},
	TurnoversPG:    {"topg", "Turnovers/Game"},
	OppTurnoversPG: {"opp_topg", "Force Turnovers"},
	WinPct:         {"win_pct", "Win %"},
	RPI:            {"rpi", "RPI Ranking"},
	ConfStrength:   {"conf_strength", "Conf. Strength"},
}

var byKey = func() map[string]Stat {
	m := make(map[string]Stat, Count)
	for i, e := range table {
		m[e.key] = Stat(i)
	}
	return m
}()

// All lists every statistic in canonical order.
func All() [Count]Stat {
	var out [Count]Stat
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// Key returns the stable wire key, e.g. "opp_fg_pct".
func (s Stat) Key() string {
	if !s.Valid() {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return table[s].key
}

// Label returns the human-readable name.
func (s Stat) Label() string {
	if !s.Valid() {
		return s.Key()
	}
	return table[s].label
}

func (s Stat) String() string { return s.Key() }

// Valid reports whether s is one of the seventeen statistics.
func (s Stat) Valid() bool { return s >= 0 && int(s) < Count }

// Parse looks up a statistic by wire key. Matching is case-insensitive.
func Parse(key string) (Stat, error) {
	s, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStat, key)
	}
	return s, nil
}

// Weights is a model's importance vector indexed by Stat.
type Weights [Count]int

// Get returns the weight for s.
func (w Weights) Get(s Stat) int { return w[s] }

// With returns a copy of w with s set to v.
func (w Weights) With(s Stat, v int) Weights {
	w[s] = v
	return w
}

// Validate fails when any weight is outside [MinWeight, MaxWeight].
func (w Weights) Validate() error {
	for i, v := range w {
		if v < MinWeight || v > MaxWeight {
			return fmt.Errorf("%w: %s=%d", ErrWeightRange, Stat(i).Key(), v)
		}
	}
	return nil
}

// IsZero reports whether every weight is zero.
func (w Weights) IsZero() bool { return w == Weights{} }

// Map returns the weights keyed by wire key.
func (w Weights) Map() map[string]int {
	m := make(map[string]int, Count)
	for i, v := range w {
		m[table[i].key] = v
	}
	return m
}

// FromMap builds weights from a key map. Missing keys are zero; unknown keys
// and out-of-range values are errors.
func FromMap(m map[string]int) (Weights, error) {
	var w Weights
	for k, v := range m {
		s, err := Parse(k)
		if err != nil {
			return Weights{}, err
		}
		w[s] = v
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// MarshalJSON encodes weights as an object keyed by stat key.
func (w Weights) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Map())
}

// UnmarshalJSON decodes an object keyed by stat key. Fractional numbers fail.
func (w *Weights) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("%w: %v", ErrWeightRange, err)
	}
	out, err := FromMap(m)
	if err != nil {
		return err
	}
	*w = out
	return nil
}
