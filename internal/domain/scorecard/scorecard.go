// Package scorecard grades a simulated bracket against what actually happened.
package scorecard

import (
	"errors"
	"fmt"

	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/edition"
)

// ErrNoResults is returned when the edition has not been decided yet.
var ErrNoResults = errors.New("edition has no results")

// Round identifies a scoring round.
type Round string

const (
	RoundOf64 Round = "r64"
	RoundOf32 Round = "r32"
	Sweet16   Round = "s16"
	Elite8    Round = "e8"
	FinalFour Round = "ff"
	Champion  Round = "champ"
)

type rule struct {
	round  Round
	label  string
	points int
	picks  int
}

// Points per correct pick; a perfect card scores 144.
var rules = []rule{
	{RoundOf64, "Round of 64", 1, 32},
	{RoundOf32, "Round of 32", 1, 16},
	{Sweet16, "Sweet 16", 2, 8},
	{Elite8, "Elite Eight", 4, 4},
	{FinalFour, "Final Four", 16, 2},
	{Champion, "Champion", 32, 1},
}

// RoundScore is one round's line on the card.
type RoundScore struct {
	Round   Round  `json:"round"`
	Label   string `json:"label"`
	Correct int    `json:"correct"`
	Picks   int    `json:"picks"`
	Points  int    `json:"points"`
	Max     int    `json:"max"`
}

// Card is the graded bracket.
type Card struct {
	Rounds     []RoundScore `json:"rounds"`
	Total      int          `json:"total"`
	Max        int          `json:"max"`
	Percentile string       `json:"percentile"`
}

// MaxPoints is the score of a perfect bracket.
func MaxPoints() int {
	n := 0
	for _, r := range rules {
		n += r.points * r.picks
	}
	return n
}

// Grade scores t against e's actual results. A pick counts when the team
// predicted to win a slot is the team that actually won it. Final Four
// picks count when a predicted semifinal winner actually reached the final.
func Grade(e *edition.Edition, t bracket.Tournament) (Card, error) {
	if !e.HasResults() {
		return Card{}, fmt.Errorf("%w: %s", ErrNoResults, e.ID)
	}
	res := e.Results
	correct := make(map[Round]int, len(rules))
	for i, rr := range t.Regions {
		act := res.Regions[i]
		for j, m := range rr.R64 {
			if m.Winner == act.R64[j] {
				correct[RoundOf64]++
			}
		}
		for j, m := range rr.R32 {
			if m.Winner == act.R32[j] {
				correct[RoundOf32]++
			}
		}
		for j, m := range rr.S16 {
			if m.Winner == act.S16[j] {
				correct[Sweet16]++
			}
		}
		if rr.Winner == act.E8 {
			correct[Elite8]++
		}
	}
	finalists := map[string]bool{res.Finalists[0]: true, res.Finalists[1]: true}
	for _, sf := range t.Semifinals {
		if finalists[sf.Winner] {
			correct[FinalFour]++
		}
	}
	if t.Champion == res.Champion {
		correct[Champion]++
	}

	card := Card{Rounds: make([]RoundScore, 0, len(rules))}
	for _, r := range rules {
		rs := RoundScore{
			Round:   r.round,
			Label:   r.label,
			Correct: correct[r.round],
			Picks:   r.picks,
			Points:  correct[r.round] * r.points,
			Max:     r.picks * r.points,
		}
		card.Rounds = append(card.Rounds, rs)
		card.Total += rs.Points
		card.Max += rs.Max
	}
	card.Percentile = percentile(card.Total, card.Max)
	return card, nil
}

// Bands are fractions of a perfect card, expressed over 192.
var bands = []struct {
	over192 int
	label   string
}{
	{150, "Top 5%"},
	{120, "Top 20%"},
	{100, "Top 40%"},
	{80, "Top 60%"},
}

func percentile(total, maxPts int) string {
	if maxPts <= 0 {
		return "Average"
	}
	for _, b := range bands {
		if total*192 >= b.over192*maxPts {
			return b.label
		}
	}
	return "Average"
}
