package scorecard_test

import (
	"errors"
	"testing"

	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/scorecard"
	"github.com/okian/fanhop/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func load2025(t *testing.T) *edition.Edition {
	t.Helper()
	eds, err := edition.LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	for _, e := range eds {
		if e.ID == "2025" {
			return e
		}
	}
	t.Fatal("2025 edition not embedded")
	return nil
}

// replay sends the recorded 2025 winners through every regional game, then
// pushes the champion and any actual finalist through the final four.
func replay(e *edition.Edition) bracket.Tournament {
	res := e.Results
	var picks []string
	for _, rr := range res.Regions {
		picks = append(picks, rr.R64[:]...)
		picks = append(picks, rr.R32[:]...)
		picks = append(picks, rr.S16[:]...)
		picks = append(picks, rr.E8)
	}
	n := 0
	return bracket.Play(e, bracket.DeciderFunc(func(m bracket.Matchup) bool {
		if n < len(picks) {
			w := picks[n]
			n++
			return m.Team1 == w
		}
		switch {
		case m.Team1 == res.Champion:
			return true
		case m.Team2 == res.Champion:
			return false
		default:
			return m.Team1 == res.Finalists[0] || m.Team1 == res.Finalists[1]
		}
	}))
}

func TestGradeActual(t *testing.T) {
	Convey("Given the bracket that actually happened", t, func() {
		e := load2025(t)
		card, err := scorecard.Grade(e, replay(e))
		So(err, ShouldBeNil)

		Convey("Then every regional pick and the champion are credited", func() {
			So(card.Max, ShouldEqual, 144)
			So(scorecard.MaxPoints(), ShouldEqual, 144)
			for _, r := range card.Rounds {
				if r.Round == scorecard.FinalFour {
					continue
				}
				So(r.Correct, ShouldEqual, r.Picks)
			}
		})

		Convey("Then only one finalist can come through the Midwest-West semifinal", func() {
			So(card.Rounds[4].Round, ShouldEqual, scorecard.FinalFour)
			So(card.Rounds[4].Correct, ShouldEqual, 1)
			So(card.Total, ShouldEqual, 128)
			So(card.Percentile, ShouldEqual, "Top 5%")
		})
	})
}

func TestGradeChalk(t *testing.T) {
	Convey("Given the chalk bracket", t, func() {
		e := load2025(t)
		card, err := scorecard.Grade(e, bracket.Simulate(e, stats.Weights{}))
		So(err, ShouldBeNil)

		Convey("Then all four one seeds are credited in the Elite Eight", func() {
			So(card.Rounds[3].Round, ShouldEqual, scorecard.Elite8)
			So(card.Rounds[3].Correct, ShouldEqual, 4)
			So(card.Rounds[3].Points, ShouldEqual, 16)
		})

		Convey("Then Houston reaching the final earns one final four pick", func() {
			So(card.Rounds[4].Correct, ShouldEqual, 1)
			So(card.Rounds[5].Correct, ShouldEqual, 0)
		})

		Convey("Then the total is the sum of rounds", func() {
			sum := 0
			for _, r := range card.Rounds {
				sum += r.Points
			}
			So(card.Total, ShouldEqual, sum)
		})
	})
}

func TestGradeWithoutResults(t *testing.T) {
	Convey("Given an edition that has not been played", t, func() {
		e := *load2025(t)
		e.Results = nil
		_, err := scorecard.Grade(&e, bracket.Simulate(&e, stats.DefaultWeights()))
		So(errors.Is(err, scorecard.ErrNoResults), ShouldBeTrue)
	})
}
