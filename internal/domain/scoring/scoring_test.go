package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/fanhop/internal/domain/edition"
	"github.com/okian/fanhop/internal/domain/scoring"
	"github.com/okian/fanhop/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func team(ranks map[stats.Stat]int) edition.Team {
	t := edition.Team{Name: "T", Region: edition.East}
	for s, r := range ranks {
		t.Ranks[s] = r
	}
	return t
}

func TestScore(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := scoring.New()
		So(s.MaxRank(), ShouldEqual, 350)

		Convey("When one stat is weighted", func() {
			tm := team(map[stats.Stat]int{stats.PPG: 8})
			w := stats.Weights{}.With(stats.PPG, 10)

			Convey("Then the score is (M - r) / M * w", func() {
				So(s.Team(tm, w), ShouldAlmostEqual, (350.0-8.0)/350.0*10, 1e-12)
			})
		})

		Convey("When a rank is missing", func() {
			tm := team(map[stats.Stat]int{stats.PPG: 8})
			w := stats.Weights{}.With(stats.RPI, 10)

			Convey("Then it contributes nothing", func() {
				So(s.Team(tm, w), ShouldEqual, 0)
			})
		})

		Convey("When the team is unknown", func() {
			reg := edition.Registry{"A": team(map[stats.Stat]int{stats.PPG: 1})}
			So(s.Score(reg, "Nobody", stats.DefaultWeights()), ShouldEqual, 0)
			So(s.Score(reg, "A", stats.DefaultWeights()), ShouldBeGreaterThan, 0)
		})

		Convey("When weights are all zero", func() {
			tm := team(map[stats.Stat]int{stats.PPG: 1, stats.RPI: 1})
			So(s.Team(tm, stats.Weights{}), ShouldEqual, 0)
		})
	})
}

func TestScoreMonotone(t *testing.T) {
	Convey("Given a team with every rank set", t, func() {
		s := scoring.New()
		ranks := map[stats.Stat]int{}
		for _, st := range stats.All() {
			ranks[st] = 100
		}
		tm := team(ranks)
		w := stats.DefaultWeights()
		base := s.Team(tm, w)

		Convey("Then raising a weight never lowers the score", func() {
			for _, st := range stats.All() {
				if w.Get(st) < stats.MaxWeight {
					So(s.Team(tm, w.With(st, w.Get(st)+1)), ShouldBeGreaterThanOrEqualTo, base)
				}
			}
		})

		Convey("Then improving a rank never lowers the score", func() {
			for _, st := range stats.All() {
				better := tm
				better.Ranks[st] = 50
				So(s.Team(better, w), ShouldBeGreaterThanOrEqualTo, base)
			}
		})
	})
}

func TestWithMaxRankAndBreakdown(t *testing.T) {
	Convey("Given a scorer over a smaller league", t, func() {
		s := scoring.New(scoring.WithMaxRank(100), scoring.WithMaxRank(-5))
		So(s.MaxRank(), ShouldEqual, 100)

		tm := team(map[stats.Stat]int{stats.PPG: 50, stats.RPI: 400})
		w := stats.Weights{}.With(stats.PPG, 4).With(stats.RPI, 2)

		Convey("Then out-of-league ranks clamp to zero points", func() {
			So(s.Team(tm, w), ShouldAlmostEqual, 2.0, 1e-12)
		})

		Convey("Then the breakdown sums to the score", func() {
			parts := s.Breakdown(tm, w)
			So(len(parts), ShouldEqual, 2)
			sum := 0.0
			for _, p := range parts {
				sum += p.Points
			}
			So(math.Abs(sum-s.Team(tm, w)), ShouldBeLessThan, 1e-12)
			So(parts[0].Stat, ShouldEqual, stats.PPG)
		})
	})
}
