package bracket_test

import (
	"testing"

	"github.com/okian/fanhop/internal/domain/bracket"
	"github.com/okian/fanhop/internal/domain/edition"
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

func TestResolve(t *testing.T) {
	Convey("Given the 2025 edition", t, func() {
		e := load2025(t)

		Convey("When scores differ", func() {
			m := bracket.Resolve(e, stats.Weights{}.With(stats.PPG, 10), "Houston", 1, "Florida", 1)
			So(m.Winner, ShouldEqual, "Florida")
			So(m.Loser, ShouldEqual, "Houston")
		})

		Convey("When scores tie the better seed wins", func() {
			m := bracket.Resolve(e, stats.Weights{}, "Norfolk St.", 16, "Florida", 1)
			So(m.Winner, ShouldEqual, "Florida")
			So(m.WinnerSeed(), ShouldEqual, 1)
		})

		Convey("When scores and seeds tie the first team wins", func() {
			m := bracket.Resolve(e, stats.Weights{}, "Duke", 1, "Auburn", 1)
			So(m.Winner, ShouldEqual, "Duke")
			So(m.Team1Won(), ShouldBeTrue)
		})

		Convey("When both teams are unknown", func() {
			m := bracket.Resolve(e, stats.DefaultWeights(), "Ghost A", 9, "Ghost B", 8)
			So(m.Winner, ShouldEqual, "Ghost B")
		})
	})
}

func TestSimulateChalk(t *testing.T) {
	Convey("Given all-zero weights", t, func() {
		e := load2025(t)
		res := bracket.Simulate(e, stats.Weights{})

		Convey("Then every game goes to the better seed", func() {
			games := res.Games()
			So(len(games), ShouldEqual, bracket.TotalGames)
			for _, g := range games {
				So(g.WinnerSeed(), ShouldBeLessThanOrEqualTo, max(g.Seed1, g.Seed2))
				if g.Seed1 != g.Seed2 {
					So(g.WinnerSeed(), ShouldEqual, min(g.Seed1, g.Seed2))
				}
			}
		})

		Convey("Then the one seeds reach the final four", func() {
			So(res.FinalFour, ShouldEqual, [4]string{"Houston", "Florida", "Duke", "Auburn"})
			So(res.Semifinals[0].Winner, ShouldEqual, "Houston")
			So(res.Semifinals[1].Winner, ShouldEqual, "Duke")
			So(res.Champion, ShouldEqual, "Houston")
		})
	})
}

func TestSimulatePointsOnly(t *testing.T) {
	Convey("Given a model that only weights points per game", t, func() {
		e := load2025(t)
		res := bracket.Simulate(e, stats.Weights{}.With(stats.PPG, 10))

		Convey("Then the best scoring team in each region advances", func() {
			So(res.FinalFour, ShouldEqual, [4]string{"Houston", "Florida", "Alabama", "Auburn"})
		})

		Convey("Then the final four plays out by points per game", func() {
			So(res.Semifinals[0].Winner, ShouldEqual, "Florida")
			So(res.Semifinals[1].Winner, ShouldEqual, "Alabama")
			So(res.Championship.Team1, ShouldEqual, "Florida")
			So(res.Championship.Seed2, ShouldEqual, 2)
			So(res.Champion, ShouldEqual, "Alabama")
		})
	})
}

func TestSimulateStructure(t *testing.T) {
	Convey("Given the balanced preset", t, func() {
		e := load2025(t)
		w := stats.DefaultWeights()
		res := bracket.Simulate(e, w)

		Convey("Then the result is deterministic", func() {
			So(bracket.Simulate(e, w) == res, ShouldBeTrue)
		})

		Convey("Then regions are in bracket order", func() {
			for i, r := range edition.Regions() {
				So(res.Regions[i].Region, ShouldEqual, r)
				So(res.FinalFour[i], ShouldEqual, res.Regions[i].Winner)
			}
		})

		Convey("Then later rounds are built from earlier winners", func() {
			for _, rr := range res.Regions {
				for i, m := range rr.R32 {
					So(m.Team1, ShouldEqual, rr.R64[2*i].Winner)
					So(m.Team2, ShouldEqual, rr.R64[2*i+1].Winner)
				}
				So(rr.E8.Team1, ShouldEqual, rr.S16[0].Winner)
				So(rr.E8.Team2, ShouldEqual, rr.S16[1].Winner)
			}
			So(res.Championship.Team1, ShouldEqual, res.Semifinals[0].Winner)
			So(res.Championship.Team2, ShouldEqual, res.Semifinals[1].Winner)
		})

		Convey("Then SimulateRegion matches the full run", func() {
			rr := bracket.SimulateRegion(e, edition.East, w)
			got, ok := res.Region(edition.East)
			So(ok, ShouldBeTrue)
			So(rr == got, ShouldBeTrue)
		})
	})
}

func TestZeroWeightStatsAreInert(t *testing.T) {
	Convey("Given weights that ignore RPI", t, func() {
		e := load2025(t)
		w := stats.DefaultWeights().With(stats.RPI, 0)
		before := bracket.Simulate(e, w)

		Convey("When every team's RPI rank is scrambled", func() {
			scrambled := *e
			scrambled.Teams = make(edition.Registry, len(e.Teams))
			i := 0
			for name, tm := range e.Teams {
				tm.Ranks[stats.RPI] = 350 - i
				scrambled.Teams[name] = tm
				i++
			}

			Convey("Then the bracket does not change", func() {
				So(bracket.Simulate(&scrambled, w) == before, ShouldBeTrue)
			})
		})
	})
}

func TestPlayWithCustomDecider(t *testing.T) {
	Convey("Given a decider that always advances the first team", t, func() {
		e := load2025(t)
		res := bracket.Play(e, bracket.DeciderFunc(func(bracket.Matchup) bool { return true }))

		Convey("Then the top line survives every region", func() {
			for _, rr := range res.Regions {
				So(rr.E8.Seed1, ShouldEqual, 1)
				So(rr.Winner, ShouldEqual, rr.R64[0].Team1)
				So(rr.S16[1].Team1, ShouldEqual, rr.R64[4].Team1)
			}
			So(res.Champion, ShouldEqual, "Houston")
		})
	})
}
