package brackettoken_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/fanhop/internal/codec/brackettoken"
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

func TestRoundTrip(t *testing.T) {
	Convey("Given brackets simulated from every preset", t, func() {
		e := load2025(t)
		weights := []stats.Weights{{}, stats.Weights{}.With(stats.PPG, 10)}
		for _, p := range stats.Presets() {
			weights = append(weights, p.Weights)
		}

		Convey("Then decode(encode(r)) == r", func() {
			for _, w := range weights {
				res := bracket.Simulate(e, w)
				tok := brackettoken.Encode(res)
				So(tok, ShouldStartWith, brackettoken.Prefix)
				So(len(tok), ShouldEqual, len(brackettoken.Prefix)+11)

				back, err := brackettoken.Decode(tok, e)
				So(err, ShouldBeNil)
				So(back == res, ShouldBeTrue)
			}
		})
	})
}

func TestBitLayout(t *testing.T) {
	Convey("Given the 2025 edition", t, func() {
		e := load2025(t)

		Convey("When every bit is zero", func() {
			res, err := brackettoken.Decode("b1:AAAAAAAAAAA", e)
			So(err, ShouldBeNil)

			Convey("Then the first-listed team wins every game", func() {
				for _, g := range res.Games() {
					So(g.Team1Won(), ShouldBeTrue)
				}
				So(res.Champion, ShouldEqual, "Houston")
			})
		})

		Convey("When every game bit is one", func() {
			res, err := brackettoken.Decode("b1:__________4", e)
			So(err, ShouldBeNil)

			Convey("Then the second-listed team wins every game", func() {
				for _, g := range res.Games() {
					So(g.Team1Won(), ShouldBeFalse)
				}
				So(res.Regions[0].R64[0].Winner, ShouldEqual, "SIU Edwardsville")
			})
		})

		Convey("When only the championship flips", func() {
			res, err := brackettoken.Decode("b1:AAAAAAAAAAI", e)
			So(err, ShouldBeNil)
			So(res.Champion, ShouldEqual, "Duke")
			So(brackettoken.Encode(res), ShouldEqual, "b1:AAAAAAAAAAI")
		})

		Convey("When the chalk bracket is encoded", func() {
			b := brackettoken.Bits(bracket.Simulate(e, stats.Weights{}))

			Convey("Then R64 bits are zero and the 4-over-5 game is one", func() {
				So(b[0], ShouldEqual, byte(0))
				So(b[1]&0x40, ShouldEqual, byte(0x40))
			})
		})
	})
}

func TestRejects(t *testing.T) {
	Convey("Given malformed bracket tokens", t, func() {
		e := load2025(t)
		cases := map[string]error{
			"AAAAAAAAAAA":      brackettoken.ErrMalformed,
			"x1:AAAAAAAAAAA":   brackettoken.ErrMalformed,
			"b2:AAAAAAAAAAA":   brackettoken.ErrVersion,
			"b1:AAAAAAAAAA":    brackettoken.ErrMalformed,
			"b1:AAAAAAAAAAAA":  brackettoken.ErrMalformed,
			"b1:AAAAAAAAAAE":   brackettoken.ErrMalformed,
			"b1:AAAA+AAAAAA":   brackettoken.ErrMalformed,
			"b1:AAAAAAAAAAB":   brackettoken.ErrMalformed,
			"b1:AAAA\nAAAAAAA": brackettoken.ErrMalformed,
		}

		Convey("Then each is rejected with the right sentinel", func() {
			for tok, want := range cases {
				_, err := brackettoken.Decode(tok, e)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, want), ShouldBeTrue)
				So(strings.Contains(err.Error(), "bracket token"), ShouldBeTrue)
			}
		})
	})
}

func TestShareURL(t *testing.T) {
	Convey("Given a simulated tournament", t, func() {
		e := load2025(t)
		tour := bracket.Simulate(e, stats.Weights{})

		Convey("Then the share URL carries the token and the edition", func() {
			link := brackettoken.ShareURL("https://fanhop.example/", "2025", tour)
			u, err := url.Parse(link)
			So(err, ShouldBeNil)
			So(u.Path, ShouldEqual, "/bracket")
			So(u.Query().Get("e"), ShouldEqual, "2025")

			back, err := brackettoken.Decode(u.Query().Get("b"), e)
			So(err, ShouldBeNil)
			So(back, ShouldResemble, tour)
		})
	})
}
