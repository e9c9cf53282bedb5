// Package storagetest runs the same behavioural suite against every model store backend.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

// Factory opens a fresh, empty store that reads time from now.
type Factory func(t *testing.T, now func() time.Time) storage.Store

// Clock is a manual time source that advances one second per read.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2025, time.March, 16, 18, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// Run exercises a Store implementation.
func Run(t *testing.T, open Factory) {
	ctx := context.Background()
	balanced := stats.DefaultWeights()
	ppgOnly := stats.Weights{}.With(stats.PPG, 10)

	Convey("Given an empty model store", t, func() {
		clock := NewClock()
		store := open(t, clock.Now)
		Reset(func() { _ = store.Close() })

		Convey("When a model is saved", func() {
			m, updated, err := store.Save(ctx, storage.SaveRequest{
				OwnerID: "alice", Name: "My Model", Weights: balanced, EditionID: "2025", Champion: "Houston",
			})
			So(err, ShouldBeNil)
			So(updated, ShouldBeFalse)
			So(m.ID, ShouldNotBeEmpty)
			So(m.Public, ShouldBeFalse)
			So(m.Slug, ShouldBeEmpty)

			Convey("Then it can be read back by id", func() {
				got, err := store.Get(ctx, m.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "My Model")
				So(got.Weights, ShouldEqual, balanced)
				So(got.EditionID, ShouldEqual, "2025")
				So(got.Champion, ShouldEqual, "Houston")
				So(got.CreatedAt.Equal(m.CreatedAt), ShouldBeTrue)
			})

			Convey("Then saving the same name in another case updates it", func() {
				again, updated, err := store.Save(ctx, storage.SaveRequest{
					OwnerID: "alice", Name: "MY MODEL", Weights: ppgOnly, EditionID: "2025", Champion: "Alabama",
				})
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				So(again.ID, ShouldEqual, m.ID)
				So(again.Weights, ShouldEqual, ppgOnly)
				So(again.Champion, ShouldEqual, "Alabama")
				So(again.UpdatedAt.After(m.UpdatedAt), ShouldBeTrue)

				list, err := store.List(ctx, "alice")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
			})

			Convey("Then another owner may reuse the name", func() {
				other, updated, err := store.Save(ctx, storage.SaveRequest{OwnerID: "bob", Name: "My Model", Weights: balanced})
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
				So(other.ID, ShouldNotEqual, m.ID)
			})

			Convey("Then publishing assigns a slug that resolves", func() {
				pub, err := store.SetPublic(ctx, "alice", m.ID, true)
				So(err, ShouldBeNil)
				So(pub.Public, ShouldBeTrue)
				So(pub.Slug, ShouldNotBeEmpty)

				got, err := store.GetBySlug(ctx, pub.Slug)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, m.ID)

				all, err := store.ListPublic(ctx)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 1)

				Convey("And hiding it keeps the slug but stops resolving it", func() {
					hidden, err := store.SetPublic(ctx, "alice", m.ID, false)
					So(err, ShouldBeNil)
					So(hidden.Slug, ShouldEqual, pub.Slug)
					_, err = store.GetBySlug(ctx, pub.Slug)
					So(err, ShouldEqual, storage.ErrNotFound)

					again, err := store.SetPublic(ctx, "alice", m.ID, true)
					So(err, ShouldBeNil)
					So(again.Slug, ShouldEqual, pub.Slug)
				})
			})

			Convey("Then another owner cannot publish or delete it", func() {
				_, err := store.SetPublic(ctx, "mallory", m.ID, true)
				So(err, ShouldEqual, storage.ErrNotFound)
				So(store.Delete(ctx, "mallory", m.ID), ShouldEqual, storage.ErrNotFound)
			})

			Convey("Then the owner can delete it and reuse the name", func() {
				So(store.Delete(ctx, "alice", m.ID), ShouldBeNil)
				_, err := store.Get(ctx, m.ID)
				So(err, ShouldEqual, storage.ErrNotFound)

				_, updated, err := store.Save(ctx, storage.SaveRequest{OwnerID: "alice", Name: "my model", Weights: balanced})
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
			})
		})

		Convey("When several models are saved", func() {
			names := []string{"first", "second", "third"}
			for _, n := range names {
				_, _, err := store.Save(ctx, storage.SaveRequest{OwnerID: "alice", Name: n, Weights: balanced})
				So(err, ShouldBeNil)
			}

			Convey("Then List returns them newest first", func() {
				list, err := store.List(ctx, "alice")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 3)
				So(list[0].Name, ShouldEqual, "third")
				So(list[2].Name, ShouldEqual, "first")
			})

			Convey("Then an unknown owner sees nothing", func() {
				list, err := store.List(ctx, "nobody")
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
			})
		})

		Convey("When the request is invalid", func() {
			_, _, err := store.Save(ctx, storage.SaveRequest{OwnerID: "alice", Name: "  "})
			So(err, ShouldWrap, storage.ErrInvalidModel)

			_, _, err = store.Save(ctx, storage.SaveRequest{Name: "x"})
			So(err, ShouldWrap, storage.ErrInvalidModel)

			var bad stats.Weights
			bad[stats.RPI] = 11
			_, _, err = store.Save(ctx, storage.SaveRequest{OwnerID: "alice", Name: "x", Weights: bad})
			So(err, ShouldWrap, storage.ErrInvalidModel)
		})

		Convey("When looking up things that do not exist", func() {
			_, err := store.Get(ctx, "missing")
			So(err, ShouldEqual, storage.ErrNotFound)
			_, err = store.GetBySlug(ctx, "missing")
			So(err, ShouldEqual, storage.ErrNotFound)
			So(store.Delete(ctx, "alice", "missing"), ShouldEqual, storage.ErrNotFound)
		})
	})
}
