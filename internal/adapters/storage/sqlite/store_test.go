package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fanhop/internal/adapters/storage"
	"github.com/okian/fanhop/internal/adapters/storage/sqlite"
	"github.com/okian/fanhop/internal/adapters/storage/storagetest"
	"github.com/okian/fanhop/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSQLiteStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, now func() time.Time) storage.Store {
		s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "models.db"), sqlite.WithClock(now))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		return s
	})
}

func TestSQLiteReopen(t *testing.T) {
	Convey("Given a model saved to a database file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "models.db")

		s, err := sqlite.Open(ctx, path)
		So(err, ShouldBeNil)
		m, _, err := s.Save(ctx, storage.SaveRequest{OwnerID: "alice", Name: "Keeper", Weights: stats.DefaultWeights()})
		So(err, ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When the file is opened again", func() {
			again, err := sqlite.Open(ctx, path)
			So(err, ShouldBeNil)
			defer again.Close()

			Convey("Then migrations are a no-op and the model survives", func() {
				got, err := again.Get(ctx, m.ID)
				So(err, ShouldBeNil)
				So(got.Weights, ShouldEqual, stats.DefaultWeights())
				So(got.CreatedAt.Equal(m.CreatedAt.Truncate(time.Millisecond)), ShouldBeTrue)
			})
		})
	})

	Convey("Given an in-memory database", t, func() {
		s, err := sqlite.Open(context.Background(), ":memory:")
		So(err, ShouldBeNil)
		defer s.Close()

		_, _, err = s.Save(context.Background(), storage.SaveRequest{OwnerID: "a", Name: "n", Weights: stats.DefaultWeights()})
		So(err, ShouldBeNil)
		list, err := s.List(context.Background(), "a")
		So(err, ShouldBeNil)
		So(len(list), ShouldEqual, 1)
	})

	Convey("Given an empty path", t, func() {
		_, err := sqlite.Open(context.Background(), " ")
		So(err, ShouldNotBeNil)
	})
}
