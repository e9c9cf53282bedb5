package storage_test

import (
	"testing"
	"time"

	"github.com/okian/fanhop/internal/adapters/storage"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNames(t *testing.T) {
	Convey("NameKey folds case and trims space", t, func() {
		So(storage.NameKey("  My Model "), ShouldEqual, storage.NameKey("MY MODEL"))
		So(storage.NameKey("École Ω"), ShouldEqual, storage.NameKey("école ω"))
		So(storage.NameKey("a"), ShouldNotEqual, storage.NameKey("b"))
	})

	Convey("NewSlug is short and URL safe", t, func() {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			slug, err := storage.NewSlug()
			So(err, ShouldBeNil)
			So(len(slug), ShouldEqual, 10)
			So(slug, ShouldNotContainSubstring, "/")
			seen[slug] = true
		}
		So(len(seen), ShouldEqual, 100)
	})

	Convey("SortNewestFirst orders by update time then id", t, func() {
		t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		ms := []storage.Model{
			{ID: "b", UpdatedAt: t0},
			{ID: "c", UpdatedAt: t0.Add(time.Hour)},
			{ID: "a", UpdatedAt: t0},
		}
		storage.SortNewestFirst(ms)
		So([]string{ms[0].ID, ms[1].ID, ms[2].ID}, ShouldResemble, []string{"c", "a", "b"})
	})

	Convey("Name length is bounded in runes", t, func() {
		long := make([]rune, storage.MaxNameLength+1)
		for i := range long {
			long[i] = 'é'
		}
		err := storage.SaveRequest{OwnerID: "o", Name: string(long)}.Validate()
		So(err, ShouldWrap, storage.ErrInvalidModel)
		err = storage.SaveRequest{OwnerID: "o", Name: string(long[:storage.MaxNameLength])}.Validate()
		So(err, ShouldBeNil)
	})
}
