package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/fanhop/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a key is recorded", func() {
			So(d.SeenAndRecord(ctx, "grade:m1"), ShouldBeFalse)

			Convey("Then recording it again reports it as seen", func() {
				So(d.SeenAndRecord(ctx, "grade:m1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then unrecording makes it new again", func() {
				d.Unrecord(ctx, "grade:m1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "grade:m1"), ShouldBeFalse)
			})

			Convey("Then unrecording an unknown key is a no-op", func() {
				d.Unrecord(ctx, "grade:other")
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
		d.SeenAndRecord(ctx, "a")
		d.SeenAndRecord(ctx, "b")
		d.SeenAndRecord(ctx, "c")

		Convey("Then the oldest key is forgotten first", func() {
			So(d.Size(), ShouldEqual, 2)
			So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})

	Convey("Given concurrent callers racing on one key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "grade:hot") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one of them wins", func() {
			So(fresh, ShouldEqual, 1)
		})
	})
}
