package model_test

import (
	"testing"

	model "github.com/okian/fanhop/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestJobKey(t *testing.T) {
	convey.Convey("Given grading jobs", t, func() {
		grade := model.Job{ModelID: "m1", Kind: model.JobGrade}
		again := model.Job{ModelID: "m1", Kind: model.JobGrade}
		remove := model.Job{ModelID: "m1", Kind: model.JobRemove}

		convey.Convey("Then jobs of the same kind for a model share a key", func() {
			convey.So(grade.Key(), convey.ShouldEqual, again.Key())
		})

		convey.Convey("Then a removal is never coalesced with a grade", func() {
			convey.So(grade.Key(), convey.ShouldNotEqual, remove.Key())
			convey.So(remove.Key(), convey.ShouldEqual, "remove:m1")
		})
	})
}
