package model_test

import (
	"testing"
	"time"

	dates "github.com/okian/tandem/internal/domain/dates"
	model "github.com/okian/tandem/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) dates.Date {
	return dates.DateOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestAssignmentRecord(t *testing.T) {
	convey.Convey("Given an AssignmentRecord", t, func() {
		convey.Convey("When creating a bounded assignment", func() {
			rec := model.AssignmentRecord{
				EmpID:     "143",
				ProjectID: "12",
				From:      day(2013, time.November, 1),
				To:        dates.Fixed(day(2014, time.January, 5)),
			}

			convey.Convey("Then it should carry the correct values", func() {
				convey.So(rec.EmpID, convey.ShouldEqual, "143")
				convey.So(rec.ProjectID, convey.ShouldEqual, "12")
				convey.So(rec.From.String(), convey.ShouldEqual, "2013-11-01")
				convey.So(rec.To.IsOngoing(), convey.ShouldBeFalse)
				convey.So(rec.To.String(), convey.ShouldEqual, "2014-01-05")
			})
		})

		convey.Convey("When creating an ongoing assignment", func() {
			rec := model.AssignmentRecord{
				EmpID:     "218",
				ProjectID: "10",
				From:      day(2012, time.May, 16),
				To:        dates.Ongoing(),
			}

			convey.Convey("Then the end stays open until resolved", func() {
				convey.So(rec.To.IsOngoing(), convey.ShouldBeTrue)
				eval := time.Date(2012, time.June, 1, 0, 0, 0, 0, time.UTC)
				convey.So(rec.To.Resolve(eval), convey.ShouldEqual, eval)
			})
		})
	})
}

func TestPairOverlap(t *testing.T) {
	convey.Convey("Given a PairOverlap row", t, func() {
		row := model.PairOverlap{
			EmployeeA: "143",
			EmployeeB: "218",
			ProjectID: "12",
			Days:      66,
		}

		convey.Convey("Then it should carry the correct values", func() {
			convey.So(row.EmployeeA, convey.ShouldEqual, "143")
			convey.So(row.EmployeeB, convey.ShouldEqual, "218")
			convey.So(row.ProjectID, convey.ShouldEqual, "12")
			convey.So(row.Days, convey.ShouldEqual, 66)
		})
	})
}

func TestReport(t *testing.T) {
	convey.Convey("Given a Report", t, func() {
		evaluated := time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC)
		report := model.Report{
			EvaluatedAt: evaluated,
			RowsLoaded:  4,
			RowsSkipped: 1,
			Overlaps: []model.PairOverlap{
				{EmployeeA: "143", EmployeeB: "218", ProjectID: "12", Days: 66},
			},
		}

		convey.Convey("Then it should carry the load accounting", func() {
			convey.So(report.EvaluatedAt, convey.ShouldEqual, evaluated)
			convey.So(report.RowsLoaded, convey.ShouldEqual, 4)
			convey.So(report.RowsSkipped, convey.ShouldEqual, 1)
			convey.So(report.DuplicatesDropped, convey.ShouldEqual, 0)
			convey.So(report.Overlaps, convey.ShouldHaveLength, 1)
		})

		convey.Convey("When the computation found nothing", func() {
			empty := model.Report{EvaluatedAt: evaluated}

			convey.Convey("Then the overlap list is empty, not nil-sensitive", func() {
				convey.So(empty.Overlaps, convey.ShouldHaveLength, 0)
			})
		})
	})
}
