package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	service "github.com/okian/tandem/internal/app"
	"github.com/okian/tandem/internal/domain/overlap"
	. "github.com/smartystreets/goconvey/convey"
)

// mixedFormatReport exercises every configured date pattern plus the
// ongoing sentinel in a single report.
const mixedFormatReport = `EmpID,ProjectID,DateFrom,DateTo
101,alpha,2023-01-01,2023-06-01
102,alpha,03/01/2023,2023-09-01
103,alpha,01-Feb-23,28/02/2023
101,beta,2023/03/01,04-30-2023
102,beta,03-01-23,2023-04-30
104,beta,15-03-2023,NULL
105,gamma,2023-07-01,
`

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with full integration", t, func() {
		svc := service.New(
			service.WithDedupe(true),
			service.WithDedupeSize(500),
			service.WithEvaluationTime(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		Convey("When computing the listing for a mixed-format report", func() {
			rep, err := svc.Overlaps(ctx, strings.NewReader(mixedFormatReport))

			Convey("Then every date format is understood", func() {
				So(err, ShouldBeNil)
				So(rep.RowsLoaded, ShouldEqual, 7)
				So(rep.RowsSkipped, ShouldEqual, 0)
			})

			Convey("And the rows are ordered and positive", func() {
				So(len(rep.Overlaps), ShouldBeGreaterThan, 0)
				for i, row := range rep.Overlaps {
					So(row.Days, ShouldBeGreaterThan, 0)
					So(row.EmployeeA, ShouldNotEqual, row.EmployeeB)
					if i > 0 {
						prev := rep.Overlaps[i-1]
						if prev.EmployeeA == row.EmployeeA && prev.EmployeeB == row.EmployeeB {
							So(prev.ProjectID, ShouldNotEqual, row.ProjectID)
						}
					}
				}
			})
		})

		Convey("When the three operations see the same report", func() {
			rep, err := svc.Overlaps(ctx, strings.NewReader(mixedFormatReport))
			So(err, ShouldBeNil)

			top, err := svc.TopPair(ctx, strings.NewReader(mixedFormatReport))
			So(err, ShouldBeNil)

			entries, err := svc.TopPairs(ctx, strings.NewReader(mixedFormatReport), 100)
			So(err, ShouldBeNil)

			Convey("Then the winner matches the summed listing", func() {
				var summed int64
				projects := 0
				for _, row := range rep.Overlaps {
					if row.EmployeeA == top.EmployeeA && row.EmployeeB == top.EmployeeB {
						summed += row.Days
						projects++
					}
				}
				So(summed, ShouldEqual, top.TotalDays)
				So(projects, ShouldEqual, top.Projects)
			})

			Convey("And the ranked listing leads with the winner", func() {
				So(len(entries), ShouldBeGreaterThan, 0)
				So(entries[0].EmployeeA, ShouldEqual, top.EmployeeA)
				So(entries[0].EmployeeB, ShouldEqual, top.EmployeeB)
				So(entries[0].TotalDays, ShouldEqual, top.TotalDays)
				So(entries[0].Rank, ShouldEqual, 1)

				for i := 1; i < len(entries); i++ {
					So(entries[i-1].TotalDays, ShouldBeGreaterThanOrEqualTo, entries[i].TotalDays)
				}
			})
		})

		Convey("When the same report runs twice", func() {
			first, err := svc.Overlaps(ctx, strings.NewReader(mixedFormatReport))
			So(err, ShouldBeNil)
			second, err := svc.Overlaps(ctx, strings.NewReader(mixedFormatReport))
			So(err, ShouldBeNil)

			Convey("Then nothing leaks between invocations", func() {
				So(second.RowsLoaded, ShouldEqual, first.RowsLoaded)
				So(second.DuplicatesDropped, ShouldEqual, first.DuplicatesDropped)
				So(second.Overlaps, ShouldResemble, first.Overlaps)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a started service under concurrent load", t, func() {
		svc := service.New(
			service.WithEvaluationTime(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		Convey("When many goroutines compute reports at once", func() {
			numGoroutines := 10
			perGoroutine := 5

			var wg sync.WaitGroup
			errCh := make(chan error, numGoroutines*perGoroutine)
			daysCh := make(chan int64, numGoroutines*perGoroutine)

			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						top, err := svc.TopPair(ctx, strings.NewReader(mixedFormatReport))
						if err != nil {
							errCh <- err
							continue
						}
						daysCh <- top.TotalDays
					}
				}()
			}
			wg.Wait()
			close(errCh)
			close(daysCh)

			Convey("Then every computation succeeds", func() {
				for err := range errCh {
					So(err, ShouldBeNil)
				}
			})

			Convey("And every computation agrees", func() {
				var reference int64
				for days := range daysCh {
					if reference == 0 {
						reference = days
					}
					So(days, ShouldEqual, reference)
				}
				So(reference, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestServiceErrorHandling(t *testing.T) {
	Convey("Given a started service and hostile inputs", t, func() {
		svc := service.New()
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the report has no header at all", func() {
			_, err := svc.Overlaps(ctx, strings.NewReader(""))

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the header names the wrong columns", func() {
			_, err := svc.TopPair(ctx, strings.NewReader("a,b,c,d\n1,2,3,4"))

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When every row is for a single employee", func() {
			csv := strings.Join([]string{
				"EmpID,ProjectID,DateFrom,DateTo",
				"1,alpha,2023-01-01,2023-06-01",
				"1,beta,2023-02-01,2023-07-01",
			}, "\n")

			_, err := svc.TopPair(ctx, strings.NewReader(csv))

			Convey("Then no pair exists", func() {
				So(errors.Is(err, overlap.ErrNoOverlap), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When a report arrives anyway", func() {
			_, err := svc.Overlaps(context.Background(), strings.NewReader(mixedFormatReport))

			Convey("Then the lifecycle error is returned", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestServicePerformance(t *testing.T) {
	Convey("Given a started service and a large report", t, func() {
		svc := service.New(
			service.WithEvaluationTime(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)

		var b strings.Builder
		b.WriteString("EmpID,ProjectID,DateFrom,DateTo\n")
		for i := 0; i < 2000; i++ {
			fmt.Fprintf(&b, "%d,project-%d,2023-%02d-01,2023-%02d-28\n",
				i%100, i%20, 1+i%6, 7+i%6)
		}
		large := b.String()

		Convey("When computing the ranked listing", func() {
			start := time.Now()
			entries, err := svc.TopPairs(ctx, strings.NewReader(large), 50)
			elapsed := time.Since(start)

			Convey("Then it should finish quickly", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldBeGreaterThan, 0)
				So(elapsed, ShouldBeLessThan, 10*time.Second)
			})
		})

		Convey("When computing the single winner", func() {
			start := time.Now()
			top, err := svc.TopPair(ctx, strings.NewReader(large))
			elapsed := time.Since(start)

			Convey("Then it should finish quickly", func() {
				So(err, ShouldBeNil)
				So(top.TotalDays, ShouldBeGreaterThan, 0)
				So(elapsed, ShouldBeLessThan, 10*time.Second)
			})
		})
	})
}
