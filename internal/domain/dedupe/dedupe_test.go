package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/tandem/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording record identities", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the identity is new", func() {
				seen := d.SeenAndRecord(context.Background(), "143\x1f12\x1f2013-11-01\x1f2014-01-05")

				Convey("Then it should return false and record it", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the identity repeats", func() {
				key := "218\x1f10\x1f2012-05-16\x1fongoing"
				d.SeenAndRecord(context.Background(), key)

				seen := d.SeenAndRecord(context.Background(), key)

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And several distinct identities arrive", func() {
				keys := []string{"a\x1f1", "a\x1f2", "b\x1f1", "b\x1f2", "c\x1f1"}

				for _, key := range keys {
					So(d.SeenAndRecord(context.Background(), key), ShouldBeFalse)
				}

				Convey("Then all are recorded and all repeat as seen", func() {
					So(d.Size(), ShouldEqual, int64(len(keys)))
					for _, key := range keys {
						So(d.SeenAndRecord(context.Background(), key), ShouldBeTrue)
					}
				})
			})
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to 3 identities", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When a fourth identity arrives", func() {
			for i := 1; i <= 3; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i))
			}
			d.SeenAndRecord(context.Background(), "key-4")

			Convey("Then the size stays at the bound", func() {
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("Then the oldest identity was evicted", func() {
				So(d.SeenAndRecord(context.Background(), "key-1"), ShouldBeFalse)
			})

			Convey("Then the newer identities are still seen", func() {
				So(d.SeenAndRecord(context.Background(), "key-3"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "key-4"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When many identities arrive", func() {
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(context.Background(), "key-0"), ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent producers hitting one deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))

		Convey("When 10 goroutines race over the same 100 identities", func() {
			var wg sync.WaitGroup
			firsts := make([]int, 10)

			for g := 0; g < 10; g++ {
				wg.Add(1)
				go func(slot int) {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i)) {
							firsts[slot]++
						}
					}
				}(g)
			}
			wg.Wait()

			Convey("Then each identity is recorded exactly once", func() {
				So(d.Size(), ShouldEqual, 100)
				total := 0
				for _, n := range firsts {
					total += n
				}
				So(total, ShouldEqual, 100)
			})
		})
	})
}
