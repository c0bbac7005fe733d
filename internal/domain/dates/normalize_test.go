package dates_test

import (
	"errors"
	"testing"

	dates "github.com/okian/tandem/internal/domain/dates"
	. "github.com/smartystreets/goconvey/convey"
)

func mustNormalizer(opts ...dates.Option) *dates.Normalizer {
	n, err := dates.NewNormalizer(opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func TestNormalizeFormats(t *testing.T) {
	Convey("Given the default format priority", t, func() {
		n := mustNormalizer()

		Convey("When parsing one spelling per supported format", func() {
			cases := []struct {
				raw  string
				want string
			}{
				{"2023-01-15", "2023-01-15"},
				{"03/04/2023", "2023-03-04"}, // MM/DD/YYYY outranks DD/MM/YYYY
				{"13/04/2023", "2023-04-13"}, // month 13 impossible, falls to DD/MM/YYYY
				{"05-Jan-23", "2023-01-05"},
				{"2023/07/09", "2023-07-09"},
				{"03-04-2023", "2023-03-04"}, // MM-DD-YYYY outranks DD-MM-YYYY
				{"03-04-23", "2023-03-04"},
				{"25-12-2023", "2023-12-25"}, // day 25 impossible as a month
			}
			for _, c := range cases {
				end, err := n.Normalize(c.raw)

				So(err, ShouldBeNil)
				So(end.IsOngoing(), ShouldBeFalse)
				d, _ := end.Date()
				So(d.String(), ShouldEqual, c.want)
			}
		})

		Convey("When re-normalizing a canonical output", func() {
			end, err := n.Normalize("2023-04-13")
			So(err, ShouldBeNil)
			d, _ := end.Date()

			again, err := n.Normalize(d.String())

			Convey("Then normalization is idempotent", func() {
				So(err, ShouldBeNil)
				got, _ := again.Date()
				So(got.Equal(d), ShouldBeTrue)
			})
		})
	})
}

func TestNormalizeOngoing(t *testing.T) {
	Convey("Given open-ended cell values", t, func() {
		n := mustNormalizer()

		Convey("Then the empty cell is ongoing", func() {
			end, err := n.Normalize("")

			So(err, ShouldBeNil)
			So(end.IsOngoing(), ShouldBeTrue)
		})

		Convey("Then NULL is ongoing in any case", func() {
			for _, raw := range []string{"NULL", "null", "Null", "nUlL"} {
				end, err := n.Normalize(raw)

				So(err, ShouldBeNil)
				So(end.IsOngoing(), ShouldBeTrue)
			}
		})
	})
}

func TestNormalizeStrictness(t *testing.T) {
	Convey("Given the round-trip guard", t, func() {
		n := mustNormalizer()

		reject := func(raw string) {
			end, err := n.Normalize(raw)

			So(end.IsOngoing(), ShouldBeFalse)
			So(err, ShouldNotBeNil)
			var ude *dates.UnparseableDateError
			So(errors.As(err, &ude), ShouldBeTrue)
			So(ude.Raw, ShouldEqual, raw)
		}

		Convey("Then impossible calendar days fail", func() {
			reject("2023-02-30")
			reject("2023-13-01")
			reject("2023-01-34")
		})

		Convey("Then unpadded spellings fail", func() {
			reject("3/4/2023")
			reject("2023-1-2")
		})

		Convey("Then month-name case must match", func() {
			reject("05-jan-23")
			reject("05-JAN-23")
		})

		Convey("Then junk fails", func() {
			reject("not a date")
			reject("2023-04-13T00:00:00Z")
			reject(" 2023-04-13")
		})
	})
}

func TestNormalizeTwoDigitYears(t *testing.T) {
	Convey("Given two-digit years", t, func() {
		n := mustNormalizer()

		Convey("Then 00-68 resolve into the 2000s", func() {
			end, err := n.Normalize("12-31-68")

			So(err, ShouldBeNil)
			d, _ := end.Date()
			So(d.String(), ShouldEqual, "2068-12-31")
		})

		Convey("Then 69-99 resolve into the 1900s", func() {
			end, err := n.Normalize("01-01-69")

			So(err, ShouldBeNil)
			d, _ := end.Date()
			So(d.String(), ShouldEqual, "1969-01-01")
		})

		Convey("Then the month-name format follows the same pivot", func() {
			end, err := n.Normalize("15-Jun-99")

			So(err, ShouldBeNil)
			d, _ := end.Date()
			So(d.String(), ShouldEqual, "1999-06-15")
		})
	})
}

func TestNormalizeCustomPatterns(t *testing.T) {
	Convey("Given a custom pattern list", t, func() {
		Convey("When only DD/MM/YYYY is configured", func() {
			n := mustNormalizer(dates.WithPatterns([]string{"DD/MM/YYYY"}))

			Convey("Then the ambiguous spelling flips meaning", func() {
				end, err := n.Normalize("03/04/2023")

				So(err, ShouldBeNil)
				d, _ := end.Date()
				So(d.String(), ShouldEqual, "2023-04-03")
			})

			Convey("And ISO input no longer parses", func() {
				_, err := n.Normalize("2023-04-03")

				var ude *dates.UnparseableDateError
				So(errors.As(err, &ude), ShouldBeTrue)
			})

			Convey("And the configured order is reported back", func() {
				So(n.Patterns(), ShouldResemble, []string{"DD/MM/YYYY"})
			})
		})

		Convey("When the list is empty", func() {
			_, err := dates.NewNormalizer(dates.WithPatterns(nil))

			Convey("Then construction fails", func() {
				So(errors.Is(err, dates.ErrNoPatterns), ShouldBeTrue)
			})
		})

		Convey("When a pattern is unknown", func() {
			_, err := dates.NewNormalizer(dates.WithPatterns([]string{"YYYY-QQ-DD"}))

			Convey("Then construction fails fast", func() {
				So(errors.Is(err, dates.ErrUnknownPattern), ShouldBeTrue)
			})
		})
	})
}
