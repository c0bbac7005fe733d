package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/tandem/internal/config"
	"github.com/okian/tandem/internal/domain/dates"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatePatterns, convey.ShouldResemble, dates.DefaultPatterns())
			convey.So(cfg.CSVDelimiter, convey.ShouldEqual, ",")
			convey.So(cfg.Dedupe, convey.ShouldBeFalse)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 10<<20)
			convey.So(cfg.DefaultTopLimit, convey.ShouldEqual, 10)
			convey.So(cfg.MaxTopLimit, convey.ShouldEqual, 100)
			convey.So(cfg.ReadTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.WriteTimeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 5*time.Second)
		})

		convey.Convey("Then the delimiter converts to a rune", func() {
			convey.So(cfg.Delimiter(), convey.ShouldEqual, ',')

			cfg.CSVDelimiter = ";"
			convey.So(cfg.Delimiter(), convey.ShouldEqual, ';')

			cfg.CSVDelimiter = "\t"
			convey.So(cfg.Delimiter(), convey.ShouldEqual, '\t')
		})
	})
}
