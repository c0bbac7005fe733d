package cmd

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/tandem/internal/adapters/http/api"
	"github.com/okian/tandem/internal/adapters/http/swagger"
	service "github.com/okian/tandem/internal/app"
	"github.com/okian/tandem/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

const overlapReport = `EmpID,ProjectID,DateFrom,DateTo
143,10,2023-01-01,2023-06-01
218,10,2023-03-01,2023-09-01
`

const disjointReport = `EmpID,ProjectID,DateFrom,DateTo
143,10,2023-01-01,2023-02-01
218,11,2023-01-01,2023-02-01
`

// writeReport drops a CSV into a temp dir and returns its path.
func writeReport(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assignments.csv")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("write report: %v", err)
	}
	return path
}

// execute runs the root command with args and captures its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		convey.Convey("Then the expected subcommands should be registered", func() {
			expected := []string{"serve", "version", "top", "overlaps"}
			for _, name := range expected {
				found := false
				for _, sub := range rootCmd.Commands() {
					if sub.Name() == name {
						found = true
						break
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			}
		})

		convey.Convey("And the global flags should be defined", func() {
			convey.So(rootCmd.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
			convey.So(rootCmd.PersistentFlags().Lookup("log-level"), convey.ShouldNotBeNil)
		})
	})
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		convey.Convey("When executed", func() {
			output, err := execute("version")

			convey.Convey("Then it should print version information", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(output, convey.ShouldContainSubstring, "Tandem Overlap Service")
				convey.So(output, convey.ShouldContainSubstring, "Version:")
				convey.So(output, convey.ShouldContainSubstring, "Go version:")
				convey.So(output, convey.ShouldContainSubstring, "Platform:")
			})
		})
	})
}

func TestTopCommand(t *testing.T) {
	convey.Convey("Given the top command", t, func() {
		convey.Convey("When the report has one overlapping pair", func() {
			path := writeReport(t, overlapReport)
			output, err := execute("top", path)

			convey.Convey("Then it should print the pair and its total days", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(output, convey.ShouldContainSubstring, "Employee A:  143")
				convey.So(output, convey.ShouldContainSubstring, "Employee B:  218")
				convey.So(output, convey.ShouldContainSubstring, "Total days:  92")
				convey.So(output, convey.ShouldContainSubstring, "Projects:    1")
			})
		})

		convey.Convey("When no two employees ever shared a project", func() {
			path := writeReport(t, disjointReport)
			output, err := execute("top", path)

			convey.Convey("Then it should report no pair and still succeed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(output, convey.ShouldContainSubstring, "No overlapping pair of employees found.")
			})
		})

		convey.Convey("When the report file does not exist", func() {
			_, err := execute("top", filepath.Join(t.TempDir(), "missing.csv"))

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a required column is missing", func() {
			path := writeReport(t, "EmpID,ProjectID,DateFrom\n143,10,2023-01-01\n")
			_, err := execute("top", path)

			convey.Convey("Then it should fail with the schema error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "missing required columns")
			})
		})

		convey.Convey("When a date cell matches no supported format", func() {
			path := writeReport(t, "EmpID,ProjectID,DateFrom,DateTo\n143,10,2023-13-45,NULL\n")
			_, err := execute("top", path)

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestOverlapsCommand(t *testing.T) {
	convey.Convey("Given the overlaps command", t, func() {
		convey.Convey("When printing the table format", func() {
			path := writeReport(t, overlapReport)
			output, err := execute("overlaps", path, "--format", "table")

			convey.Convey("Then it should render one row per shared project", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(output, convey.ShouldContainSubstring, "2 row(s) loaded")
				convey.So(output, convey.ShouldContainSubstring, "EMPLOYEE A")
				convey.So(output, convey.ShouldContainSubstring, "143")
				convey.So(output, convey.ShouldContainSubstring, "218")
				convey.So(output, convey.ShouldContainSubstring, "92")
			})
		})

		convey.Convey("When printing the JSON format", func() {
			path := writeReport(t, overlapReport)
			output, err := execute("overlaps", path, "--format", "json")

			convey.Convey("Then it should emit the full report", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(output, convey.ShouldContainSubstring, `"RowsLoaded": 2`)
				convey.So(output, convey.ShouldContainSubstring, `"Days": 92`)
			})
		})

		convey.Convey("When the format is unknown", func() {
			path := writeReport(t, overlapReport)
			_, err := execute("overlaps", path, "--format", "xml")

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unknown format")
			})
		})

		convey.Convey("When the report has no overlapping assignments", func() {
			path := writeReport(t, disjointReport)
			output, err := execute("overlaps", path, "--format", "table")

			convey.Convey("Then it should say so instead of rendering a table", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(output, convey.ShouldContainSubstring, "No overlapping assignments found.")
			})
		})
	})
}

func TestCommandHelpers(t *testing.T) {
	convey.Convey("Given the command helpers", t, func() {
		convey.Convey("When the delimiter is not a single character", func() {
			_, err := newLocalService(context.Background(), ";;", false, "")

			convey.Convey("Then service construction should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "single character")
			})
		})

		convey.Convey("When the as-of date is malformed", func() {
			_, err := newLocalService(context.Background(), ",", false, "31-12-2023x")

			convey.Convey("Then service construction should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "as-of")
			})
		})

		convey.Convey("When opening a missing report", func() {
			_, err := openReport(filepath.Join(t.TempDir(), "nothing.csv"))

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When opening stdin via the dash convention", func() {
			r, err := openReport("-")

			convey.Convey("Then it should succeed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r, convey.ShouldNotBeNil)
				convey.So(r.Close(), convey.ShouldBeNil)
			})
		})
	})
}

func TestServeComponents(t *testing.T) {
	convey.Convey("Given the serve command components", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("TANDEM_ADDR", ":8080")
			defer func() { _ = os.Unsetenv("TANDEM_ADDR") }()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			})
		})

		convey.Convey("When testing full route registration", func() {
			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)

				// Create service (without starting to avoid logger dependency)
				svc := service.NewFromConfig(cfg)
				convey.So(svc, convey.ShouldNotBeNil)

				server := api.NewServer(svc, svc, cfg.MaxTopLimit, cfg.MaxUploadBytes)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				server.Register(ctx, mux, svc)
				swagger.Register(ctx, mux)

				svc.Stop()
			})
		})

		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := service.New()

			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating metrics directly", func() {
			svc := service.New()

			convey.Convey("Then neither updater should panic", func() {
				convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
