package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	service "github.com/okian/tandem/internal/app"
	"github.com/okian/tandem/internal/domain/overlap"
	"github.com/okian/tandem/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	topDelimiter string
	topDedupe    bool
	topAsOf      string
)

// topCmd represents the top command
var topCmd = &cobra.Command{
	Use:   "top <report.csv>",
	Short: "Find the pair of employees with the longest total overlap",
	Long: `Find the pair of employees who worked together on common projects
for the longest accumulated time.

The report is a delimiter-separated file with a header row containing at
least EmpID, ProjectID, DateFrom and DateTo columns. Empty or NULL end
dates mean the assignment is still ongoing. Pass "-" to read the report
from stdin.

Examples:
  # Find the top pair in a report
  tandem top assignments.csv

  # Read the report from stdin
  cat assignments.csv | tandem top -

  # Drop exact duplicate rows first
  tandem top assignments.csv --dedupe

  # Pin the evaluation date for ongoing assignments
  tandem top assignments.csv --as-of 2023-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTop(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(topCmd)

	// Flags
	topCmd.Flags().StringVar(&topDelimiter, "delimiter", ",", "CSV field separator (single character)")
	topCmd.Flags().BoolVar(&topDedupe, "dedupe", false, "drop exact duplicate rows before computing")
	topCmd.Flags().StringVar(&topAsOf, "as-of", "", "evaluation date for ongoing assignments (YYYY-MM-DD, default: now)")
}

func runTop(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	svc, err := newLocalService(ctx, topDelimiter, topDedupe, topAsOf)
	if err != nil {
		return err
	}
	defer svc.Stop()

	r, err := openReport(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	top, err := svc.TopPair(ctx, r)
	if errors.Is(err, overlap.ErrNoOverlap) {
		// Not a failure: the report just has no pair that ever worked
		// together.
		fmt.Fprintln(cmd.OutOrStdout(), "No overlapping pair of employees found.")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Employee A:  %s\n", top.EmployeeA)
	fmt.Fprintf(out, "Employee B:  %s\n", top.EmployeeB)
	fmt.Fprintf(out, "Total days:  %d\n", top.TotalDays)
	fmt.Fprintf(out, "Projects:    %d\n", top.Projects)
	return nil
}

// newLocalService builds and starts a service for a single command run.
func newLocalService(ctx context.Context, delimiter string, dedupe bool, asOf string) (*service.Service, error) {
	if err := logger.Init(); err != nil {
		return nil, err
	}

	// Results go to stdout; keep service logs quiet unless asked.
	if logLevel != "" {
		if err := logger.SetLevelString(logLevel); err != nil {
			return nil, err
		}
	} else {
		logger.SetLevel(slog.LevelWarn)
	}

	runes := []rune(delimiter)
	if len(runes) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	opts := []service.Option{
		service.WithDelimiter(runes[0]),
		service.WithDedupe(dedupe),
	}
	if asOf != "" {
		t, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of date %q: %w", asOf, err)
		}
		opts = append(opts, service.WithEvaluationTime(t.UTC()))
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// openReport opens the report file; "-" means stdin.
func openReport(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	return f, nil
}
