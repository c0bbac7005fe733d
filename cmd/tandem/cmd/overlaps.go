package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/tandem/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	overlapsDelimiter string
	overlapsDedupe    bool
	overlapsAsOf      string
	overlapsFormat    string
)

// overlapsCmd represents the overlaps command
var overlapsCmd = &cobra.Command{
	Use:   "overlaps <report.csv>",
	Short: "List every per-project overlap in a report",
	Long: `List, for every pair of employees who shared a project, how many days
their assignments overlapped on that project. Pairs spanning several
shared projects produce one row per project.

Rows are ordered by employee A, employee B, then project. Pass "-" to
read the report from stdin.

Examples:
  # Print the overlap table
  tandem overlaps assignments.csv

  # Emit the full report as JSON
  tandem overlaps assignments.csv --format json

  # Use semicolon-separated input
  tandem overlaps assignments.csv --delimiter ";"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverlaps(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(overlapsCmd)

	// Flags
	overlapsCmd.Flags().StringVar(&overlapsDelimiter, "delimiter", ",", "CSV field separator (single character)")
	overlapsCmd.Flags().BoolVar(&overlapsDedupe, "dedupe", false, "drop exact duplicate rows before computing")
	overlapsCmd.Flags().StringVar(&overlapsAsOf, "as-of", "", "evaluation date for ongoing assignments (YYYY-MM-DD, default: now)")
	overlapsCmd.Flags().StringVar(&overlapsFormat, "format", "table", "output format: table or json")
}

func runOverlaps(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	svc, err := newLocalService(ctx, overlapsDelimiter, overlapsDedupe, overlapsAsOf)
	if err != nil {
		return err
	}
	defer svc.Stop()

	r, err := openReport(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	rep, err := svc.Overlaps(ctx, r)
	if err != nil {
		return err
	}

	switch overlapsFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "table":
		return writeOverlapTable(cmd.OutOrStdout(), rep)
	default:
		return fmt.Errorf("unknown format %q (want table or json)", overlapsFormat)
	}
}

func writeOverlapTable(out io.Writer, rep model.Report) error {
	fmt.Fprintf(out, "%d row(s) loaded, %d skipped, %d duplicate(s) dropped\n",
		rep.RowsLoaded, rep.RowsSkipped, rep.DuplicatesDropped)

	if len(rep.Overlaps) == 0 {
		fmt.Fprintln(out, "No overlapping assignments found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMPLOYEE A\tEMPLOYEE B\tPROJECT\tDAYS")
	for _, row := range rep.Overlaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", row.EmployeeA, row.EmployeeB, row.ProjectID, row.Days)
	}
	return w.Flush()
}
