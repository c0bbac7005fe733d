package testreports

import (
	"fmt"
	"log"
)

// verifyTrial checks all three answers the service gave for one trial.
func verifyTrial(trial *Trial, top TopPair, report Report, entries []Entry) error {
	if err := verifyTopPair(trial, top); err != nil {
		return fmt.Errorf("top pair: %w", err)
	}
	if err := verifyListing(trial, report); err != nil {
		return fmt.Errorf("listing: %w", err)
	}
	if err := verifyRanking(trial, entries); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	return nil
}

// verifyTopPair checks the service's winner against the planted pair.
func verifyTopPair(trial *Trial, got TopPair) error {
	want := trial.Expected.Top

	if got.EmployeeA != want.EmployeeA || got.EmployeeB != want.EmployeeB {
		return fmt.Errorf("winner is (%s, %s), want (%s, %s)",
			got.EmployeeA, got.EmployeeB, want.EmployeeA, want.EmployeeB)
	}
	if got.TotalDays != want.TotalDays {
		return fmt.Errorf("winner has %d days, want %d", got.TotalDays, want.TotalDays)
	}
	if got.Projects != want.Projects {
		return fmt.Errorf("winner spans %d projects, want %d", got.Projects, want.Projects)
	}
	return nil
}

// verifyListing checks row accounting, ordering, day positivity and the
// planted winner's per-project days in the overlap listing.
func verifyListing(trial *Trial, report Report) error {
	if report.RowsLoaded != trial.Expected.RowsLoaded {
		return fmt.Errorf("%d rows loaded, want %d", report.RowsLoaded, trial.Expected.RowsLoaded)
	}
	if report.RowsSkipped != trial.Expected.RowsSkipped {
		return fmt.Errorf("%d rows skipped, want %d", report.RowsSkipped, trial.Expected.RowsSkipped)
	}

	want := trial.Expected.Top
	var winnerTotal int64
	winnerProjects := make(map[string]int64)

	for i, row := range report.Overlaps {
		if row.Days <= 0 {
			return fmt.Errorf("row %d has non-positive days: %d", i, row.Days)
		}
		if row.EmployeeA >= row.EmployeeB {
			return fmt.Errorf("row %d pair out of order: %s before %s", i, row.EmployeeA, row.EmployeeB)
		}
		if i > 0 && !rowLess(report.Overlaps[i-1], row) {
			return fmt.Errorf("listing out of order at row %d", i)
		}

		if row.EmployeeA == want.EmployeeA && row.EmployeeB == want.EmployeeB {
			winnerTotal += row.Days
			winnerProjects[row.ProjectID] = row.Days
		}
	}

	if winnerTotal != want.TotalDays {
		return fmt.Errorf("winner rows sum to %d days, want %d", winnerTotal, want.TotalDays)
	}
	if len(winnerProjects) != len(trial.Expected.ProjectDays) {
		return fmt.Errorf("winner appears on %d projects, want %d", len(winnerProjects), len(trial.Expected.ProjectDays))
	}
	for project, days := range trial.Expected.ProjectDays {
		got, ok := winnerProjects[project]
		if !ok {
			return fmt.Errorf("winner listing is missing project %s", project)
		}
		if got != days {
			return fmt.Errorf("project %s shows %d days, want %d", project, got, days)
		}
	}

	return nil
}

// rowLess reports whether x sorts before y in the listing order.
func rowLess(x, y PairRow) bool {
	if x.EmployeeA != y.EmployeeA {
		return x.EmployeeA < y.EmployeeA
	}
	if x.EmployeeB != y.EmployeeB {
		return x.EmployeeB < y.EmployeeB
	}
	return x.ProjectID < y.ProjectID
}

// verifyRanking checks the ranked listing is sorted, densely ranked and
// led by the planted winner.
func verifyRanking(trial *Trial, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("empty ranking")
	}

	want := trial.Expected.Top
	first := entries[0]

	if first.Rank != 1 {
		return fmt.Errorf("first entry has rank %d, want 1", first.Rank)
	}
	if first.EmployeeA != want.EmployeeA || first.EmployeeB != want.EmployeeB {
		return fmt.Errorf("ranking led by (%s, %s), want (%s, %s)",
			first.EmployeeA, first.EmployeeB, want.EmployeeA, want.EmployeeB)
	}
	if first.TotalDays != want.TotalDays {
		return fmt.Errorf("leader has %d days, want %d", first.TotalDays, want.TotalDays)
	}
	if first.Projects != want.Projects {
		return fmt.Errorf("leader spans %d projects, want %d", first.Projects, want.Projects)
	}

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		switch {
		case cur.TotalDays > prev.TotalDays:
			return fmt.Errorf("ranking not sorted at entry %d", i)
		case cur.TotalDays == prev.TotalDays && cur.Rank != prev.Rank:
			return fmt.Errorf("tied entries %d and %d carry ranks %d and %d", i-1, i, prev.Rank, cur.Rank)
		case cur.TotalDays < prev.TotalDays && cur.Rank != prev.Rank+1:
			return fmt.Errorf("rank did not advance densely at entry %d", i)
		}
	}

	return nil
}

// displaySample logs a short view of one verified trial for spot checks.
func displaySample(trial *Trial, top TopPair, entries []Entry) {
	log.Printf("🏆 Trial %s winner: (%s, %s) with %d days across %d projects",
		trial.ID, top.EmployeeA, top.EmployeeB, top.TotalDays, top.Projects)

	topN := 3
	if len(entries) < topN {
		topN = len(entries)
	}
	for i := 0; i < topN; i++ {
		e := entries[i]
		log.Printf("   %d. (%s, %s) - %d days", e.Rank, e.EmployeeA, e.EmployeeB, e.TotalDays)
	}
}
