package testreports

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tandem/pkg/logger"
)

// Planted winner windows. The winning pair shares two projects: both
// cover the first project for the same four months, and their second
// project overlaps for two. Every filler overlap stays far below the
// winner's total, so the expected answer never depends on randomness.
const (
	winnerFirstDays  = 120 // 2023-01-01 up to 2023-05-01
	winnerSecondDays = 62  // 2023-07-01 up to 2023-09-01
)

// Filler generation constants.
const (
	fillerProjects        = 10
	fillerMaxOverlapDays  = 15
	fillerMaxLeadDays     = 5
	fillerMaxTailDays     = 5
	fillerStartSpreadDays = 300
)

// Layouts the service accepts that are also unambiguous under its
// ordered matching, so a formatted date always reads back as the same
// day. Day-first numeric layouts are excluded: a day twelve or lower
// would be taken for a month.
var safeLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02-Jan-06",
	"2006/01/02",
	"01-02-2006",
}

// Tokens the service treats as a still-running assignment.
var ongoingTokens = []string{"", "NULL", "null", "Null"}

// randInt returns a random int64 in [0, n) using crypto/rand.
func randInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// formatDate renders a day in one of the safe layouts, picked at random.
func formatDate(t time.Time) string {
	layout := safeLayouts[randInt(int64(len(safeLayouts)))]
	return t.Format(layout)
}

// generateTrials creates the specified number of report trials.
func generateTrials(ctx context.Context, config *Config, stats *Stats) ([]Trial, error) {
	logger.Get().Info(ctx, "generating reports with a planted winning pair", logger.Int("numReports", config.NumReports))

	trials := make([]Trial, config.NumReports)

	// Generate trials concurrently
	type trialResult struct {
		index int
		trial Trial
		err   error
	}

	resultChan := make(chan trialResult, config.NumReports)

	// Use worker pool for trial generation
	workerCount := minInt(config.Workers, config.NumReports)
	if workerCount < 1 {
		workerCount = 1
	}
	trialsPerWorker := config.NumReports / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * trialsPerWorker
		end := start + trialsPerWorker
		if worker == workerCount-1 {
			end = config.NumReports // Last worker gets remaining trials
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- trialResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- trialResult{index: i, trial: generateTrial(i)}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumReports; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during report generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate report %d: %w", result.index, result.err)
			}
			trials[result.index] = result.trial
		}
	}

	stats.ReportsGenerated = len(trials)
	logger.Get().Info(ctx, "generated reports successfully", logger.Int("count", len(trials)))

	return trials, nil
}

// generateTrial creates a single report with a known longest-working pair.
func generateTrial(index int) Trial {
	winnerA := uuid.New().String()
	winnerB := uuid.New().String()
	a, b := winnerA, winnerB
	if b < a {
		a, b = b, a
	}

	proj1 := uuid.New().String()
	proj2 := uuid.New().String()

	jan1 := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	may1 := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	jun1 := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	jul1 := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	sep1 := time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)
	oct1 := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)

	var rows []string
	loaded := 0
	addRow := func(emp, project string, from, to time.Time) {
		rows = append(rows, emp+","+project+","+formatDate(from)+","+formatDate(to))
		loaded++
	}

	// The planted winner: a full shared window on the first project and
	// a partial one on the second.
	addRow(winnerA, proj1, jan1, may1)
	addRow(winnerB, proj1, jan1, may1)
	addRow(winnerA, proj2, jun1, sep1)
	addRow(winnerB, proj2, jul1, oct1)

	// Filler pairs. Each filler employee appears on exactly one project
	// with exactly one partner, so no filler pair can accumulate enough
	// days to challenge the winner.
	for p := 0; p < fillerProjects; p++ {
		e1 := uuid.New().String()
		e2 := uuid.New().String()
		project := uuid.New().String()

		start := jan1.AddDate(0, 0, int(randInt(fillerStartSpreadDays)))
		overlap := int(randInt(fillerMaxOverlapDays)) + 1
		lead := int(randInt(fillerMaxLeadDays))
		tail := int(randInt(fillerMaxTailDays))

		// The second window sits inside the first, so the pair's
		// overlap is exactly the inner window's length.
		addRow(e1, project, start, start.AddDate(0, 0, lead+overlap+tail))
		addRow(e2, project, start.AddDate(0, 0, lead), start.AddDate(0, 0, lead+overlap))
	}

	// A still-running assignment keeps the ongoing path hot. The
	// employee works alone, so the winner is untouched.
	if index%3 == 0 {
		token := ongoingTokens[randInt(int64(len(ongoingTokens)))]
		rows = append(rows, uuid.New().String()+","+uuid.New().String()+","+formatDate(jun1)+","+token)
		loaded++
	}

	// A reversed assignment loads fine but contributes no days.
	if index%5 == 0 {
		rows = append(rows, uuid.New().String()+","+uuid.New().String()+","+formatDate(sep1)+","+formatDate(jun1))
		loaded++
	}

	// A short row is dropped silently by the loader.
	skipped := 0
	if index%2 == 0 {
		rows = append(rows, "oops")
		skipped++
	}

	shuffleRows(rows)

	var sb strings.Builder
	sb.WriteString("EmpID,ProjectID,DateFrom,DateTo\n")
	sb.WriteString(strings.Join(rows, "\n"))
	sb.WriteString("\n")

	return Trial{
		ID:  fmt.Sprintf("trial_%d_%d", index, time.Now().Unix()),
		CSV: sb.String(),
		Expected: Expectation{
			Top: TopPair{
				EmployeeA: a,
				EmployeeB: b,
				TotalDays: winnerFirstDays + winnerSecondDays,
				Projects:  2,
			},
			RowsLoaded:  loaded,
			RowsSkipped: skipped,
			ProjectDays: map[string]int64{
				proj1: winnerFirstDays,
				proj2: winnerSecondDays,
			},
		},
	}
}

// shuffleRows randomizes row order in place.
func shuffleRows(rows []string) {
	for i := len(rows) - 1; i > 0; i-- {
		j := int(randInt(int64(i + 1)))
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
