package testreports

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/okian/tandem/internal/adapters/mq/queue"
	"github.com/okian/tandem/internal/adapters/mq/worker"
	"github.com/okian/tandem/pkg/logger"
)

// File permission constants.
const (
	directoryPermission  = 0750
	reportFilePermission = 0600
)

// counters tracks trial progress across workers.
type counters struct {
	submitted   int64
	verified    int64
	failed      int64
	mismatches  int64
	pairsListed int64
	lastReport  int64 // unix nanos of the last progress line
}

// Run executes the complete report test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting tandem report test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("reports", config.NumReports),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate report trials
	trials, err := generateTrials(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	// Step 3: Submit and verify trials through the worker pool
	if err := runTrials(ctx, config, trials, stats); err != nil {
		return fmt.Errorf("trial run failed: %w", err)
	}

	// Step 4: Save generated reports for replay
	if err := saveReports(ctx, config, trials); err != nil {
		logger.Get().Warn(ctx, "failed to save reports", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.Mismatches > 0 || stats.TrialsFailed > 0 {
		return fmt.Errorf("%d of %d trials failed verification", stats.TrialsFailed, stats.TrialsSubmitted)
	}

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// runTrials pushes every trial through the queue and worker pool and
// collects the verification counters.
func runTrials(ctx context.Context, config *Config, trials []Trial, stats *Stats) error {
	log.Printf("📤 Submitting %d reports with %d workers...", len(trials), config.Workers)

	client := newHTTPClient(config.Timeout)
	c := &counters{lastReport: time.Now().UnixNano()}

	q := queue.NewInMemoryQueue[Trial](
		queue.WithCapacity(config.QueueSize),
		queue.WithBufferSize(config.QueueSize),
	)
	handler := &trialHandler{client: client, config: config, counters: c, total: len(trials)}
	pool := worker.NewPool[Trial](config.Workers, q, handler)

	pool.Start(ctx)

	for i := range trials {
		for !q.Enqueue(ctx, trials[i]) {
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled during submission: %w", ctx.Err())
			}
			time.Sleep(time.Millisecond)
		}
	}

	// Closing the queue lets workers drain the backlog and stop.
	if err := q.Close(); err != nil {
		return fmt.Errorf("failed to close trial queue: %w", err)
	}
	if err := pool.Wait(ctx); err != nil {
		return err
	}

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.TrialsSubmitted = int(atomic.LoadInt64(&c.submitted))
	stats.TrialsVerified = int(atomic.LoadInt64(&c.verified))
	stats.TrialsFailed = int(atomic.LoadInt64(&c.failed))
	stats.Mismatches = int(atomic.LoadInt64(&c.mismatches))
	stats.PairsListed = int(atomic.LoadInt64(&c.pairsListed))

	log.Printf(`✅ Report submission completed:
   Verified: %d
   Failed: %d
`, stats.TrialsVerified, stats.TrialsFailed)

	return nil
}

// trialHandler submits one trial and checks every answer.
type trialHandler struct {
	client   *HTTPClient
	config   *Config
	counters *counters
	total    int
}

// Handle runs a single trial off the queue.
func (h *trialHandler) Handle(ctx context.Context, trial Trial) error {
	atomic.AddInt64(&h.counters.submitted, 1)

	err := h.runTrial(ctx, &trial)
	if err != nil {
		atomic.AddInt64(&h.counters.failed, 1)
	} else {
		atomic.AddInt64(&h.counters.verified, 1)
	}

	h.reportProgress()
	return err
}

// runTrial exercises all three operations for one report and verifies
// every answer against the trial's expectation.
func (h *trialHandler) runTrial(ctx context.Context, trial *Trial) error {
	top, err := fetchTopPair(ctx, h.client, h.config.BaseURL, trial.CSV)
	if err != nil {
		return fmt.Errorf("trial %s: %w", trial.ID, err)
	}

	report, err := fetchOverlaps(ctx, h.client, h.config.BaseURL, trial.CSV)
	if err != nil {
		return fmt.Errorf("trial %s: %w", trial.ID, err)
	}

	entries, err := fetchTopPairs(ctx, h.client, h.config.BaseURL, trial.CSV, h.config.TopN)
	if err != nil {
		return fmt.Errorf("trial %s: %w", trial.ID, err)
	}
	atomic.AddInt64(&h.counters.pairsListed, int64(len(entries)))

	if err := verifyTrial(trial, top, report, entries); err != nil {
		atomic.AddInt64(&h.counters.mismatches, 1)
		if h.config.Verbose {
			displaySample(trial, top, entries)
		}
		return fmt.Errorf("trial %s: %w", trial.ID, err)
	}

	return nil
}

// reportProgress prints a throttled progress line.
func (h *trialHandler) reportProgress() {
	last := atomic.LoadInt64(&h.counters.lastReport)
	now := time.Now().UnixNano()
	if now-last < int64(time.Second) {
		return
	}
	if !atomic.CompareAndSwapInt64(&h.counters.lastReport, last, now) {
		return
	}

	submitted := atomic.LoadInt64(&h.counters.submitted)
	verified := atomic.LoadInt64(&h.counters.verified)
	failed := atomic.LoadInt64(&h.counters.failed)

	if h.config.Verbose {
		log.Printf("📊 Progress: %d/%d submitted (verified: %d, failed: %d)",
			submitted, h.total, verified, failed)
	} else {
		fmt.Printf("\r📤 Submitted: %d/%d (verified: %d, failed: %d)",
			submitted, h.total, verified, failed)
	}
}

// saveReports writes the generated reports and a manifest for replay.
func saveReports(ctx context.Context, config *Config, trials []Trial) error {
	if len(trials) == 0 {
		return fmt.Errorf("no reports to save")
	}

	// Determine output directory
	dir := config.OutputDir
	if dir == "" {
		timestamp := time.Now().Format("20060102_150405")
		dir = "generated_reports_" + timestamp
	}

	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	type manifestEntry struct {
		ID       string  `json:"id"`
		File     string  `json:"file"`
		Expected TopPair `json:"expected_top_pair"`
	}
	manifest := make([]manifestEntry, 0, len(trials))

	for i := range trials {
		name := fmt.Sprintf("report_%04d.csv", i)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(trials[i].CSV), reportFilePermission); err != nil {
			return fmt.Errorf("failed to write report %d: %w", i, err)
		}
		manifest = append(manifest, manifestEntry{
			ID:       trials[i].ID,
			File:     name,
			Expected: trials[i].Expected.Top,
		})
	}

	data, err := marshalJSON(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, reportFilePermission); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	logger.Get().Info(ctx, "reports saved", logger.String("dir", dir), logger.Int("count", len(trials)))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, reportsPerSecond float64

	if stats.TrialsSubmitted > 0 {
		successRate = float64(stats.TrialsVerified) / float64(stats.TrialsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		reportsPerSecond = float64(stats.TrialsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("reportsGenerated", stats.ReportsGenerated),
		logger.Int("trialsSubmitted", stats.TrialsSubmitted),
		logger.Int("trialsVerified", stats.TrialsVerified),
		logger.Int("trialsFailed", stats.TrialsFailed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("pairsListed", stats.PairsListed),
		logger.Duration("duration", stats.Duration),
		logger.Any("successRate", successRate),
		logger.Any("reportsPerSecond", reportsPerSecond))
}
