package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/tandem/internal/testreports"
)

// Default configuration constants.
const (
	defaultNumReports  = 200
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultQueueSize   = 1000
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numReports = flag.Int("reports", defaultNumReports, "Number of CSV reports to generate and submit")
		topN       = flag.Int("top", defaultTopN, "Number of ranked pairs to fetch per report")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		queueSize  = flag.Int("queue", defaultQueueSize, "Capacity of the trial queue")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputDir  = flag.String("output", "", "Output directory for generated reports (default: generated_reports_TIMESTAMP)")
		logFile    = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testreports.ShowHelp()
		return
	}

	// Setup logging
	if err := testreports.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testreports.Config{
		BaseURL:    *baseURL,
		NumReports: *numReports,
		TopN:       *topN,
		Workers:    *workers,
		QueueSize:  *queueSize,
		Timeout:    *timeout,
		OutputDir:  *outputDir,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the test
	if err := testreports.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
