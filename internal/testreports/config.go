package testreports

import "time"

// Config holds configuration for the report test
type Config struct {
	BaseURL    string        // Base URL of the service
	NumReports int           // Number of reports to generate
	TopN       int           // Number of ranked pairs to fetch per report
	Workers    int           // Number of concurrent workers
	QueueSize  int           // Capacity of the trial queue
	Timeout    time.Duration // HTTP request timeout
	OutputDir  string        // Directory for generated reports
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// Trial is one generated report together with the outcome it must produce.
type Trial struct {
	ID       string
	CSV      string
	Expected Expectation
}

// Expectation is what the service must answer for a trial's report.
type Expectation struct {
	Top         TopPair
	RowsLoaded  int
	RowsSkipped int
	ProjectDays map[string]int64 // winning pair's overlap per planted project
}

// TopPair mirrors the /toppair response body.
type TopPair struct {
	EmployeeA string
	EmployeeB string
	TotalDays int64
	Projects  int
}

// PairRow mirrors one row of the /overlaps listing.
type PairRow struct {
	EmployeeA string
	EmployeeB string
	ProjectID string
	Days      int64
}

// Report mirrors the /overlaps response body.
type Report struct {
	RowsLoaded        int
	RowsSkipped       int
	DuplicatesDropped int
	Overlaps          []PairRow
}

// Entry mirrors one /toppairs entry.
type Entry struct {
	Rank      int    `json:"rank"`
	EmployeeA string `json:"employee_a"`
	EmployeeB string `json:"employee_b"`
	TotalDays int64  `json:"total_days"`
	Projects  int    `json:"projects"`
}

// ErrorBody mirrors the API error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds test statistics
type Stats struct {
	ReportsGenerated int
	TrialsSubmitted  int
	TrialsVerified   int
	TrialsFailed     int
	Mismatches       int
	PairsListed      int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
