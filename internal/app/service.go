// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tandem/internal/adapters/ranking"
	"github.com/okian/tandem/internal/adapters/report"
	"github.com/okian/tandem/internal/config"
	"github.com/okian/tandem/internal/domain/dates"
	"github.com/okian/tandem/internal/domain/dedupe"
	"github.com/okian/tandem/internal/domain/model"
	"github.com/okian/tandem/internal/domain/overlap"
	"github.com/okian/tandem/internal/domain/types"
	"github.com/okian/tandem/pkg/logger"
	"github.com/okian/tandem/pkg/metrics"
)

// Service implements the API dependencies for the overlap report system.
// Every report computation starts from a clean slate; only counters and
// configuration outlive a request.
type Service struct {
	mu sync.RWMutex

	// Core components
	normalizer *dates.Normalizer

	// Configuration
	datePatterns []string
	delimiter    rune
	dedupe       bool
	dedupeSize   int
	defaultLimit int
	maxLimit     int
	evalTime     time.Time

	// Running totals
	reportsComputed atomic.Int64
	rowsLoaded      atomic.Int64
	rowsSkipped     atomic.Int64
	rowsDuplicate   atomic.Int64
	lastPairs       atomic.Int64
	lastOverlapRows atomic.Int64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatePatterns sets the accepted assignment date formats.
func WithDatePatterns(patterns []string) Option {
	return func(s *Service) {
		if len(patterns) > 0 {
			s.datePatterns = patterns
		}
	}
}

// WithDelimiter sets the CSV field separator.
func WithDelimiter(d rune) Option {
	return func(s *Service) {
		if d != 0 {
			s.delimiter = d
		}
	}
}

// WithDedupe enables dropping of repeated assignment rows.
func WithDedupe(enabled bool) Option {
	return func(s *Service) {
		s.dedupe = enabled
	}
}

// WithDedupeSize bounds the per-report deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTopLimits sets the default and maximum entry counts for ranked
// listings.
func WithTopLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 && max >= def {
			s.defaultLimit = def
			s.maxLimit = max
		}
	}
}

// WithEvaluationTime pins the instant ongoing assignments resolve to.
// Unset, every report evaluates at its own start time.
func WithEvaluationTime(t time.Time) Option {
	return func(s *Service) {
		s.evalTime = t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		datePatterns: dates.DefaultPatterns(),
		delimiter:    ',',
		dedupe:       false,
		dedupeSize:   50_000,
		defaultLimit: 10,
		maxLimit:     100,
		logger:       nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewFromConfig constructs a Service configured from cfg.
func NewFromConfig(cfg *config.Config, opts ...Option) *Service {
	base := []Option{
		WithDatePatterns(cfg.DatePatterns),
		WithDelimiter(cfg.Delimiter()),
		WithDedupe(cfg.Dedupe),
		WithDedupeSize(cfg.DedupeSize),
		WithTopLimits(cfg.DefaultTopLimit, cfg.MaxTopLimit),
	}
	return New(append(base, opts...)...)
}

// Start prepares the service for report computations.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting overlap report service...")

	n, err := dates.NewNormalizer(dates.WithPatterns(s.datePatterns))
	if err != nil {
		return fmt.Errorf("compile date patterns: %w", err)
	}
	s.normalizer = n

	s.started = true
	s.logger.Info(ctx, "overlap report service started",
		logger.Int("datePatterns", len(s.datePatterns)),
		logger.String("delimiter", string(s.delimiter)),
		logger.Any("dedupe", s.dedupe),
	)

	return nil
}

// Stop shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "overlap report service stopped")
}

// newEngine builds a pairing engine for one computation.
func (s *Service) newEngine() *overlap.Engine {
	if s.evalTime.IsZero() {
		return overlap.NewEngine()
	}
	return overlap.NewEngine(overlap.WithEvaluationTime(s.evalTime))
}

// load parses one CSV report with fresh per-report state.
func (s *Service) load(ctx context.Context, r io.Reader) ([]model.AssignmentRecord, report.LoadStats, error) {
	if s.normalizer == nil {
		return nil, report.LoadStats{}, ErrNotStarted
	}

	opts := []report.Option{
		report.WithDelimiter(s.delimiter),
	}
	if s.dedupe {
		opts = append(opts, report.WithDeduper(
			dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		))
	}

	started := time.Now()
	records, stats, err := report.NewLoader(s.normalizer, opts...).Load(ctx, r)
	metrics.RecordLoadLatency(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.RecordReportError()
		return nil, report.LoadStats{}, err
	}

	s.rowsLoaded.Add(int64(stats.Loaded))
	s.rowsSkipped.Add(int64(stats.Skipped))
	s.rowsDuplicate.Add(int64(stats.Duplicates))
	metrics.AddRowsLoaded(stats.Loaded)
	metrics.AddRowsSkipped(stats.Skipped)
	metrics.AddRowsDuplicate(stats.Duplicates)

	s.logger.Debug(ctx, "report rows loaded",
		logger.Int("loaded", stats.Loaded),
		logger.Int("skipped", stats.Skipped),
		logger.Int("duplicates", stats.Duplicates),
	)
	return records, stats, nil
}

// Overlaps computes the full per-project overlap listing for one CSV
// report.
func (s *Service) Overlaps(ctx context.Context, r io.Reader) (model.Report, error) {
	records, stats, err := s.load(ctx, r)
	if err != nil {
		return model.Report{}, err
	}

	eng := s.newEngine()
	started := time.Now()
	rows := eng.AllOverlaps(records)
	metrics.RecordComputeLatency(float64(time.Since(started).Milliseconds()))

	s.reportsComputed.Add(1)
	s.lastOverlapRows.Store(int64(len(rows)))
	metrics.RecordReportProcessed()
	metrics.UpdateOverlapRows(len(rows))

	s.logger.Info(ctx, "overlap listing computed",
		logger.Int("rows", len(rows)),
		logger.Int("records", len(records)),
	)

	return model.Report{
		EvaluatedAt:       time.Now().UTC(),
		RowsLoaded:        stats.Loaded,
		RowsSkipped:       stats.Skipped,
		DuplicatesDropped: stats.Duplicates,
		Overlaps:          rows,
	}, nil
}

// TopPair finds the pair of employees with the longest summed overlap
// in one CSV report. Returns overlap.ErrNoOverlap when no two
// employees ever worked together.
func (s *Service) TopPair(ctx context.Context, r io.Reader) (model.TopPair, error) {
	records, _, err := s.load(ctx, r)
	if err != nil {
		return model.TopPair{}, err
	}

	store := ranking.NewTreapStore()
	eng := s.newEngine()
	started := time.Now()
	top, err := eng.TopPair(ctx, records, store)
	metrics.RecordComputeLatency(float64(time.Since(started).Milliseconds()))
	if err != nil && !errors.Is(err, overlap.ErrNoOverlap) {
		metrics.RecordReportError()
		return model.TopPair{}, err
	}

	s.reportsComputed.Add(1)
	s.lastPairs.Store(int64(store.Count(ctx)))
	metrics.RecordReportProcessed()
	metrics.UpdatePairsTracked(store.Count(ctx))

	if err != nil {
		s.logger.Info(ctx, "no overlapping pair in report",
			logger.Int("records", len(records)),
		)
		return model.TopPair{}, err
	}

	s.logger.Info(ctx, "top pair computed",
		logger.String("employeeA", top.EmployeeA),
		logger.String("employeeB", top.EmployeeB),
		logger.Int64("totalDays", top.TotalDays),
	)
	return top, nil
}

// TopPairs lists up to limit pairs ranked by summed overlap. A
// non-positive limit falls back to the configured default; limits
// above the configured maximum are capped.
func (s *Service) TopPairs(ctx context.Context, r io.Reader, limit int) ([]types.Entry, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	records, _, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}

	store := ranking.NewTreapStore()
	eng := s.newEngine()
	started := time.Now()
	if err := eng.Feed(ctx, records, store); err != nil {
		metrics.RecordReportError()
		return nil, err
	}
	metrics.RecordComputeLatency(float64(time.Since(started).Milliseconds()))

	s.reportsComputed.Add(1)
	s.lastPairs.Store(int64(store.Count(ctx)))
	metrics.RecordReportProcessed()
	metrics.UpdatePairsTracked(store.Count(ctx))

	if store.Count(ctx) == 0 {
		return []types.Entry{}, nil
	}
	return store.TopN(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":         s.started,
		"dedupe":          s.dedupe,
		"dedupeSize":      s.dedupeSize,
		"datePatterns":    len(s.datePatterns),
		"defaultTopLimit": s.defaultLimit,
		"maxTopLimit":     s.maxLimit,
		"reportsComputed": s.reportsComputed.Load(),
		"rowsLoaded":      s.rowsLoaded.Load(),
		"rowsSkipped":     s.rowsSkipped.Load(),
		"rowsDuplicate":   s.rowsDuplicate.Load(),
		"lastPairs":       s.lastPairs.Load(),
		"lastOverlapRows": s.lastOverlapRows.Load(),
	}
}
