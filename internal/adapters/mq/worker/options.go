// Package worker runs pools of workers that drain a job queue.
package worker

import (
	"github.com/okian/tandem/pkg/logger"
)

// settings collects worker configuration shared by every payload type.
type settings struct {
	name   string
	logger logger.Logger
}

// Option applies a configuration option to the InMemoryWorker.
type Option func(*settings)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
