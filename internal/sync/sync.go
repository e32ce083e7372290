// Package sync implements the offline-first reconciliation engine: per-entity
// sync services that upload dirty records, merge the server's copy back, and
// commit the result in a single store transaction, plus the orchestrator that
// sequences them and journals each run.
package sync

import (
	"errors"
	"log"
	"time"
)

var (
	// ErrSyncInProgress is returned when a run is requested while another run
	// of the same scope is still active.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrNoUser is returned when no signed-in user exists locally.
	ErrNoUser = errors.New("no signed-in user")
)

type options struct {
	logger    *log.Logger
	workers   int
	tieBreak  TieBreakPolicy
	now       func() time.Time
	publisher StatusPublisher
}

func defaultOptions() options {
	return options{
		logger:  log.New(log.Writer(), "[sync] ", log.LstdFlags),
		workers: 4,
		now:     time.Now,
	}
}

// Option configures optional behaviour shared by the sync services and the
// orchestrator.
type Option func(*options)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWorkers bounds the upload fan-out concurrency.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithTieBreak selects the winner when local and server timestamps are equal
// but payloads differ.
func WithTieBreak(policy TieBreakPolicy) Option {
	return func(o *options) {
		o.tieBreak = policy
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithStatusPublisher registers a companion publisher to refresh after each
// orchestrator run.
func WithStatusPublisher(p StatusPublisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}
