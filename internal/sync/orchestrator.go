package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"example.com/fitsync/internal/domain"
	"example.com/fitsync/internal/settings"
	"example.com/fitsync/internal/store/sqlite"
)

// Engine state values stored under settings.KeySyncState.
const (
	StateIdle    = "idle"
	StateLoading = "loadingInitialData"
	StateSyncing = "synchronizingData"
	StateError   = "error"
)

// entitySyncer is one entity-type sync service.
type entitySyncer interface {
	Sync(ctx context.Context, userID string) (domain.EntityStats, []domain.SyncError, error)
}

// StatusPublisher refreshes the companion device after a run.
type StatusPublisher interface {
	Republish(ctx context.Context)
}

// Orchestrator sequences the entity services, journals every run, and drives
// the engine state machine through the settings store.
type Orchestrator struct {
	store      *sqlite.Store
	settings   settings.Store
	progress   entitySyncer
	exercises  entitySyncer
	activities entitySyncer
	opts       options
	running    atomic.Bool
}

// NewOrchestrator constructs an Orchestrator. The syncer arguments are listed
// in run order.
func NewOrchestrator(store *sqlite.Store, sett settings.Store, progress, exercises, activities entitySyncer, opts ...Option) *Orchestrator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Orchestrator{
		store:      store,
		settings:   sett,
		progress:   progress,
		exercises:  exercises,
		activities: activities,
		opts:       o,
	}
}

// Run executes one full sync: progress, then custom exercises, then
// activities. A failing entity type never blocks its siblings; per-record
// errors land in the journal entry. Returns ErrNoUser when nobody is signed
// in and ErrSyncInProgress when a run is already active.
func (o *Orchestrator) Run(ctx context.Context) (domain.JournalEntry, error) {
	if !o.running.CompareAndSwap(false, true) {
		return domain.JournalEntry{}, ErrSyncInProgress
	}
	defer o.running.Store(false)

	user, err := o.store.CurrentUser(ctx)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("load current user: %w", err)
	}
	if user == nil {
		o.opts.logger.Printf("no signed-in user, skipping run")
		return domain.JournalEntry{}, ErrNoUser
	}

	done, _, err := o.settings.Get(ctx, settings.KeyFirstSyncDone)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("read first-sync flag: %w", err)
	}
	firstRun := done != "true"
	if firstRun {
		o.setState(ctx, StateLoading)
	} else {
		o.setState(ctx, StateSyncing)
	}

	entry := domain.JournalEntry{
		RunID:     uuid.NewString(),
		StartedAt: o.opts.now().UTC(),
		Stats:     make(map[domain.EntityType]domain.EntityStats),
	}

	steps := []struct {
		entity domain.EntityType
		syncer entitySyncer
	}{
		{domain.EntityProgress, o.progress},
		{domain.EntityExercises, o.exercises},
		{domain.EntityActivities, o.activities},
	}
	for _, step := range steps {
		stats, errs, err := step.syncer.Sync(ctx, user.ID)
		entry.Stats[step.entity] = stats
		entry.Errors = append(entry.Errors, errs...)
		if err != nil {
			o.opts.logger.Printf("%s sync failed: %v", step.entity, err)
			entry.Errors = append(entry.Errors, domain.SyncError{
				Type:       "internal",
				Message:    err.Error(),
				EntityType: step.entity,
			})
		}
		recordEntityStats(step.entity, stats)
	}

	entry.FinishedAt = o.opts.now().UTC()
	entry.Result = domain.Classify(entry.Stats, entry.Errors)
	recordRun(entry.Result, entry.FinishedAt.Sub(entry.StartedAt))

	if err := o.store.AppendJournal(ctx, entry); err != nil {
		o.opts.logger.Printf("append journal: %v", err)
	}
	if err := o.settings.Set(ctx, settings.KeyLastSyncDate, entry.FinishedAt.Format(time.RFC3339)); err != nil {
		o.opts.logger.Printf("persist last sync date: %v", err)
	}

	// A failed first run surfaces as the error state so the caller retries
	// the initial load; later failures are journaled and the engine returns
	// to idle.
	switch {
	case entry.Result != domain.ResultError:
		if firstRun {
			if err := o.settings.Set(ctx, settings.KeyFirstSyncDone, "true"); err != nil {
				o.opts.logger.Printf("persist first-sync flag: %v", err)
			}
		}
		o.setState(ctx, StateIdle)
	case firstRun:
		o.setState(ctx, StateError)
	default:
		o.setState(ctx, StateIdle)
	}

	if o.opts.publisher != nil {
		o.opts.publisher.Republish(ctx)
	}
	return entry, nil
}

func (o *Orchestrator) setState(ctx context.Context, state string) {
	if err := o.settings.Set(ctx, settings.KeySyncState, state); err != nil {
		o.opts.logger.Printf("persist state %q: %v", state, err)
	}
}
