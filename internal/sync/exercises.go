package sync

import (
	"context"
	"fmt"
	"sync/atomic"

	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/domain"
	"example.com/fitsync/internal/store/sqlite"
)

// ExerciseAPI is the slice of the remote client the exercise service needs.
type ExerciseAPI interface {
	ListExercises(ctx context.Context) ([]api.ExercisePayload, error)
	UpsertExercise(ctx context.Context, id string, payload api.ExercisePayload) (api.ExercisePayload, error)
	DeleteExercise(ctx context.Context, id string) error
}

// ExerciseService reconciles user-defined exercises with the server.
type ExerciseService struct {
	store    *sqlite.Store
	remote   ExerciseAPI
	resolver Resolver
	opts     options
	running  atomic.Bool
}

// NewExerciseService constructs an ExerciseService.
func NewExerciseService(store *sqlite.Store, remote ExerciseAPI, opts ...Option) *ExerciseService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ExerciseService{
		store:    store,
		remote:   remote,
		resolver: Resolver{TieBreak: o.tieBreak},
		opts:     o,
	}
}

// Sync runs one full reconciliation pass for the user's custom exercises.
func (s *ExerciseService) Sync(ctx context.Context, userID string) (domain.EntityStats, []domain.SyncError, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.EntityStats{}, nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	records, err := s.store.ListAllExercises(ctx, userID)
	if err != nil {
		return domain.EntityStats{}, nil, fmt.Errorf("list exercises: %w", err)
	}

	byID := make(map[string]*domain.CustomExercise, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	var (
		purge     []string
		snapshots []domain.ExerciseSnapshot
	)
	for i := range records {
		rec := &records[i]
		if rec.IsEmpty() && !rec.ShouldDelete {
			rec.MarkDeleted(s.opts.now())
		}
		switch {
		case rec.ShouldDelete && !rec.EverSynced:
			purge = append(purge, rec.ID)
		case !rec.IsSynced || rec.ShouldDelete:
			snapshots = append(snapshots, rec.Snapshot())
		}
	}

	events := fanOut(ctx, s.opts.workers, snapshots,
		func(snap domain.ExerciseSnapshot) string { return snap.ID },
		func(ctx context.Context, snap domain.ExerciseSnapshot) uploadEvent[api.ExercisePayload] {
			if snap.ShouldDelete {
				if err := s.remote.DeleteExercise(ctx, snap.ID); err != nil {
					s.opts.logger.Printf("delete exercise %s: %v", snap.ID, err)
					return uploadEvent[api.ExercisePayload]{kind: eventAlreadyExists}
				}
				return uploadEvent[api.ExercisePayload]{kind: eventDeleted}
			}
			resp, err := s.remote.UpsertExercise(ctx, snap.ID, exercisePayload(snap))
			if err != nil {
				return uploadEvent[api.ExercisePayload]{kind: eventFailed, err: err}
			}
			return uploadEvent[api.ExercisePayload]{kind: eventCreatedOrUpdated, payload: resp}
		})

	serverList, listErr := s.remote.ListExercises(ctx)

	var errs []domain.SyncError
	for id, ev := range events {
		if ev.kind == eventFailed {
			recordUploadFailure(domain.EntityExercises)
			errs = append(errs, domain.SyncError{
				Type:       "upload",
				Message:    ev.err.Error(),
				EntityType: domain.EntityExercises,
				EntityID:   id,
			})
		}
	}
	if listErr != nil {
		errs = append(errs, domain.SyncError{
			Type:       "download",
			Message:    listErr.Error(),
			EntityType: domain.EntityExercises,
		})
	}

	var stats domain.EntityStats
	err = s.store.InTx(ctx, func(q *sqlite.Queries) error {
		deleted := make(map[string]bool)
		touched := make(map[string]bool)

		for id, ev := range events {
			rec := byID[id]
			switch ev.kind {
			case eventDeleted:
				if err := q.DeleteExercise(ctx, userID, id); err != nil {
					return err
				}
				stats.Deleted++
				deleted[id] = true
			case eventCreatedOrUpdated:
				created := !rec.EverSynced
				rec.MarkSynced()
				if ts := ev.payload.ModifyTime(); !ts.IsZero() {
					rec.ModifyDate = ts
				}
				if err := q.SaveExercise(ctx, rec); err != nil {
					return err
				}
				if created {
					stats.Created++
				} else {
					stats.Updated++
				}
				touched[id] = true
			case eventAlreadyExists:
				rec.IsSynced = true
				if err := q.SaveExercise(ctx, rec); err != nil {
					return err
				}
			}
		}

		for _, id := range purge {
			if err := q.DeleteExercise(ctx, userID, id); err != nil {
				return err
			}
			stats.Deleted++
			deleted[id] = true
		}

		if listErr != nil {
			return nil
		}

		onServer := make(map[string]bool, len(serverList))
		for _, payload := range serverList {
			onServer[payload.ID] = true
			if deleted[payload.ID] {
				continue
			}

			incoming := exerciseFromPayload(userID, payload)
			local, ok := byID[payload.ID]
			if !ok {
				incoming.MarkSynced()
				if err := q.SaveExercise(ctx, &incoming); err != nil {
					return err
				}
				stats.Created++
				continue
			}

			switch s.resolver.Resolve(local.ModifyDate, payload.ModifyTime(), local.ShouldDelete, local.EqualPayload(&incoming)) {
			case TakeServer:
				local.CopyPayloadFrom(&incoming)
				local.MarkSynced()
				if ts := payload.ModifyTime(); !ts.IsZero() {
					local.ModifyDate = ts
				}
				if err := q.SaveExercise(ctx, local); err != nil {
					return err
				}
				stats.Updated++
			case AlreadyInSync:
				if !local.IsSynced || !local.EverSynced {
					local.MarkSynced()
					if err := q.SaveExercise(ctx, local); err != nil {
						return err
					}
				}
			}
		}

		for id, rec := range byID {
			if deleted[id] || touched[id] || onServer[id] {
				continue
			}
			if rec.IsSynced && rec.EverSynced {
				if err := q.DeleteExercise(ctx, userID, id); err != nil {
					return err
				}
				stats.Deleted++
			}
		}
		return nil
	})
	if err != nil {
		return domain.EntityStats{}, errs, fmt.Errorf("apply exercises: %w", err)
	}
	return stats, errs, nil
}
