package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/domain"
	"example.com/fitsync/internal/store/sqlite"
)

// ProgressAPI is the slice of the remote client the progress service needs.
type ProgressAPI interface {
	ListProgress(ctx context.Context) ([]api.ProgressPayload, error)
	UpsertProgress(ctx context.Context, externalDay int, payload api.ProgressPayload) (api.ProgressPayload, error)
	DeleteProgress(ctx context.Context, externalDay int) error
	DeleteProgressPhoto(ctx context.Context, externalDay int, photoKind string) error
}

// ProgressService reconciles body-metric records and their photos with the
// server.
type ProgressService struct {
	store      *sqlite.Store
	remote     ProgressAPI
	resolver   Resolver
	opts       options
	retryDelay time.Duration
	running    atomic.Bool
}

// NewProgressService constructs a ProgressService.
func NewProgressService(store *sqlite.Store, remote ProgressAPI, opts ...Option) *ProgressService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ProgressService{
		store:      store,
		remote:     remote,
		resolver:   Resolver{TieBreak: o.tieBreak},
		opts:       o,
		retryDelay: time.Second,
	}
}

// Sync runs one full reconciliation pass for the user's progress records.
// Photo slots marked for deletion are removed server-side before the record
// upsert; pending uploads come back as remote URLs in the server's echo.
func (s *ProgressService) Sync(ctx context.Context, userID string) (domain.EntityStats, []domain.SyncError, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.EntityStats{}, nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	records, err := s.store.ListAllProgress(ctx, userID)
	if err != nil {
		return domain.EntityStats{}, nil, fmt.Errorf("list progress: %w", err)
	}

	byDay := make(map[int]*domain.ProgressRecord, len(records))
	for i := range records {
		byDay[records[i].Day] = &records[i]
	}

	var (
		purge     []int
		snapshots []domain.ProgressSnapshot
	)
	for i := range records {
		rec := &records[i]
		if rec.IsEmpty() && !rec.ShouldDelete {
			rec.MarkDeleted(s.opts.now())
		}
		switch {
		case rec.ShouldDelete && !rec.EverSynced:
			purge = append(purge, rec.Day)
		case !rec.IsSynced || rec.ShouldDelete:
			snapshots = append(snapshots, rec.Snapshot())
		}
	}

	events := fanOut(ctx, s.opts.workers, snapshots,
		func(snap domain.ProgressSnapshot) int { return snap.Day },
		func(ctx context.Context, snap domain.ProgressSnapshot) uploadEvent[api.ProgressPayload] {
			externalDay := domain.ExternalDay(snap.Day)
			if snap.ShouldDelete {
				if err := s.remote.DeleteProgress(ctx, externalDay); err != nil {
					s.opts.logger.Printf("delete progress day %d: %v", snap.Day, err)
					return uploadEvent[api.ProgressPayload]{kind: eventAlreadyExists}
				}
				return uploadEvent[api.ProgressPayload]{kind: eventDeleted}
			}
			for _, photo := range snap.Photos {
				if !photo.MarkedForDeletion {
					continue
				}
				if err := s.remote.DeleteProgressPhoto(ctx, externalDay, string(photo.Kind)); err != nil {
					return uploadEvent[api.ProgressPayload]{kind: eventFailed, err: fmt.Errorf("delete %s photo: %w", photo.Kind, err)}
				}
			}
			resp, err := s.remote.UpsertProgress(ctx, externalDay, progressPayload(snap))
			if err != nil {
				return uploadEvent[api.ProgressPayload]{kind: eventFailed, err: err}
			}
			return uploadEvent[api.ProgressPayload]{kind: eventCreatedOrUpdated, payload: resp}
		})

	serverList, listErr := s.listWithRetry(ctx)

	var errs []domain.SyncError
	for day, ev := range events {
		if ev.kind == eventFailed {
			recordUploadFailure(domain.EntityProgress)
			errs = append(errs, domain.SyncError{
				Type:       "upload",
				Message:    ev.err.Error(),
				EntityType: domain.EntityProgress,
				EntityID:   strconv.Itoa(day),
			})
		}
	}
	if listErr != nil {
		errs = append(errs, domain.SyncError{
			Type:       "download",
			Message:    listErr.Error(),
			EntityType: domain.EntityProgress,
		})
	}

	var stats domain.EntityStats
	err = s.store.InTx(ctx, func(q *sqlite.Queries) error {
		deleted := make(map[int]bool)
		touched := make(map[int]bool)

		for day, ev := range events {
			rec := byDay[day]
			switch ev.kind {
			case eventDeleted:
				if err := q.DeleteProgress(ctx, userID, day); err != nil {
					return err
				}
				stats.Deleted++
				deleted[day] = true
			case eventCreatedOrUpdated:
				created := !rec.EverSynced
				rec.Photos = photosFromPayload(ev.payload.Photos)
				rec.MarkSynced()
				if ts := ev.payload.ModifyTime(); !ts.IsZero() {
					rec.ModifyDate = ts
				}
				if err := q.SaveProgress(ctx, rec); err != nil {
					return err
				}
				if created {
					stats.Created++
				} else {
					stats.Updated++
				}
				touched[day] = true
			case eventAlreadyExists:
				rec.IsSynced = true
				if err := q.SaveProgress(ctx, rec); err != nil {
					return err
				}
			}
		}

		for _, day := range purge {
			if err := q.DeleteProgress(ctx, userID, day); err != nil {
				return err
			}
			stats.Deleted++
			deleted[day] = true
		}

		if listErr != nil {
			return nil
		}

		onServer := make(map[int]bool, len(serverList))
		for _, payload := range serverList {
			day := domain.InternalDay(payload.Day)
			onServer[day] = true
			if deleted[day] {
				continue
			}

			incoming := progressFromPayload(userID, payload)
			local, ok := byDay[day]
			if !ok {
				incoming.MarkSynced()
				if err := q.SaveProgress(ctx, &incoming); err != nil {
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
				if err := q.SaveProgress(ctx, local); err != nil {
					return err
				}
				stats.Updated++
			case AlreadyInSync:
				if !local.IsSynced || !local.EverSynced {
					local.MarkSynced()
					if err := q.SaveProgress(ctx, local); err != nil {
						return err
					}
				}
			}
		}

		for day, rec := range byDay {
			if deleted[day] || touched[day] || onServer[day] {
				continue
			}
			if rec.IsSynced && rec.EverSynced {
				if err := q.DeleteProgress(ctx, userID, day); err != nil {
					return err
				}
				stats.Deleted++
			}
		}
		return nil
	})
	if err != nil {
		return domain.EntityStats{}, errs, fmt.Errorf("apply progress: %w", err)
	}
	return stats, errs, nil
}

// listWithRetry fetches the server list, retrying once after a short pause
// when the transport reports a cancellation that raced the upload fan-in.
func (s *ProgressService) listWithRetry(ctx context.Context) ([]api.ProgressPayload, error) {
	list, err := s.remote.ListProgress(ctx)
	if err == nil || !errors.Is(err, context.Canceled) {
		return list, err
	}
	select {
	case <-time.After(s.retryDelay):
	case <-ctx.Done():
		return nil, err
	}
	return s.remote.ListProgress(ctx)
}
