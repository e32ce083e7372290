package sync

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/domain"
	"example.com/fitsync/internal/store/sqlite"
)

// ActivityAPI is the slice of the remote client the activity service needs.
type ActivityAPI interface {
	ListActivities(ctx context.Context) ([]api.ActivityPayload, error)
	UpsertActivity(ctx context.Context, payload api.ActivityPayload) (api.ActivityPayload, error)
	DeleteActivity(ctx context.Context, externalDay int) error
}

// ActivityService reconciles daily activities with the server.
type ActivityService struct {
	store    *sqlite.Store
	remote   ActivityAPI
	resolver Resolver
	opts     options
	running  atomic.Bool
}

// NewActivityService constructs an ActivityService.
func NewActivityService(store *sqlite.Store, remote ActivityAPI, opts ...Option) *ActivityService {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ActivityService{
		store:    store,
		remote:   remote,
		resolver: Resolver{TieBreak: o.tieBreak},
		opts:     o,
	}
}

// Sync runs one full reconciliation pass for the user's activities: upload
// dirty records concurrently, fetch the server list, then apply everything in
// a single store transaction. Per-record failures are collected, not fatal.
func (s *ActivityService) Sync(ctx context.Context, userID string) (domain.EntityStats, []domain.SyncError, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.EntityStats{}, nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	records, err := s.store.ListAllActivities(ctx, userID)
	if err != nil {
		return domain.EntityStats{}, nil, fmt.Errorf("list activities: %w", err)
	}

	byDay := make(map[int]*domain.DailyActivity, len(records))
	for i := range records {
		byDay[records[i].Day] = &records[i]
	}

	// Selection. Emptied records become tombstones; tombstones that never
	// reached the server are purged locally with no network round trip.
	var (
		purge     []int
		snapshots []domain.ActivitySnapshot
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
		func(snap domain.ActivitySnapshot) int { return snap.Day },
		func(ctx context.Context, snap domain.ActivitySnapshot) uploadEvent[api.ActivityPayload] {
			if snap.ShouldDelete {
				if err := s.remote.DeleteActivity(ctx, domain.ExternalDay(snap.Day)); err != nil {
					s.opts.logger.Printf("delete activity day %d: %v", snap.Day, err)
					return uploadEvent[api.ActivityPayload]{kind: eventAlreadyExists}
				}
				return uploadEvent[api.ActivityPayload]{kind: eventDeleted}
			}
			resp, err := s.remote.UpsertActivity(ctx, activityPayload(snap))
			if err != nil {
				return uploadEvent[api.ActivityPayload]{kind: eventFailed, err: err}
			}
			return uploadEvent[api.ActivityPayload]{kind: eventCreatedOrUpdated, payload: resp}
		})

	serverList, listErr := s.remote.ListActivities(ctx)

	var errs []domain.SyncError
	for day, ev := range events {
		if ev.kind == eventFailed {
			recordUploadFailure(domain.EntityActivities)
			errs = append(errs, domain.SyncError{
				Type:       "upload",
				Message:    ev.err.Error(),
				EntityType: domain.EntityActivities,
				EntityID:   strconv.Itoa(day),
			})
		}
	}
	if listErr != nil {
		errs = append(errs, domain.SyncError{
			Type:       "download",
			Message:    listErr.Error(),
			EntityType: domain.EntityActivities,
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
				if err := q.DeleteActivity(ctx, userID, day); err != nil {
					return err
				}
				stats.Deleted++
				deleted[day] = true
			case eventCreatedOrUpdated:
				created := !rec.EverSynced
				rec.MarkSynced()
				if ts := ev.payload.ModifyTime(); !ts.IsZero() {
					rec.ModifyDate = ts
				}
				if err := q.SaveActivity(ctx, rec); err != nil {
					return err
				}
				if created {
					stats.Created++
				} else {
					stats.Updated++
				}
				touched[day] = true
			case eventAlreadyExists:
				// Keep the tombstone but stop re-uploading; the sweep below
				// settles it against the server list.
				rec.IsSynced = true
				if err := q.SaveActivity(ctx, rec); err != nil {
					return err
				}
			}
		}

		for _, day := range purge {
			if err := q.DeleteActivity(ctx, userID, day); err != nil {
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

			incoming := activityFromPayload(userID, payload)
			local, ok := byDay[day]
			if !ok {
				incoming.MarkSynced()
				if err := q.SaveActivity(ctx, &incoming); err != nil {
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
				if err := q.SaveActivity(ctx, local); err != nil {
					return err
				}
				stats.Updated++
			case AlreadyInSync:
				if !local.IsSynced || !local.EverSynced {
					local.MarkSynced()
					if err := q.SaveActivity(ctx, local); err != nil {
						return err
					}
				}
			}
		}

		// Deletion sweep: records the server confirms absent. Covers both
		// remote deletions made elsewhere and tombstones whose delete call
		// came back AlreadyExists.
		for day, rec := range byDay {
			if deleted[day] || touched[day] || onServer[day] {
				continue
			}
			if rec.IsSynced && rec.EverSynced {
				if err := q.DeleteActivity(ctx, userID, day); err != nil {
					return err
				}
				stats.Deleted++
			}
		}
		return nil
	})
	if err != nil {
		return domain.EntityStats{}, errs, fmt.Errorf("apply activities: %w", err)
	}
	return stats, errs, nil
}
