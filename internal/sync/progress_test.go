package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/domain"
)

func TestProgressUploadSwapsPendingPhotosForURLs(t *testing.T) {
	store := openSyncStore(t)
	ctx := context.Background()
	ts := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)

	weight := 80.5
	rec := &domain.ProgressRecord{
		UserID:     "u1",
		Day:        50,
		Weight:     &weight,
		CreateDate: ts,
		ModifyDate: ts,
	}
	rec.SetPhoto(domain.ProgressPhoto{Kind: domain.PhotoFront, PendingUpload: []byte{0xff, 0xd8}})
	rec.SetPhoto(domain.ProgressPhoto{Kind: domain.PhotoBack, RemoteURL: "https://cdn.example.com/photos/back", MarkedForDeletion: true})
	require.NoError(t, store.SaveProgress(ctx, rec))

	remote := newFakeProgressServer()
	svc := NewProgressService(store, remote, WithLogger(quietLogger()))

	stats, errs, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, 1, stats.Created)

	// The doomed slot is deleted server-side before the upsert.
	require.Equal(t, []string{"back"}, remote.photoDeletes)
	require.Equal(t, []int{50}, remote.upserts)

	got, err := store.GetProgress(ctx, "u1", 50)
	require.NoError(t, err)
	require.True(t, got.IsSynced)
	front := got.Photo(domain.PhotoFront)
	require.Empty(t, front.PendingUpload)
	require.Equal(t, "https://cdn.example.com/photos/front", front.RemoteURL)
	require.True(t, got.Photo(domain.PhotoBack).IsEmpty())
	require.Equal(t, weight, *got.Weight)
}

func TestProgressListRetriesAfterCancellation(t *testing.T) {
	store := openSyncStore(t)
	ctx := context.Background()
	ts := time.Date(2026, time.April, 2, 8, 0, 0, 0, time.UTC)

	remote := newFakeProgressServer()
	remote.put(api.ProgressPayload{Day: 1, ModifyDate: api.FormatServerTime(ts)})
	remote.listErrs = []error{context.Canceled}

	svc := NewProgressService(store, remote, WithLogger(quietLogger()))
	svc.retryDelay = 0

	stats, errs, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, 1, stats.Created)
	require.Equal(t, 2, remote.listCalls)
}

func TestProgressTombstoneAndSweep(t *testing.T) {
	store := openSyncStore(t)
	ctx := context.Background()
	ts := time.Date(2026, time.April, 3, 8, 0, 0, 0, time.UTC)

	pullUps := 12
	tomb := &domain.ProgressRecord{UserID: "u1", Day: 2, PullUps: &pullUps,
		EverSynced: true, ShouldDelete: true, CreateDate: ts, ModifyDate: ts}
	require.NoError(t, store.SaveProgress(ctx, tomb))

	stale := &domain.ProgressRecord{UserID: "u1", Day: 30, PullUps: &pullUps,
		IsSynced: true, EverSynced: true, CreateDate: ts, ModifyDate: ts}
	require.NoError(t, store.SaveProgress(ctx, stale))

	remote := newFakeProgressServer()
	remote.put(api.ProgressPayload{Day: 2, PullUps: &pullUps})

	svc := NewProgressService(store, remote, WithLogger(quietLogger()))
	stats, errs, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, 2, stats.Deleted)
	require.Equal(t, []int{2}, remote.deletes)

	all, err := store.ListAllProgress(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestProgressEmptyRecordTombstoned(t *testing.T) {
	store := openSyncStore(t)
	ctx := context.Background()
	ts := time.Date(2026, time.April, 4, 8, 0, 0, 0, time.UTC)

	blank := &domain.ProgressRecord{UserID: "u1", Day: 5, CreateDate: ts, ModifyDate: ts}
	require.NoError(t, store.SaveProgress(ctx, blank))

	remote := newFakeProgressServer()
	svc := NewProgressService(store, remote, WithLogger(quietLogger()))

	stats, errs, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, 1, stats.Deleted)
	require.Empty(t, remote.upserts)
	require.Empty(t, remote.deletes)
}
