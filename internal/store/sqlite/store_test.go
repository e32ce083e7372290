package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitsync/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	user := &domain.User{
		ID:         "u1",
		StartDate:  time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		CreateDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveUser(context.Background(), user))
	return store
}

func TestActivityRoundTripWithTrainings(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	act := &domain.DailyActivity{
		UserID:        "u1",
		Day:           5,
		Kind:          domain.KindWorkout,
		PlannedCount:  4,
		ActualCount:   4,
		ExecutionMode: domain.ExecutionStandard,
		Comment:       "felt strong",
		Trainings: []domain.Training{
			{ExerciseType: "pullups", Count: 10, SortOrder: 0},
			{CustomExerciseID: "ex-9", Count: 15, SortOrder: 1},
		},
		CreateDate: time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC),
		ModifyDate: time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveActivity(ctx, act))

	got, err := store.GetActivity(ctx, "u1", 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, act.Comment, got.Comment)
	require.Equal(t, act.Trainings, got.Trainings)
	require.Equal(t, act.ModifyDate, got.ModifyDate)

	// Rewriting with fewer trainings replaces the owned list.
	act.Trainings = act.Trainings[:1]
	require.NoError(t, store.SaveActivity(ctx, act))
	got, err = store.GetActivity(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, got.Trainings, 1)
}

func TestTombstonesHiddenFromReadPath(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		act := &domain.DailyActivity{UserID: "u1", Day: day, Kind: domain.KindRest,
			CreateDate: time.Now(), ModifyDate: time.Now()}
		if day == 2 {
			act.ShouldDelete = true
		}
		require.NoError(t, store.SaveActivity(ctx, act))
	}

	visible, err := store.ListActivities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, visible, 2)

	all, err := store.ListAllActivities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestProgressPhotoRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	weight := 81.2
	rec := &domain.ProgressRecord{
		UserID:     "u1",
		Day:        1,
		Weight:     &weight,
		CreateDate: time.Now().UTC().Truncate(time.Second),
		ModifyDate: time.Now().UTC().Truncate(time.Second),
	}
	rec.SetPhoto(domain.ProgressPhoto{Kind: domain.PhotoFront, PendingUpload: []byte{0xff, 0xd8}})
	rec.SetPhoto(domain.ProgressPhoto{Kind: domain.PhotoBack, MarkedForDeletion: true})
	require.NoError(t, store.SaveProgress(ctx, rec))

	got, err := store.GetProgress(ctx, "u1", 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, weight, *got.Weight)
	require.Nil(t, got.PullUps)
	require.Equal(t, []byte{0xff, 0xd8}, got.Photo(domain.PhotoFront).PendingUpload)
	require.True(t, got.Photo(domain.PhotoBack).MarkedForDeletion)
}

func TestExerciseRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ex := &domain.CustomExercise{
		ID: "ex-1", UserID: "u1", Name: "Weighted dips", Hidden: false,
		CreateDate: time.Now(), ModifyDate: time.Now(),
	}
	require.NoError(t, store.SaveExercise(ctx, ex))

	got, err := store.GetExercise(ctx, "u1", "ex-1")
	require.NoError(t, err)
	require.Equal(t, "Weighted dips", got.Name)

	require.NoError(t, store.DeleteExercise(ctx, "u1", "ex-1"))
	got, err = store.GetExercise(ctx, "u1", "ex-1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUserCascadeDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	act := &domain.DailyActivity{UserID: "u1", Day: 1, Kind: domain.KindWorkout,
		Trainings:  []domain.Training{{ExerciseType: "squats", Count: 30}},
		CreateDate: time.Now(), ModifyDate: time.Now()}
	require.NoError(t, store.SaveActivity(ctx, act))
	require.NoError(t, store.SaveProgress(ctx, &domain.ProgressRecord{UserID: "u1", Day: 1,
		CreateDate: time.Now(), ModifyDate: time.Now()}))

	require.NoError(t, store.DeleteUser(ctx, "u1"))

	remaining, err := store.ListAllActivities(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, remaining)

	progress, err := store.ListAllProgress(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, progress)
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sentinel := errors.New("abort")
	err := store.InTx(ctx, func(q *Queries) error {
		if err := q.SaveActivity(ctx, &domain.DailyActivity{UserID: "u1", Day: 9,
			CreateDate: time.Now(), ModifyDate: time.Now()}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := store.GetActivity(ctx, "u1", 9)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestJournalRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entry := domain.JournalEntry{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, time.February, 1, 7, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, time.February, 1, 7, 0, 3, 0, time.UTC),
		Result:     domain.ResultPartial,
		Stats: map[domain.EntityType]domain.EntityStats{
			domain.EntityActivities: {Created: 2, Updated: 1},
		},
		Errors: []domain.SyncError{
			{Type: "network", Message: "timeout", EntityType: domain.EntityProgress, EntityID: "3"},
		},
	}
	require.NoError(t, store.AppendJournal(ctx, entry))

	entries, err := store.ListJournal(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.ResultPartial, entries[0].Result)
	require.Equal(t, 2, entries[0].Stats[domain.EntityActivities].Created)
	require.Equal(t, "timeout", entries[0].Errors[0].Message)
}

func TestKVSettings(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "last_sync_date")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "last_sync_date", "2026-02-01T07:00:00Z"))
	require.NoError(t, store.Set(ctx, "last_sync_date", "2026-02-02T07:00:00Z"))

	value, ok, err := store.Get(ctx, "last_sync_date")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2026-02-02T07:00:00Z", value)
}
