package sync

import (
	"context"
	"io"
	"log"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitsync/internal/api"
	"example.com/fitsync/internal/domain"
	"example.com/fitsync/internal/store/sqlite"
)

func openSyncStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
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

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakeActivityServer is an in-memory stand-in for the remote service, keyed
// by external day so the day mapping is exercised end to end.
type fakeActivityServer struct {
	mu        stdsync.Mutex
	records   map[int]api.ActivityPayload
	listErr   error
	deleteErr map[int]error
	upserts   []int
	deletes   []int
}

func newFakeActivityServer() *fakeActivityServer {
	return &fakeActivityServer{records: make(map[int]api.ActivityPayload)}
}

func (f *fakeActivityServer) put(p api.ActivityPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[p.Day] = p
}

func (f *fakeActivityServer) ListActivities(context.Context) ([]api.ActivityPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]api.ActivityPayload, 0, len(f.records))
	for _, p := range f.records {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeActivityServer) UpsertActivity(_ context.Context, p api.ActivityPayload) (api.ActivityPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[p.Day] = p
	f.upserts = append(f.upserts, p.Day)
	return p, nil
}

func (f *fakeActivityServer) DeleteActivity(_ context.Context, externalDay int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[externalDay]; err != nil {
		return err
	}
	delete(f.records, externalDay)
	f.deletes = append(f.deletes, externalDay)
	return nil
}

type fakeProgressServer struct {
	mu           stdsync.Mutex
	records      map[int]api.ProgressPayload
	listErrs     []error
	listCalls    int
	photoDeletes []string
	upserts      []int
	deletes      []int
}

func newFakeProgressServer() *fakeProgressServer {
	return &fakeProgressServer{records: make(map[int]api.ProgressPayload)}
}

func (f *fakeProgressServer) put(p api.ProgressPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[p.Day] = p
}

func (f *fakeProgressServer) ListProgress(context.Context) ([]api.ProgressPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([]api.ProgressPayload, 0, len(f.records))
	for _, p := range f.records {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProgressServer) UpsertProgress(_ context.Context, externalDay int, p api.ProgressPayload) (api.ProgressPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Pending images come back as stored URLs, like the real service.
	for i := range p.Photos {
		if len(p.Photos[i].Image) > 0 {
			p.Photos[i].URL = "https://cdn.example.com/photos/" + p.Photos[i].Kind
			p.Photos[i].Image = nil
		}
	}
	f.records[externalDay] = p
	f.upserts = append(f.upserts, externalDay)
	return p, nil
}

func (f *fakeProgressServer) DeleteProgress(_ context.Context, externalDay int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, externalDay)
	f.deletes = append(f.deletes, externalDay)
	return nil
}

func (f *fakeProgressServer) DeleteProgressPhoto(_ context.Context, externalDay int, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photoDeletes = append(f.photoDeletes, kind)
	return nil
}

type fakeExerciseServer struct {
	mu      stdsync.Mutex
	records map[string]api.ExercisePayload
	upserts []string
	deletes []string
}

func newFakeExerciseServer() *fakeExerciseServer {
	return &fakeExerciseServer{records: make(map[string]api.ExercisePayload)}
}

func (f *fakeExerciseServer) put(p api.ExercisePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[p.ID] = p
}

func (f *fakeExerciseServer) ListExercises(context.Context) ([]api.ExercisePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.ExercisePayload, 0, len(f.records))
	for _, p := range f.records {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeExerciseServer) UpsertExercise(_ context.Context, id string, p api.ExercisePayload) (api.ExercisePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[id] = p
	f.upserts = append(f.upserts, id)
	return p, nil
}

func (f *fakeExerciseServer) DeleteExercise(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	f.deletes = append(f.deletes, id)
	return nil
}
