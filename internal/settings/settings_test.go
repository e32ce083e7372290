package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchedSetNotifiesSubscribers(t *testing.T) {
	watcher := NewWatcher()
	store := NewWatched(NewMemory(), watcher)

	ch, cancel := watcher.Subscribe(4)
	defer cancel()

	require.NoError(t, store.Set(context.Background(), KeyLastSyncDate, "2026-03-01T10:00:00Z"))

	change := <-ch
	require.Equal(t, KeyLastSyncDate, change.Key)
	require.Equal(t, "2026-03-01T10:00:00Z", change.Value)

	value, ok, err := store.Get(context.Background(), KeyLastSyncDate)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2026-03-01T10:00:00Z", value)
}

func TestGetMissingKey(t *testing.T) {
	store := NewMemory()
	_, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	watcher := NewWatcher()
	_, cancel := watcher.Subscribe(1)
	defer cancel()

	// Two notifications against a buffer of one: the second is dropped, the
	// writer must not block.
	watcher.Notify("k", "v1")
	watcher.Notify("k", "v2")
}

func TestCancelledSubscriptionIsClosed(t *testing.T) {
	watcher := NewWatcher()
	ch, cancel := watcher.Subscribe(1)
	cancel()

	_, open := <-ch
	require.False(t, open)

	watcher.Notify("k", "v") // must not panic on the removed subscriber
}
