package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token() (string, error) { return string(s), nil }

func TestParseServerTimeFallbacks(t *testing.T) {
	ts := ParseServerTime("2026-02-10T08:30:00")
	require.Equal(t, time.Date(2026, time.February, 10, 8, 30, 0, 0, time.UTC), ts)

	require.True(t, ParseServerTime("").IsZero())
	require.True(t, ParseServerTime("not-a-date").IsZero())
}

func TestModifyTimeFallsBackToCreateDate(t *testing.T) {
	p := ActivityPayload{CreateDate: "2026-01-05T12:00:00"}
	require.Equal(t, time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC), p.ModifyTime())

	p.ModifyDate = "2026-01-06T12:00:00"
	require.Equal(t, time.Date(2026, time.January, 6, 12, 0, 0, 0, time.UTC), p.ModifyTime())

	empty := ProgressPayload{}
	require.True(t, empty.ModifyTime().IsZero())
}

func TestUpsertActivitySendsBearerAndBody(t *testing.T) {
	var gotAuth string
	var gotPayload ActivityPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPut || r.URL.Path != "/v1/activities/42" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		gotPayload.ModifyDate = "2026-02-01T10:00:00"
		_ = json.NewEncoder(w).Encode(gotPayload)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens("tok-1"))
	out, err := client.UpsertActivity(context.Background(), ActivityPayload{Day: 42, Kind: "workout"})
	require.NoError(t, err)

	require.Equal(t, "Bearer tok-1", gotAuth)
	require.Equal(t, 42, gotPayload.Day)
	require.Equal(t, "workout", out.Kind)
	require.Equal(t, "2026-02-01T10:00:00", out.ModifyDate)
}

func TestDeleteSurfacesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such record", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens("tok-1"))
	err := client.DeleteActivity(context.Background(), 7)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestListExercises(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/exercises" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]ExercisePayload{{ID: "e1", Name: "Dips"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens("tok-1"))
	out, err := client.ListExercises(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Dips", out[0].Name)
}
