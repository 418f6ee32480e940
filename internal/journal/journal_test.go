package journal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DefaultDSN, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i, path := range []string{"me", "act_1/campaigns", "act_1/insights"} {
		require.NoError(t, store.Record(ctx, Entry{
			Method:    "GET",
			Path:      path,
			Attempts:  1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "act_1/insights", entries[0].Path)
	require.Equal(t, "act_1/campaigns", entries[1].Path)
	require.True(t, base.Add(2*time.Second).Equal(entries[0].CreatedAt))
	require.NotEmpty(t, entries[0].ID)
}

func TestRecentOnEmptyJournal(t *testing.T) {
	entries, err := openTestStore(t).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestObserveCallStoresClientAndKind(t *testing.T) {
	store := openTestStore(t)
	ctx := auth.WithClientID(context.Background(), "agent-7")

	store.ObserveCall(ctx, graph.CallRecord{
		Method:     "POST",
		Path:       "act_1/campaigns",
		StatusCode: 400,
		Attempts:   1,
		ErrorKind:  graph.KindInvalidParameter,
		Duration:   1500 * time.Millisecond,
	})
	store.ObserveCall(context.Background(), graph.CallRecord{Method: "GET", Path: "me", StatusCode: 200, Attempts: 2})

	entries, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}
	failed := byPath["act_1/campaigns"]
	require.Equal(t, "agent-7", failed.ClientID)
	require.Equal(t, "INVALID_PARAMETER", failed.ErrorKind)
	require.Equal(t, int64(1500), failed.DurationMs)
	require.Equal(t, 400, failed.StatusCode)

	ok := byPath["me"]
	require.Empty(t, ok.ClientID)
	require.Empty(t, ok.ErrorKind)
	require.Equal(t, 2, ok.Attempts)
}
