package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/storage"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := Get(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewBackend(db)
}

func TestCreateSeriesIsIdempotent(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.CreateSeries([]string{"AAPL", "GOOG"}))
	require.NoError(t, b.CreateSeries([]string{"AAPL", "MSFT"}))

	var count int64
	tx := b.GetORM().Model(&Series{}).Count(&count)
	require.NoError(t, tx.Error)
	require.Equal(t, int64(3), count)
}

func TestInsertAndLoadDataWindow(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.CreateSeries([]string{"AAPL", "GOOG"}))

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, b.Insert([]storage.Row{
		{SeriesName: "AAPL", Sample: schema.Sample{Timestamp: t0.Add(2 * time.Second), Value: 102}},
		{SeriesName: "AAPL", Sample: schema.Sample{Timestamp: t0, Value: 100}},
		{SeriesName: "AAPL", Sample: schema.Sample{Timestamp: t0.Add(time.Second), Value: 101}},
		{SeriesName: "GOOG", Sample: schema.Sample{Timestamp: t0, Value: 9}},
	}))

	// Reads are windowed by start and ordered by timestamp.
	window, err := b.LoadDataWindow("AAPL", t0.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, "AAPL", window.SeriesName)
	require.Len(t, window.Values, 2)
	require.Equal(t, 101.0, window.Values[0].Value)
	require.Equal(t, 102.0, window.Values[1].Value)

	window, err = b.LoadDataWindow("GOOG", t0)
	require.NoError(t, err)
	require.Len(t, window.Values, 1)

	window, err = b.LoadDataWindow("MSFT", t0)
	require.NoError(t, err)
	require.Empty(t, window.Values)
}

func TestHashedIDIsStable(t *testing.T) {
	require.Equal(t, HashedID("AAPL"), HashedID("AAPL"))
	require.NotEqual(t, HashedID("AAPL"), HashedID("GOOG"))
	require.Len(t, HashedID("AAPL"), 16)
}
