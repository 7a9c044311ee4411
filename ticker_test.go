package ticker

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/cache"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/database/inmem"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/messages"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/subscription"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestTicker(t *testing.T, opts Options) *Ticker {
	t.Helper()
	if len(opts.Symbols) == 0 {
		opts.Symbols = []string{"AAPL", "GOOG"}
	}
	tk, err := New(inmem.NewBackend(), make(chan error, 16), opts)
	require.NoError(t, err)
	return tk
}

// record pushes a price and waits for the window consumer to apply it.
func record(t *testing.T, tk *Ticker, symbol string, ts time.Time, value float64, wantCount int) {
	t.Helper()
	require.NoError(t, tk.RecordPrice(symbol, ts, value))
	require.Eventually(t, func() bool {
		s, err := tk.Snapshot(symbol)
		require.NoError(t, err)
		return s.Count == wantCount && s.Last != nil && *s.Last == value
	}, 2*time.Second, time.Millisecond)
}

func TestRecordPriceWindowing(t *testing.T) {
	tk := newTestTicker(t, Options{Window: 30 * time.Second})

	now := time.Now()

	record(t, tk, "AAPL", now.Add(-60*time.Second), 100, 1)
	record(t, tk, "AAPL", now.Add(-30*time.Second), 101, 2)
	record(t, tk, "AAPL", now, 102, 2) // the t-60s sample expires here

	s, err := tk.Snapshot("AAPL")
	require.NoError(t, err)
	require.Equal(t, 2, s.Count)
	require.Equal(t, 203.0, s.Sum)
	require.NotNil(t, s.Average)
	require.Equal(t, 101.5, *s.Average)
	require.NotNil(t, s.Last)
	require.Equal(t, 102.0, *s.Last)

	values, err := tk.Values("AAPL")
	require.NoError(t, err)
	require.Equal(t, []float64{101, 102}, values)

	expired, err := tk.Expired("AAPL")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, 100.0, expired[0].Value)

	// Other symbols are untouched.
	other, err := tk.Snapshot("GOOG")
	require.NoError(t, err)
	require.Equal(t, 0, other.Count)
	require.Nil(t, other.Average)
	require.Nil(t, other.Last)
}

func TestNewWaitsForConsumers(t *testing.T) {
	tk := newTestTicker(t, Options{})

	// A sample recorded immediately after New must reach both the window
	// and the archive exactly once.
	now := time.Now()
	require.NoError(t, tk.RecordPrice("AAPL", now, 100))

	require.Eventually(t, func() bool {
		s, err := tk.Snapshot("AAPL")
		require.NoError(t, err)
		return s.Count == 1
	}, 2*time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		window, err := tk.backend.LoadDataWindow("AAPL", now.Add(-time.Minute))
		require.NoError(t, err)
		return len(window.Values) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecordPriceRejects(t *testing.T) {
	tk := newTestTicker(t, Options{})

	require.Error(t, tk.RecordPrice("TSLA", time.Now(), 100)) // not configured

	require.Error(t, tk.RecordPrice("AAPL", time.Now(), math.NaN()))
	require.Error(t, tk.RecordPrice("AAPL", time.Now(), math.Inf(1)))

	_, err := tk.Snapshot("TSLA")
	require.Error(t, err)
	_, err = tk.History("TSLA")
	require.Error(t, err)
}

func TestExpiredRetentionDrain(t *testing.T) {
	tk := newTestTicker(t, Options{
		Window:           time.Second,
		ExpiredRetention: 2,
	})

	now := time.Now().Add(-time.Minute)

	record(t, tk, "AAPL", now, 100, 1)

	// Step timestamps so each push expires everything before it.
	for i := 1; i <= 10; i++ {
		require.NoError(t, tk.RecordPrice("AAPL", now.Add(time.Duration(i)*10*time.Second), 100+float64(i)))
	}

	// The retention policy keeps the in-memory expired history bounded.
	require.Eventually(t, func() bool {
		expired, err := tk.Expired("AAPL")
		require.NoError(t, err)
		s, err := tk.Snapshot("AAPL")
		require.NoError(t, err)
		return s.Count == 1 && len(expired) <= 2
	}, 2*time.Second, time.Millisecond)
}

func TestSnapshotFallsBackToCache(t *testing.T) {
	mirror := cache.NewMemory()
	ts := time.Now()
	require.NoError(t, mirror.Set(context.Background(), "AAPL", schema.Sample{
		Timestamp: ts,
		Value:     187.5,
	}))

	tk := newTestTicker(t, Options{Cache: mirror})

	s, err := tk.Snapshot("AAPL")
	require.NoError(t, err)
	require.Equal(t, 0, s.Count)
	require.NotNil(t, s.Last)
	require.Equal(t, 187.5, *s.Last)
	require.Nil(t, s.Average) // the mirror feeds Last only, not aggregates
}

func TestHTTPEndpoints(t *testing.T) {
	tk := newTestTicker(t, Options{})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		tk.GetEngine().ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, get("/healthz").Code)
	require.Equal(t, http.StatusOK, get("/api/symbols").Code)
	require.Contains(t, get("/api/symbols").Body.String(), "AAPL")

	require.Equal(t, http.StatusOK, get("/api/ticker/AAPL").Code)
	require.Equal(t, http.StatusNotFound, get("/api/ticker/TSLA").Code)
	require.Equal(t, http.StatusOK, get("/api/ticker/AAPL/history").Code)
	require.Equal(t, http.StatusOK, get("/api/ticker/AAPL/expired").Code)
	require.Equal(t, http.StatusNotFound, get("/api/ticker/TSLA/history").Code)

	require.Equal(t, http.StatusOK, get("/metrics").Code)
}

func TestSubscribeStreams(t *testing.T) {
	tk := newTestTicker(t, Options{Window: time.Minute})

	now := time.Now()

	record(t, tk, "AAPL", now.Add(-time.Second), 100, 1)

	// Wait for the buffered writer to archive the sample so catch-up sees it.
	require.Eventually(t, func() bool {
		window, err := tk.backend.LoadDataWindow("AAPL", now.Add(-time.Minute))
		require.NoError(t, err)
		return len(window.Values) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *messages.Data, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		tk.Subscribe(ctx, &subscription.Request{
			Series:     []string{"AAPL"},
			WindowSize: 60_000,
		}, now, func(data *messages.Data) error {
			received <- data
			return nil
		})
	}()

	first := <-received
	require.Equal(t, uint64(now.UnixMilli()), first.Now)

	catchup := <-received
	require.NotEmpty(t, catchup.Series)
	require.Contains(t, catchup.Series[0].Values, 100.0)

	cancel()
	<-done
}

func TestSubscribeBadExpression(t *testing.T) {
	tk := newTestTicker(t, Options{})

	var got *messages.Data
	tk.Subscribe(context.Background(), &subscription.Request{
		Series: []string{"AAPL | frob 1"},
	}, time.Now(), func(data *messages.Data) error {
		got = data
		return nil
	})

	require.NotNil(t, got)
	require.NotEmpty(t, got.Error)
}
