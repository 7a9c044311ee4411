// Package ticker serves live stock tickers: it ingests a stream of
// timestamped prices (real or simulated), maintains a trailing time window
// per symbol in a window.Buffer, archives samples to storage, and exposes
// the aggregates over HTTP REST and websocket subscriptions.
package ticker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chrispappas/golang-generics-set/set"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/broker"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/cache"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/database"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/messages"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/storage"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/subscription"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/window"
)

type Options struct {
	Symbols []string

	// Window is the trailing interval a sample stays live. Defaults to one
	// minute.
	Window time.Duration

	// Capacity is the initial per-symbol buffer capacity. Defaults to
	// window.DefaultCapacity.
	Capacity int

	// ExpiredRetention bounds how many expired samples a buffer keeps in
	// memory before being drained. 0 keeps everything (unbounded).
	ExpiredRetention int

	// Cache optionally mirrors the last price per symbol.
	Cache cache.LastPrice
}

// brokerConsumers counts the goroutines New waits on: publishToDB,
// updateWindows and publishPrometheusMetrics.
const brokerConsumers = 3

type Ticker struct {
	backend storage.Backend
	errCh   chan error

	broker     *broker.Broker[schema.Series]
	symbols    set.Set[string]
	symbolList []string
	windowSize time.Duration
	retention  int
	cache      cache.LastPrice

	lock    sync.Mutex
	windows map[string]*window.Buffer

	writer  *database.Writer
	metrics *promMetrics
	server  *gin.Engine
}

func New(
	backend storage.Backend,
	errCh chan error,
	opts Options,
) (*Ticker, error) {
	if len(opts.Symbols) == 0 {
		return nil, errors.New("no symbols")
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Capacity <= 0 {
		opts.Capacity = window.DefaultCapacity
	}

	if err := backend.CreateSeries(opts.Symbols); err != nil {
		return nil, errors.Wrap(err, "create series")
	}

	windows := make(map[string]*window.Buffer, len(opts.Symbols))
	for _, s := range opts.Symbols {
		windows[s] = window.New(opts.Capacity)
	}

	t := &Ticker{
		backend:    backend,
		errCh:      errCh,
		broker:     broker.NewBroker[schema.Series](),
		symbols:    set.FromSlice(opts.Symbols),
		symbolList: opts.Symbols,
		windowSize: opts.Window,
		retention:  opts.ExpiredRetention,
		cache:      opts.Cache,
		windows:    windows,
		writer:     database.NewWriter(backend, errCh),
		metrics:    newPromMetrics(),
		server:     gin.Default(),
	}

	if err := t.setupServer(); err != nil {
		return nil, errors.Wrap(err, "setup server")
	}

	go t.broker.Start()
	go t.writer.Run()
	go t.publishToDB()
	go t.updateWindows()
	go t.publishPrometheusMetrics()

	// Block until the broker consumers have registered, otherwise samples
	// recorded right after New can miss the window and the archive.
	deadline := time.Now().Add(5 * time.Second)
	for t.broker.SubCount() < brokerConsumers {
		if time.Now().After(deadline) {
			return nil, errors.New("broker consumers did not register")
		}
		time.Sleep(time.Millisecond)
	}

	return t, nil
}

func (t *Ticker) GetEngine() *gin.Engine {
	return t.server
}

func (t *Ticker) Symbols() []string {
	result := make([]string, len(t.symbolList))
	copy(result, t.symbolList)
	return result
}

// RecordPrice is the producer entry point: it publishes one sample on the
// broker, from which the window, persistence, metrics and subscription
// consumers all feed.
func (t *Ticker) RecordPrice(
	symbol string,
	timestamp time.Time,
	value float64,
) error {
	if !t.symbols.Has(symbol) {
		return fmt.Errorf("unknown symbol: %s", symbol)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Errorf("non-finite value for %s: %v", symbol, value)
	}

	t.broker.Publish(schema.Series{
		SeriesName: symbol,
		Values: []schema.Sample{{
			Timestamp: timestamp,
			Value:     value,
		}},
	})

	return nil
}

// updateWindows owns every window.Buffer: it is the single goroutine that
// mutates them (the buffers themselves do no locking). Queries share t.lock.
func (t *Ticker) updateWindows() {
	msgCh := t.broker.Subscribe()
	defer t.broker.Unsubscribe(msgCh)

	for msg := range msgCh {
		t.lock.Lock()
		buf, ok := t.windows[msg.SeriesName]
		if !ok {
			t.lock.Unlock()
			continue
		}

		var last schema.Sample
		for _, v := range msg.Values {
			if err := buf.Push(v.Value, v.Timestamp); err != nil {
				continue // RecordPrice already rejects non-finite values
			}
			buf.Expire(v.Timestamp.Add(-t.windowSize))
			last = v
		}

		if t.retention > 0 && buf.ExpiredLen() > t.retention {
			drained := buf.DrainExpired()
			t.metrics.expiredDrained.WithLabelValues(msg.SeriesName).
				Add(float64(len(drained)))
		}
		t.lock.Unlock()

		if t.cache != nil && !last.Timestamp.IsZero() {
			// best-effort mirror
			_ = t.cache.Set(context.Background(), msg.SeriesName, last)
		}
	}
}

// Snapshot is one symbol's current window aggregates. Average and Last are
// nil when the window is empty.
type Snapshot struct {
	Symbol  string   `json:"symbol"`
	Count   int      `json:"count"`
	Sum     float64  `json:"sum"`
	Average *float64 `json:"average,omitempty"`
	Last    *float64 `json:"last,omitempty"`
}

func floatP(v float64) *float64 {
	return &v
}

func (t *Ticker) buffer(symbol string) (*window.Buffer, error) {
	buf, ok := t.windows[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol: %s", symbol)
	}
	return buf, nil
}

func (t *Ticker) Snapshot(symbol string) (Snapshot, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	buf, err := t.buffer(symbol)
	if err != nil {
		return Snapshot{}, err
	}

	result := Snapshot{
		Symbol: symbol,
		Count:  buf.Len(),
		Sum:    buf.Sum(),
	}
	if avg, ok := buf.Average(); ok {
		result.Average = floatP(avg)
	}
	if last, ok := buf.Latest(); ok {
		result.Last = floatP(last)
	} else if t.cache != nil {
		// empty window right after a restart: fall back to the mirror
		if s, err := t.cache.Get(context.Background(), symbol); err == nil {
			result.Last = floatP(s.Value)
		}
	}

	return result, nil
}

// History returns a copy of the live samples for symbol, oldest first.
func (t *Ticker) History(symbol string) ([]schema.Sample, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	buf, err := t.buffer(symbol)
	if err != nil {
		return nil, err
	}
	return buf.History(), nil
}

// Values returns a copy of the live values for symbol, oldest first.
func (t *Ticker) Values(symbol string) ([]float64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	buf, err := t.buffer(symbol)
	if err != nil {
		return nil, err
	}
	return buf.Values(), nil
}

// Expired returns a copy of symbol's expired samples still held in memory,
// oldest evicted first.
func (t *Ticker) Expired(symbol string) ([]schema.Sample, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	buf, err := t.buffer(symbol)
	if err != nil {
		return nil, err
	}
	return buf.Expired(), nil
}

// Subscribe streams catch-up and live data for the requested series
// expressions, calling callback for each message until it errors or ctx is
// canceled.
func (t *Ticker) Subscribe(
	ctx context.Context,
	req *subscription.Request,
	now time.Time,
	callback func(data *messages.Data) error,
) {
	start := req.Start(now)

	sub, err := subscription.New(req, start)
	if err != nil {
		_ = callback(&messages.Data{
			Error: errors.Wrap(err, "new subscription").Error(),
		})
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgCh := make(chan *messages.Data)
	go sub.Run(ctx, t.backend, t.broker, msgCh, now, start)

	for data := range msgCh {
		if err := callback(data); err != nil {
			return
		}
	}
}
