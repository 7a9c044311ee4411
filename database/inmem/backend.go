// Package inmem provides a storage backend held entirely in memory, for
// tests and for running without a database file.
package inmem

import (
	"sync"
	"time"

	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/storage"
)

type Backend struct {
	lock   sync.Mutex
	values map[string][]schema.Sample
}

func NewBackend() *Backend {
	return &Backend{
		values: map[string][]schema.Sample{},
	}
}

func (b *Backend) LoadDataWindow(
	seriesName string,
	start time.Time,
) (schema.Series, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	var values []schema.Sample
	for _, value := range b.values[seriesName] {
		if value.Timestamp.Before(start) {
			continue
		}
		values = append(values, value)
	}
	return schema.Series{
		SeriesName: seriesName,
		Values:     values,
	}, nil
}

func (b *Backend) CreateSeries(seriesNames []string) error {
	return nil
}

func (b *Backend) Insert(rows []storage.Row) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, row := range rows {
		b.values[row.SeriesName] = append(b.values[row.SeriesName], row.Sample)
	}
	return nil
}
