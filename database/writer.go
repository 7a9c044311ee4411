package database

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/storage"
)

const flushInterval = 100 * time.Millisecond

// Writer batches samples and flushes them to the backend in one transaction
// per tick, keeping the ingest path off the sqlite write lock.
type Writer struct {
	backend storage.Backend
	rows    chan storage.Row
	errCh   chan error
}

func NewWriter(backend storage.Backend, errCh chan error) *Writer {
	return &Writer{
		backend: backend,
		rows:    make(chan storage.Row, 1024),
		errCh:   errCh,
	}
}

func (w *Writer) Insert(seriesName string, s schema.Sample) {
	w.rows <- storage.Row{SeriesName: seriesName, Sample: s}
}

func (w *Writer) Run() {
	ticker := time.NewTicker(flushInterval)

	var rows []storage.Row

	for {
		select {
		case row := <-w.rows:
			rows = append(rows, row)
		case <-ticker.C:
			if len(rows) == 0 {
				continue
			}

			err := w.backend.Insert(rows)
			rows = nil

			if err != nil {
				w.errCh <- errors.Wrap(err, "transaction")
				return
			}
		}
	}
}
