package storage

import (
	"time"

	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

// Row is one sample bound to its series, as handed to a Backend for
// persistence.
type Row struct {
	SeriesName string
	Sample     schema.Sample
}

// Backend archives samples and serves time-windowed reads for subscription
// catch-up.
type Backend interface {
	LoadDataWindow(
		seriesName string,
		start time.Time,
	) (schema.Series, error)

	CreateSeries(
		seriesNames []string,
	) error

	Insert(rows []Row) error
}
