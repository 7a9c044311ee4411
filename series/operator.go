// Package series implements derived-series operators applied to streamed
// samples, requested with expressions such as "AAPL | avg 30s".
package series

import (
	"time"

	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

type Operator interface {
	ProcessNewValues(values []schema.Sample) []schema.Sample
}

// WindowedOperator is implemented by operators that need history before the
// subscription start to produce correct values.
type WindowedOperator interface {
	Lookback() time.Duration
}

type Identity struct{}

func (i Identity) ProcessNewValues(values []schema.Sample) []schema.Sample {
	return values
}
