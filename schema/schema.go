package schema

import "time"

// Sample is a single timestamped observation. Immutable once created.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Series is a batch of samples for one named series (a ticker symbol, or a
// derived series such as "AAPL | avg 30s"). Values are in non-decreasing
// timestamp order.
type Series struct {
	SeriesName string
	Values     []Sample
}
