package series

import (
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

// OpGt passes through only values above a threshold, e.g. for price alert
// streams.
type OpGt struct {
	X float64
}

func (o OpGt) ProcessNewValues(values []schema.Sample) []schema.Sample {
	result := make([]schema.Sample, 0, len(values))
	for _, value := range values {
		if value.Value > o.X {
			result = append(result, value)
		}
	}
	return result
}
