package series

import (
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

type OpAdd struct {
	X float64
}

func (o OpAdd) ProcessNewValues(values []schema.Sample) []schema.Sample {
	result := make([]schema.Sample, len(values))
	for idx, value := range values {
		result[idx] = schema.Sample{
			Timestamp: value.Timestamp,
			Value:     value.Value + o.X,
		}
	}
	return result
}
