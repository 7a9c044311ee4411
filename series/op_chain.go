package series

import (
	"time"

	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

type chain struct {
	ops []Operator
}

func (c chain) ProcessNewValues(values []schema.Sample) []schema.Sample {
	for _, op := range c.ops {
		values = op.ProcessNewValues(values)
	}
	return values
}

// Lookback reports the largest lookback of any windowed operator in the
// chain.
func (c chain) Lookback() time.Duration {
	var result time.Duration
	for _, op := range c.ops {
		if wo, ok := op.(WindowedOperator); ok && wo.Lookback() > result {
			result = wo.Lookback()
		}
	}
	return result
}
