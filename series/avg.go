package series

import (
	"time"

	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/window"
)

// WindowAvg emits, for each input sample, the average over the trailing
// window ending at that sample. Values before start are consumed to warm the
// window but produce no output.
type WindowAvg struct {
	buf      *window.Buffer
	duration time.Duration
	start    time.Time
}

func NewWindowAvg(duration time.Duration, start time.Time) *WindowAvg {
	return &WindowAvg{
		buf:      window.New(window.DefaultCapacity),
		duration: duration,
		start:    start,
	}
}

func (w *WindowAvg) Lookback() time.Duration {
	return w.duration
}

func (w *WindowAvg) ProcessNewValues(values []schema.Sample) []schema.Sample {
	result := make([]schema.Sample, 0, len(values))

	for _, v := range values {
		if err := w.buf.Push(v.Value, v.Timestamp); err != nil {
			continue
		}
		w.buf.Expire(v.Timestamp.Add(-w.duration))
		w.buf.DrainExpired()

		if v.Timestamp.Before(w.start) {
			continue
		}

		avg, ok := w.buf.Average()
		if !ok {
			continue
		}

		result = append(result, schema.Sample{
			Timestamp: v.Timestamp,
			Value:     avg,
		})
	}

	return result
}
