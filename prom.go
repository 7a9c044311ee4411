package ticker

import (
	"github.com/prometheus/client_golang/prometheus"
)

type promMetrics struct {
	lastPrice      *prometheus.GaugeVec
	samplesTotal   *prometheus.CounterVec
	expiredDrained *prometheus.CounterVec
}

func newPromMetrics() *promMetrics {
	m := &promMetrics{
		lastPrice: registerGaugeVec(prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ticker_last_price",
			Help: "Most recent price seen per symbol.",
		}, []string{"symbol"})),
		samplesTotal: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticker_samples_total",
			Help: "Samples ingested per symbol.",
		}, []string{"symbol"})),
		expiredDrained: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticker_expired_drained_total",
			Help: "Expired samples dropped from memory by the retention policy.",
		}, []string{"symbol"})),
	}
	return m
}

// registerGaugeVec registers the collector, reusing the existing one when a
// second Ticker is constructed in the same process (tests).
func registerGaugeVec(c *prometheus.GaugeVec) *prometheus.GaugeVec {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.GaugeVec)
		}
		panic(err)
	}
	return c
}

func registerCounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return c
}

func (t *Ticker) publishPrometheusMetrics() {
	msgCh := t.broker.Subscribe()
	defer t.broker.Unsubscribe(msgCh)

	for m := range msgCh {
		if len(m.Values) == 0 {
			continue
		}

		lastPoint := m.Values[len(m.Values)-1]
		t.metrics.lastPrice.WithLabelValues(m.SeriesName).Set(lastPoint.Value)
		t.metrics.samplesTotal.WithLabelValues(m.SeriesName).
			Add(float64(len(m.Values)))
	}
}
