// Package feed simulates a market data source: per-symbol random-walk
// prices produced on a timer.
package feed

import (
	"context"
	"math/rand"
	"time"
)

// RecordFunc receives each generated price. Returning an error stops the
// generator.
type RecordFunc func(symbol string, timestamp time.Time, price float64) error

type Generator struct {
	symbols  []string
	interval time.Duration
	rng      *rand.Rand
	prices   map[string]float64
}

func NewGenerator(symbols []string, interval time.Duration, seed int64) *Generator {
	rng := rand.New(rand.NewSource(seed))

	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		prices[s] = 50 + rng.Float64()*450
	}

	return &Generator{
		symbols:  symbols,
		interval: interval,
		rng:      rng,
		prices:   prices,
	}
}

// Start produces ticks until ctx is canceled. Occasionally a symbol skips a
// tick, like a quiet market.
func (g *Generator) Start(ctx context.Context, record RecordFunc) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := g.tick(now, record); err != nil {
				return err
			}
		}
	}
}

func (g *Generator) tick(now time.Time, record RecordFunc) error {
	for _, s := range g.symbols {
		if g.rng.Float64() < 0.05 {
			continue
		}

		delta := (g.rng.Float64() - 0.5) * 0.02 * g.prices[s]
		g.prices[s] += delta
		if g.prices[s] <= 0 {
			g.prices[s] = g.rng.Float64() * 10
		}

		if err := record(s, now, g.prices[s]); err != nil {
			return err
		}
	}
	return nil
}
