package cache

import (
	"context"
	"sync"

	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

type Memory struct {
	mu   sync.RWMutex
	last map[string]schema.Sample
}

func NewMemory() *Memory {
	return &Memory{
		last: map[string]schema.Sample{},
	}
}

func (m *Memory) Set(ctx context.Context, symbol string, s schema.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last[symbol] = s
	return nil
}

func (m *Memory) Get(ctx context.Context, symbol string) (schema.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.last[symbol]
	if !ok {
		return schema.Sample{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) Close() error {
	return nil
}
