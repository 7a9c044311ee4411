// Package cache mirrors the most recent price per symbol so it survives
// outside the in-process window buffers (e.g. across a restart, or for
// other processes reading the same redis).
package cache

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

var ErrNotFound = errors.New("not found")

type LastPrice interface {
	Set(ctx context.Context, symbol string, s schema.Sample) error
	Get(ctx context.Context, symbol string) (schema.Sample, error)
	Close() error
}
