package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
)

// Redis stores the last price per symbol in Redis with a TTL.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

type redisMember struct {
	Price float64 `json:"price"`
	Ts    int64   `json:"ts"` // unix milliseconds
}

func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}

	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func lastKey(symbol string) string { return "last:" + symbol }

func (r *Redis) Set(ctx context.Context, symbol string, s schema.Sample) error {
	b, err := json.Marshal(redisMember{
		Price: s.Value,
		Ts:    s.Timestamp.UnixMilli(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal")
	}

	if err := r.rdb.Set(ctx, lastKey(symbol), b, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "set")
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, symbol string) (schema.Sample, error) {
	b, err := r.rdb.Get(ctx, lastKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return schema.Sample{}, ErrNotFound
	}
	if err != nil {
		return schema.Sample{}, errors.Wrap(err, "get")
	}

	var m redisMember
	if err := json.Unmarshal(b, &m); err != nil {
		return schema.Sample{}, errors.Wrap(err, "unmarshal")
	}

	return schema.Sample{
		Timestamp: time.UnixMilli(m.Ts),
		Value:     m.Price,
	}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
