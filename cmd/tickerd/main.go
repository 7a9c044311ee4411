package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	ticker "github.com/tejbhatt/stock-ticker-app-omnenest-assignment"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/cache"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/config"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/database"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/feed"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()
	errCh := make(chan error)

	db, err := database.Get(cfg.DBPath)
	if err != nil {
		return errors.Wrap(err, "get database")
	}
	backend := database.NewBackend(db)

	var lastPrice cache.LastPrice
	if cfg.Redis.Addr != "" {
		lastPrice, err = cache.NewRedis(
			ctx,
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.TTL,
		)
		if err != nil {
			return errors.Wrap(err, "redis cache")
		}
		logger.Info("using redis last-price cache",
			zap.String("addr", cfg.Redis.Addr))
	} else {
		lastPrice = cache.NewMemory()
	}
	defer func() {
		_ = lastPrice.Close()
	}()

	t, err := ticker.New(backend, errCh, ticker.Options{
		Symbols:          cfg.Symbols,
		Window:           cfg.Window,
		Capacity:         cfg.Capacity,
		ExpiredRetention: cfg.ExpiredRetention,
		Cache:            lastPrice,
	})
	if err != nil {
		return errors.Wrap(err, "new ticker")
	}

	seed := cfg.FeedSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := feed.NewGenerator(cfg.Symbols, cfg.FeedInterval, seed)
	go func() {
		errCh <- errors.Wrap(gen.Start(ctx, t.RecordPrice), "feed")
	}()

	go func() {
		errCh <- t.RunServer(cfg.Addr)
	}()

	logger.Info("tickerd started",
		zap.String("addr", cfg.Addr),
		zap.Strings("symbols", cfg.Symbols),
		zap.Duration("window", cfg.Window),
	)

	return <-errCh
}

func main() {
	if err := run(); err != nil {
		zap.NewExample().Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}
