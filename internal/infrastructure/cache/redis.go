package cache

import (
	"context"
	"fmt"
	"time"

	"loanflow-backend/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const dialTimeout = 5 * time.Second

// OpenRedis connects the idempotency store and fails fast when the
// server is unreachable or rejects the credentials.
func OpenRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	logrus.WithFields(logrus.Fields{"addr": cfg.RedisAddr, "db": cfg.RedisDB}).Info("redis: connected")
	return rdb, nil
}

// Ping adapts a client to the health handler's pinger.
func Ping(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
