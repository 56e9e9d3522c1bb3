package redis

import (
	"context"
	"fmt"
	"time"

	"throttlelab/pkg/config"
	"throttlelab/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const clientName = "throttlelab"

// ConnOptions is the connection shared by the settings and variables stores.
type ConnOptions struct {
	Address  string
	Password string
	DB       int
	PoolSize int

	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// ConnOptionsFromConfig reads the redis section of cfg.
func ConnOptionsFromConfig(cfg *config.Config) ConnOptions {
	return ConnOptions{
		Address:     cfg.Redis.Address,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
		IOTimeout:   cfg.Redis.IOTimeout,
	}
}

func (o ConnOptions) redisOptions() *redis.Options {
	dial, io := o.DialTimeout, o.IOTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}
	if io <= 0 {
		io = 3 * time.Second
	}

	// one idle connection per store namespace
	return &redis.Options{
		Addr:         o.Address,
		Password:     o.Password,
		DB:           o.DB,
		ClientName:   clientName,
		PoolSize:     o.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  dial,
		ReadTimeout:  io,
		WriteTimeout: io,
	}
}

// Connect opens the client and pings it under retryCfg, so a server that is
// still starting next to throttlelab does not fail startup on the first try.
func Connect(ctx context.Context, opts ConnOptions, retryCfg retry.Config, logger *zap.SugaredLogger) (*redis.Client, error) {
	client := redis.NewClient(opts.redisOptions())

	attempts := 0
	err := retry.Retry(ctx, retryCfg, func(ctx context.Context) error {
		attempts++
		pingCtx, cancel := context.WithTimeout(ctx, opts.redisOptions().DialTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable after %d attempt(s): %w", opts.Address, attempts, err)
	}

	if logger != nil {
		logger.Infow("connected to Redis",
			"address", opts.Address,
			"db", opts.DB,
			"pool_size", opts.PoolSize,
			"attempts", attempts,
		)
	}
	return client, nil
}
