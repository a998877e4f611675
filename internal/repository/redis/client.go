package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connect builds a client for addr ("host:port" or a redis:// URL) and pings it.
// An unreachable server is not fatal: it returns a nil client and the caller runs without a cache.
func Connect(ctx context.Context, addr, password string, log zerolog.Logger) *redis.Client {
	opts, err := options(addr, password)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, running without history cache")
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("could not connect to redis, running without history cache")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", opts.Addr).Msg("redis connected")
	return client
}

func options(addr, password string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		if password != "" {
			opts.Password = password
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr, Password: password, DB: 0}, nil
}
