package redis

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ConnectFromEnv dials REDIS_ADDR and verifies it with PING. A missing
// address or failed ping yields nil so callers fall back to in-process
// locks and stores.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*goredis.Client, func()) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		if logger != nil {
			logger.Warn("REDIS_ADDR not set, using in-process locks and idempotency store")
		}
		return nil, func() {}
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Warn("failed to reach redis, using in-process locks and idempotency store",
				slog.String("addr", addr), slog.String("error", err.Error()))
		}
		_ = client.Close()
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}
