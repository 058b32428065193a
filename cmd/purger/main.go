// Command purger deletes expired customer sessions and checkout idempotency
// keys older than IDEMPOTENCY_RETENTION_HOURS (default 72). It is meant to
// run from a scheduler.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	checkoutpostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/persistence/postgres"
	customerspostgres "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/persistence/postgres"
	platformobservability "github.com/vuhk2k6/web-order-sub000/internal/platform/observability"
	platformpostgres "github.com/vuhk2k6/web-order-sub000/internal/platform/postgres"
)

const defaultRetention = 72 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	instruments, shutdown, err := platformobservability.Init(ctx, "order-purger")
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdown(context.Background()) }()
	logger := instruments.Logger

	if err := run(ctx, logger, time.Now().UTC()); err != nil {
		logger.Error("purge failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, now time.Time) error {
	retention, err := retentionFromEnv()
	if err != nil {
		return err
	}
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		return errors.New("POSTGRES_DSN not set or connection failed")
	}

	sessions, err := customerspostgres.NewSessionStore(db).PurgeExpired(ctx, now)
	if err != nil {
		return err
	}
	keys, err := checkoutpostgres.NewIdempotencyStore(db).PurgeBefore(ctx, now.Add(-retention))
	if err != nil {
		return err
	}
	logger.Info("purge completed",
		slog.Int64("sessions.purged", sessions),
		slog.Int64("idempotency_keys.purged", keys),
		slog.Duration("idempotency.retention", retention))
	return nil
}

func retentionFromEnv() (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv("IDEMPOTENCY_RETENTION_HOURS"))
	if raw == "" {
		return defaultRetention, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 0, errors.New("IDEMPOTENCY_RETENTION_HOURS must be a positive integer")
	}
	return time.Duration(hours) * time.Hour, nil
}
