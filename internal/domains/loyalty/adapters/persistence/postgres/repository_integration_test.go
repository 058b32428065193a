//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/platform/migrations"
	platformpostgres "github.com/vuhk2k6/web-order-sub000/internal/platform/postgres"
)

func setupLoyaltyPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("loyalty_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn, platformpostgres.DefaultPool, nil)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func seedAccount(t *testing.T, repo *Repository) *domain.Account {
	t.Helper()
	account, err := domain.NewAccount("65a000000000000000000001", "65c000000000000000000001", time.Now().UTC())
	require.NoError(t, err)
	created, err := repo.CreateAccount(context.Background(), account)
	require.NoError(t, err)
	return created
}

func earn(account *domain.Account, id string, points int64) (*domain.Account, domain.LedgerEntry) {
	next := *account
	next.PointBalance += points
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	return &next, domain.LedgerEntry{
		ID: id, AccountID: account.ID, Direction: domain.DirectionEarn, Points: points, CreatedAt: next.UpdatedAt,
	}
}

func TestRepository_FindByCustomer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupLoyaltyPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	account := seedAccount(t, repo)

	found, err := repo.FindByCustomer(context.Background(), account.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, domain.TierBronze, found.Tier)

	_, err = repo.FindByCustomer(context.Background(), "65c0000000000000000000ff")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ApplyEntryKeepsBalanceAndLedgerInStep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupLoyaltyPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	account := seedAccount(t, repo)

	next, entry := earn(account, "65e000000000000000000001", 120)
	require.NoError(t, repo.ApplyEntry(ctx, next, account.Version, entry))

	stored, err := repo.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stored.PointBalance)
	assert.Equal(t, int64(1), stored.Version)

	entries, err := repo.ListEntries(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, stored.PointBalance, domain.Balance(entries))
}

func TestRepository_ApplyEntryRejectsStaleVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupLoyaltyPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	account := seedAccount(t, repo)

	first, entry := earn(account, "65e000000000000000000001", 50)
	require.NoError(t, repo.ApplyEntry(ctx, first, account.Version, entry))

	stale, entry := earn(account, "65e000000000000000000002", 70)
	err := repo.ApplyEntry(ctx, stale, account.Version, entry)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	entries, err := repo.ListEntries(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	stored, err := repo.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), stored.PointBalance)
}
