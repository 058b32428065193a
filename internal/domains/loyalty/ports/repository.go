package ports

import (
	"context"
	"errors"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
)

var (
	ErrNotFound = errors.New("loyalty account not found")
	// ErrVersionConflict is returned when an account changed since it was read.
	ErrVersionConflict = errors.New("loyalty account version conflict")
)

// Repository persists accounts and their append-only ledger.
type Repository interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	FindByCustomer(ctx context.Context, customerID string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// ApplyEntry stores account (already mutated by entry) and appends entry,
	// but only if the stored version still equals expectedVersion.
	ApplyEntry(ctx context.Context, account *domain.Account, expectedVersion int64, entry domain.LedgerEntry) error
	ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)
}

// Locker serializes work per key across goroutines or processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}
