package ports

import (
	"context"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
)

// Reconciliation compares a stored balance with its ledger.
type Reconciliation struct {
	AccountID string
	Balance   int64
	LedgerSum int64
	Entries   int
}

// Drift is the stored balance minus the ledger sum.
func (r Reconciliation) Drift() int64 { return r.Balance - r.LedgerSum }

// Service exposes the loyalty ledger use cases.
type Service interface {
	Enroll(ctx context.Context, customerID string) (*domain.Account, error)
	MemberByCustomer(ctx context.Context, customerID string) (*domain.Account, error)
	Redeem(ctx context.Context, accountID string, points int64, orderID string) (*domain.LedgerEntry, error)
	// Accrue returns a nil entry when the amount earns no points.
	Accrue(ctx context.Context, accountID string, amount int64, orderID string) (*domain.LedgerEntry, error)
	Reverse(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error)
	Reconcile(ctx context.Context, accountID string) (*Reconciliation, error)
}
