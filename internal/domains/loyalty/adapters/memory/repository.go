package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps accounts and ledger entries in memory.
type Repository struct {
	mu         sync.RWMutex
	accounts   map[string]*domain.Account
	byCustomer map[string]string
	entries    map[string][]domain.LedgerEntry
}

func NewRepository() *Repository {
	return &Repository{
		accounts:   map[string]*domain.Account{},
		byCustomer: map[string]string{},
		entries:    map[string][]domain.LedgerEntry{},
	}
}

func (r *Repository) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *acct
	return &clone, nil
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID string) (*domain.Account, error) {
	r.mu.RLock()
	id, ok := r.byCustomer[customerID]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetAccount(ctx, id)
}

func (r *Repository) CreateAccount(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil {
		return nil, errors.New("account is nil")
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCustomer[account.CustomerID]; exists {
		return nil, errors.New("customer already enrolled")
	}
	clone := *account
	r.accounts[clone.ID] = &clone
	r.byCustomer[clone.CustomerID] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) ApplyEntry(_ context.Context, account *domain.Account, expectedVersion int64, entry domain.LedgerEntry) error {
	if account == nil {
		return errors.New("account is nil")
	}
	if err := account.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.accounts[account.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrVersionConflict
	}
	clone := *account
	r.accounts[clone.ID] = &clone
	r.entries[clone.ID] = append(r.entries[clone.ID], entry)
	return nil
}

func (r *Repository) ListEntries(_ context.Context, accountID string) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.accounts[accountID]; !ok {
		return nil, ports.ErrNotFound
	}
	out := make([]domain.LedgerEntry, len(r.entries[accountID]))
	copy(out, r.entries[accountID])
	return out, nil
}

// Seed stores an account with an opening EARN entry so the ledger invariant
// holds from the start. Used by local runs and tests.
func (r *Repository) Seed(account domain.Account, openingEntryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := account
	r.accounts[clone.ID] = &clone
	r.byCustomer[clone.CustomerID] = clone.ID
	if clone.PointBalance > 0 {
		r.entries[clone.ID] = append(r.entries[clone.ID], domain.LedgerEntry{
			ID:        openingEntryID,
			AccountID: clone.ID,
			Direction: domain.DirectionEarn,
			Points:    clone.PointBalance,
			Note:      "opening balance",
			CreatedAt: clone.CreatedAt,
		})
	}
}
