package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/ids"
)

const defaultMaxAttempts = 5

// Service is the loyalty ledger. Every balance change is written with a
// version compare-and-swap and, when a Locker is set, under the per-account
// lock, so concurrent redemptions can never overdraw an account. A ledger
// used inside a caller's transaction is built without a Locker; the caller
// holds LockKey for the whole transaction instead.
type Service struct {
	repo        ports.Repository
	locker      ports.Locker
	now         func() time.Time
	maxAttempts int
}

type Option func(*Service)

// WithLocker sets the per-account lock. Without one the ledger relies on the
// version check alone.
func WithLocker(locker ports.Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxAttempts bounds optimistic retries on version conflicts.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Enroll returns the customer's account, creating it on first use.
func (s *Service) Enroll(ctx context.Context, customerID string) (*domain.Account, error) {
	existing, err := s.repo.FindByCustomer(ctx, customerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	account, err := domain.NewAccount(ids.New(), customerID, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.CreateAccount(ctx, account)
}

func (s *Service) MemberByCustomer(ctx context.Context, customerID string) (*domain.Account, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, mapError(domain.ErrInvalidCustomer)
	}
	return s.repo.FindByCustomer(ctx, customerID)
}

// Redeem spends points for an order. It fails with
// domain.ErrInsufficientBalance when points exceed the current balance.
func (s *Service) Redeem(ctx context.Context, accountID string, points int64, orderID string) (*domain.LedgerEntry, error) {
	entry := domain.LedgerEntry{
		AccountID: accountID,
		Direction: domain.DirectionRedeem,
		Points:    points,
		Note:      "redeemed for order " + orderID,
		OrderID:   orderID,
	}
	return s.book(ctx, entry)
}

// Accrue earns 1% of amount. Zero-point accruals are skipped.
func (s *Service) Accrue(ctx context.Context, accountID string, amount int64, orderID string) (*domain.LedgerEntry, error) {
	earned := domain.EarnedPoints(amount)
	if earned == 0 {
		return nil, nil
	}
	entry := domain.LedgerEntry{
		AccountID:  accountID,
		Direction:  domain.DirectionEarn,
		Points:     earned,
		Note:       "earned on order " + orderID,
		OrderID:    orderID,
		SpendDelta: amount,
	}
	return s.book(ctx, entry)
}

// Reverse appends the opposite entry so the ledger stays append-only.
func (s *Service) Reverse(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	return s.book(ctx, entry.Reversal("", s.now()))
}

func (s *Service) Reconcile(ctx context.Context, accountID string) (*ports.Reconciliation, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &ports.Reconciliation{
		AccountID: accountID,
		Balance:   account.PointBalance,
		LedgerSum: domain.Balance(entries),
		Entries:   len(entries),
	}, nil
}

func (s *Service) book(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, mapError(err)
	}
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, LockKey(entry.AccountID))
		if err != nil {
			return nil, fmt.Errorf("lock loyalty account %s: %w", entry.AccountID, err)
		}
		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
	}
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		account, err := s.repo.GetAccount(ctx, entry.AccountID)
		if err != nil {
			return nil, err
		}
		now := s.now()
		expected := account.Version
		if err := account.Apply(entry, entry.SpendDelta, now); err != nil {
			return nil, mapError(err)
		}
		account.Version = expected + 1
		booked := entry
		if booked.ID == "" {
			booked.ID = ids.New()
		}
		booked.CreatedAt = now
		err = s.repo.ApplyEntry(ctx, account, expected, booked)
		if errors.Is(err, ports.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &booked, nil
	}
	return nil, ErrContention
}

// LockKey is the Locker key guarding one account.
func LockKey(accountID string) string {
	return "loyalty:account:" + accountID
}

var _ ports.Service = (*Service)(nil)
