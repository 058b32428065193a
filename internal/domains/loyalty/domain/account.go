package domain

import (
	"errors"
	"strings"
	"time"
)

// Direction marks whether a ledger entry adds or removes points.
type Direction string

const (
	DirectionEarn   Direction = "EARN"
	DirectionRedeem Direction = "REDEEM"
)

// Tier is the membership level derived from lifetime spend.
type Tier string

const (
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

const (
	silverThreshold int64 = 2_000_000
	goldThreshold   int64 = 5_000_000

	// pointsPerAmount is the spend needed to earn one point (1%).
	pointsPerAmount int64 = 100
)

var (
	ErrInvalidAccount      = errors.New("loyalty account id is required")
	ErrInvalidCustomer     = errors.New("loyalty account customer id is required")
	ErrInvalidPoints       = errors.New("points must be greater than zero")
	ErrInvalidDirection    = errors.New("ledger direction is invalid")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrNegativeBalance     = errors.New("point balance must not be negative")
)

// Account is a loyalty member. PointBalance always equals the signed sum of
// the account's ledger entries.
type Account struct {
	ID            string
	CustomerID    string
	PointBalance  int64
	Tier          Tier
	LifetimeSpend int64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAccount enrolls a customer with a zero balance.
func NewAccount(id, customerID string, now time.Time) (*Account, error) {
	a := &Account{
		ID:         strings.TrimSpace(id),
		CustomerID: strings.TrimSpace(customerID),
		Tier:       TierBronze,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate enforces invariants on the account.
func (a *Account) Validate() error {
	if a.ID == "" {
		return ErrInvalidAccount
	}
	if a.CustomerID == "" {
		return ErrInvalidCustomer
	}
	if a.PointBalance < 0 {
		return ErrNegativeBalance
	}
	return nil
}

// Apply books entry against the account. spendDelta adjusts lifetime spend
// and is negative when an accrual is reversed.
func (a *Account) Apply(entry LedgerEntry, spendDelta int64, now time.Time) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.Direction == DirectionRedeem && entry.Points > a.PointBalance {
		return ErrInsufficientBalance
	}
	a.PointBalance += entry.Signed()
	a.LifetimeSpend += spendDelta
	if a.LifetimeSpend < 0 {
		a.LifetimeSpend = 0
	}
	a.Tier = TierFor(a.LifetimeSpend)
	a.UpdatedAt = now
	return nil
}

// EarnedPoints returns floor(amount x 1%), zero for non-positive amounts.
func EarnedPoints(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	return amount / pointsPerAmount
}

// TierFor maps lifetime spend to a membership tier.
func TierFor(lifetimeSpend int64) Tier {
	switch {
	case lifetimeSpend >= goldThreshold:
		return TierGold
	case lifetimeSpend >= silverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}
