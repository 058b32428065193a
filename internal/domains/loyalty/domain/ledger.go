package domain

import "time"

// LedgerEntry is an append-only record of a point movement.
type LedgerEntry struct {
	ID        string
	AccountID string
	Direction Direction
	Points    int64
	Note      string
	OrderID   string
	// SpendDelta is the lifetime spend change booked alongside the entry.
	SpendDelta int64
	CreatedAt  time.Time
}

// Validate enforces invariants on a ledger entry.
func (e LedgerEntry) Validate() error {
	if e.AccountID == "" {
		return ErrInvalidAccount
	}
	if e.Points <= 0 {
		return ErrInvalidPoints
	}
	switch e.Direction {
	case DirectionEarn, DirectionRedeem:
		return nil
	default:
		return ErrInvalidDirection
	}
}

// Signed returns the balance effect of the entry.
func (e LedgerEntry) Signed() int64 {
	if e.Direction == DirectionRedeem {
		return -e.Points
	}
	return e.Points
}

// Reversal builds the opposite-direction entry that cancels e.
func (e LedgerEntry) Reversal(id string, now time.Time) LedgerEntry {
	direction := DirectionRedeem
	if e.Direction == DirectionRedeem {
		direction = DirectionEarn
	}
	return LedgerEntry{
		ID:         id,
		AccountID:  e.AccountID,
		Direction:  direction,
		Points:     e.Points,
		Note:       "reversal of " + e.ID,
		OrderID:    e.OrderID,
		SpendDelta: -e.SpendDelta,
		CreatedAt:  now,
	}
}

// Balance recomputes a point balance from ledger entries.
func Balance(entries []LedgerEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Signed()
	}
	return total
}
