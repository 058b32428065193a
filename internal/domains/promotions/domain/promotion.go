package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a promotion value is applied to a subtotal.
type DiscountType string

const (
	DiscountPercent     DiscountType = "PERCENT"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

var (
	ErrInvalidCode         = errors.New("promotion code is required")
	ErrInvalidDiscountType = errors.New("promotion discount type is invalid")
	ErrInvalidValue        = errors.New("promotion value is out of range")
	ErrInvalidWindow       = errors.New("promotion end date precedes start date")
	ErrInvalidMinimum      = errors.New("promotion minimum order amount must not be negative")
	ErrInvalidSubtotal     = errors.New("subtotal must not be negative")

	ErrExpired       = errors.New("promotion is not active")
	ErrMinimumNotMet = errors.New("order does not meet the promotion minimum")
)

var hundred = decimal.NewFromInt(100)

// Promotion is a read-only discount rule looked up by code.
type Promotion struct {
	ID             string
	Code           string
	Name           string
	DiscountType   DiscountType
	Value          decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	MinOrderAmount int64
}

// NormalizeCode makes promotion codes case-insensitive and whitespace tolerant.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewPromotion validates and constructs a Promotion.
func NewPromotion(id, code, name string, discountType DiscountType, value decimal.Decimal, start, end time.Time, minOrderAmount int64) (*Promotion, error) {
	p := &Promotion{
		ID:             id,
		Code:           NormalizeCode(code),
		Name:           strings.TrimSpace(name),
		DiscountType:   discountType,
		Value:          value,
		StartDate:      start,
		EndDate:        end,
		MinOrderAmount: minOrderAmount,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces invariants on the promotion.
func (p *Promotion) Validate() error {
	if p.Code == "" {
		return ErrInvalidCode
	}
	switch p.DiscountType {
	case DiscountPercent:
		if !p.Value.IsPositive() || p.Value.GreaterThan(hundred) {
			return ErrInvalidValue
		}
	case DiscountFixedAmount:
		if !p.Value.IsPositive() {
			return ErrInvalidValue
		}
	default:
		return ErrInvalidDiscountType
	}
	if p.EndDate.Before(p.StartDate) {
		return ErrInvalidWindow
	}
	if p.MinOrderAmount < 0 {
		return ErrInvalidMinimum
	}
	return nil
}

// ActiveAt reports whether now falls inside the inclusive validity window.
func (p *Promotion) ActiveAt(now time.Time) bool {
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Discount computes the raw discount for subtotal. Fixed amounts are not
// capped at the subtotal; the order total clamp absorbs oversize discounts.
func (p *Promotion) Discount(subtotal int64) int64 {
	switch p.DiscountType {
	case DiscountPercent:
		return decimal.NewFromInt(subtotal).Mul(p.Value).Div(hundred).Floor().IntPart()
	case DiscountFixedAmount:
		return p.Value.Floor().IntPart()
	default:
		return 0
	}
}

// Apply checks applicability at now and returns the discount for subtotal.
func (p *Promotion) Apply(subtotal int64, now time.Time) (int64, error) {
	if subtotal < 0 {
		return 0, ErrInvalidSubtotal
	}
	if !p.ActiveAt(now) {
		return 0, ErrExpired
	}
	if subtotal < p.MinOrderAmount {
		return 0, ErrMinimumNotMet
	}
	return p.Discount(subtotal), nil
}
