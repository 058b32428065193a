package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	midWindow   = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func mustPromotion(t *testing.T, kind DiscountType, value int64, minOrder int64) *Promotion {
	t.Helper()
	p, err := NewPromotion("p1", " save50k ", "Save 50k", kind, decimal.NewFromInt(value), windowStart, windowEnd, minOrder)
	require.NoError(t, err)
	return p
}

func TestNewPromotionNormalizesCode(t *testing.T) {
	p := mustPromotion(t, DiscountFixedAmount, 50000, 200000)
	require.Equal(t, "SAVE50K", p.Code)
}

func TestNewPromotionRejectsInvalidInput(t *testing.T) {
	_, err := NewPromotion("p", "", "x", DiscountPercent, decimal.NewFromInt(10), windowStart, windowEnd, 0)
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = NewPromotion("p", "X", "x", DiscountPercent, decimal.NewFromInt(101), windowStart, windowEnd, 0)
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = NewPromotion("p", "X", "x", "BOGO", decimal.NewFromInt(1), windowStart, windowEnd, 0)
	require.ErrorIs(t, err, ErrInvalidDiscountType)

	_, err = NewPromotion("p", "X", "x", DiscountFixedAmount, decimal.NewFromInt(1), windowEnd, windowStart, 0)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestPercentDiscountFloors(t *testing.T) {
	p := mustPromotion(t, DiscountPercent, 15, 0)
	discount, err := p.Apply(99999, midWindow)
	require.NoError(t, err)
	require.Equal(t, int64(14999), discount)
}

func TestFixedDiscountIsNotCappedAtSubtotal(t *testing.T) {
	p := mustPromotion(t, DiscountFixedAmount, 50000, 0)
	discount, err := p.Apply(30000, midWindow)
	require.NoError(t, err)
	require.Equal(t, int64(50000), discount)
}

func TestApplyEnforcesWindowAndMinimum(t *testing.T) {
	p := mustPromotion(t, DiscountFixedAmount, 50000, 200000)

	_, err := p.Apply(300000, windowEnd.Add(time.Second))
	require.ErrorIs(t, err, ErrExpired)

	_, err = p.Apply(300000, windowStart.Add(-time.Second))
	require.ErrorIs(t, err, ErrExpired)

	_, err = p.Apply(199999, midWindow)
	require.ErrorIs(t, err, ErrMinimumNotMet)

	discount, err := p.Apply(200000, windowStart)
	require.NoError(t, err)
	require.Equal(t, int64(50000), discount)
}
