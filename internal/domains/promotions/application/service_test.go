package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/memory"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	save50k, err := domain.NewPromotion("64f000000000000000000001", "SAVE50K", "Save 50k", domain.DiscountFixedAmount,
		decimal.NewFromInt(50000), now.AddDate(0, -1, 0), now.AddDate(0, 1, 0), 200000)
	require.NoError(t, err)
	tenOff, err := domain.NewPromotion("64f000000000000000000002", "TENOFF", "10% off", domain.DiscountPercent,
		decimal.NewFromInt(10), now.AddDate(0, -2, 0), now.AddDate(0, 0, -1), 0)
	require.NoError(t, err)
	return NewService(memory.NewRepository(save50k, tenOff), WithClock(func() time.Time { return now }))
}

func TestValidate_FixedAmountIsCaseInsensitive(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	quote, err := svc.Validate(context.Background(), "  save50k", 300000)
	require.NoError(t, err)
	require.Equal(t, int64(50000), quote.Discount)
	require.Equal(t, "SAVE50K", quote.Code)
	require.Equal(t, domain.DiscountFixedAmount, quote.DiscountType)
}

func TestValidate_Failures(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	ctx := context.Background()

	_, err := svc.Validate(ctx, "UNKNOWN", 300000)
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.Validate(ctx, "TENOFF", 300000)
	require.ErrorIs(t, err, domain.ErrExpired)

	_, err = svc.Validate(ctx, "SAVE50K", 150000)
	require.ErrorIs(t, err, domain.ErrMinimumNotMet)

	_, err = svc.Validate(ctx, "   ", 1000)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Validate(ctx, "SAVE50K", -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
