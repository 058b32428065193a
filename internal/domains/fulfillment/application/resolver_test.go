package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/adapters/memory"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
)

func TestQuote_PerMode(t *testing.T) {
	r := NewResolver(WithDeliveryFee(20000))

	q, err := r.Quote(domain.Request{Mode: domain.ModeDelivery, Delivery: &domain.Address{Address: "12 Le Loi", Ward: "Ben Nghe", District: "1"}})
	require.NoError(t, err)
	require.Equal(t, int64(20000), q.DeliveryFee)

	q, err = r.Quote(domain.Request{Mode: domain.ModeTakeaway})
	require.NoError(t, err)
	require.Zero(t, q.DeliveryFee)

	_, err = r.Quote(domain.Request{Mode: domain.ModeDineIn})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrTableRequired)

	_, err = r.Quote(domain.Request{Mode: domain.ModeDelivery, Delivery: &domain.Address{Address: "12 Le Loi"}})
	require.ErrorIs(t, err, domain.ErrAddressRequired)
}

func TestResolve_DineInMarksTableAndUndoRestores(t *testing.T) {
	tables := memory.NewTableRepository(domain.Table{ID: "t5", Number: 5, Status: domain.TableAvailable})
	checkIn := time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)
	r := NewResolver(WithClock(func() time.Time { return checkIn }))
	ctx := context.Background()

	res, err := r.Resolve(ctx, tables, "order-1", domain.Request{Mode: domain.ModeDineIn, TableNumber: 5})
	require.NoError(t, err)
	require.NoError(t, res.Detail.Validate())
	require.Equal(t, "t5", res.Detail.DineIn.TableID)
	require.Equal(t, checkIn, res.Detail.DineIn.CheckInTime)

	table, err := tables.FindByNumber(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, domain.TableOccupied, table.Status)

	require.NoError(t, res.Undo(ctx))
	require.NoError(t, res.Undo(ctx))
	table, err = tables.FindByNumber(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, domain.TableAvailable, table.Status)
}

func TestResolve_UnknownTable(t *testing.T) {
	ctx := context.Background()
	req := domain.Request{Mode: domain.ModeDineIn, TableNumber: 42}

	_, err := NewResolver().Resolve(ctx, memory.NewTableRepository(), "order-1", req)
	require.ErrorIs(t, err, ports.ErrTableNotFound)

	tables := memory.NewTableRepository()
	res, err := NewResolver(WithAutoCreateTables(true)).Resolve(ctx, tables, "order-1", req)
	require.NoError(t, err)
	require.Equal(t, 42, res.Detail.DineIn.TableNumber)

	require.NoError(t, res.Undo(ctx))
	_, err = tables.FindByNumber(ctx, 42)
	require.ErrorIs(t, err, ports.ErrTableNotFound)
}

func TestResolve_DeliveryAndTakeawayDetails(t *testing.T) {
	ctx := context.Background()
	r := NewResolver()

	res, err := r.Resolve(ctx, nil, "order-1", domain.Request{Mode: domain.ModeDelivery, Delivery: &domain.Address{
		Address: " 12 Le Loi ", Ward: "Ben Nghe", District: "1", Phone: "0900000000",
	}})
	require.NoError(t, err)
	require.NoError(t, res.Detail.Validate())
	require.Equal(t, "12 Le Loi", res.Detail.Delivery.Address)
	require.Nil(t, res.Detail.DineIn)

	res, err = r.Resolve(ctx, nil, "order-2", domain.Request{Mode: domain.ModeTakeaway})
	require.NoError(t, err)
	require.NoError(t, res.Detail.Validate())
	require.Nil(t, res.Detail.Delivery)
	require.Nil(t, res.Detail.DineIn)
}
