package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/ids"
)

// DefaultDeliveryFee is the flat delivery rate in VND.
const DefaultDeliveryFee int64 = 20000

// ErrInvalidInput signals a fulfillment request that cannot be served.
var ErrInvalidInput = errors.New("invalid fulfillment input")

// Quote is the side-effect free part of resolution.
type Quote struct {
	Mode        domain.Mode
	DeliveryFee int64
}

// Resolution is the outcome of Resolve. Undo reverts any table side effect
// and is safe to call more than once.
type Resolution struct {
	Detail domain.Detail
	Undo   func(ctx context.Context) error
}

// Resolver turns a fulfillment request into its detail record.
type Resolver struct {
	deliveryFee      int64
	autoCreateTables bool
	now              func() time.Time
}

type Option func(*Resolver)

func WithDeliveryFee(fee int64) Option {
	return func(r *Resolver) {
		if fee >= 0 {
			r.deliveryFee = fee
		}
	}
}

// WithAutoCreateTables lets dine-in orders create tables that do not exist yet.
func WithAutoCreateTables(enabled bool) Option {
	return func(r *Resolver) {
		r.autoCreateTables = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{deliveryFee: DefaultDeliveryFee, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DeliveryFee is the configured flat delivery rate.
func (r *Resolver) DeliveryFee() int64 { return r.deliveryFee }

// Quote validates req and prices the fulfillment. It never touches storage,
// so validation failures surface before any record is written.
func (r *Resolver) Quote(req domain.Request) (Quote, error) {
	if err := req.Validate(); err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	fee := int64(0)
	if req.Mode == domain.ModeDelivery {
		fee = r.deliveryFee
	}
	return Quote{Mode: req.Mode, DeliveryFee: fee}, nil
}

// Resolve builds the detail for orderID and applies table side effects.
func (r *Resolver) Resolve(ctx context.Context, tables ports.TableRepository, orderID string, req domain.Request) (*Resolution, error) {
	if _, err := r.Quote(req); err != nil {
		return nil, err
	}
	noop := func(context.Context) error { return nil }
	switch req.Mode {
	case domain.ModeDelivery:
		a := req.Delivery
		return &Resolution{
			Detail: domain.Detail{Mode: req.Mode, Delivery: &domain.DeliveryDetail{
				OrderID:  orderID,
				Address:  strings.TrimSpace(a.Address),
				Ward:     strings.TrimSpace(a.Ward),
				District: strings.TrimSpace(a.District),
				Street:   strings.TrimSpace(a.Street),
				Phone:    strings.TrimSpace(a.Phone),
				Note:     strings.TrimSpace(a.Note),
			}},
			Undo: noop,
		}, nil
	case domain.ModeDineIn:
		return r.seat(ctx, tables, orderID, req.TableNumber)
	default:
		return &Resolution{Detail: domain.Detail{Mode: domain.ModeTakeaway}, Undo: noop}, nil
	}
}

func (r *Resolver) seat(ctx context.Context, tables ports.TableRepository, orderID string, number int) (*Resolution, error) {
	if tables == nil {
		return nil, errors.New("table repository not configured")
	}
	created := false
	table, err := tables.FindByNumber(ctx, number)
	switch {
	case errors.Is(err, ports.ErrTableNotFound) && r.autoCreateTables:
		fresh, err := domain.NewTable(ids.New(), number)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if table, err = tables.Create(ctx, fresh); err != nil {
			return nil, err
		}
		created = true
	case errors.Is(err, ports.ErrTableNotFound):
		return nil, fmt.Errorf("table %d: %w", number, err)
	case err != nil:
		return nil, err
	}
	previous := table.Status
	if err := tables.UpdateStatus(ctx, table.ID, domain.TableOccupied); err != nil {
		return nil, err
	}
	undone := false
	undo := func(ctx context.Context) error {
		if undone {
			return nil
		}
		undone = true
		if created {
			return tables.Delete(ctx, table.ID)
		}
		return tables.UpdateStatus(ctx, table.ID, previous)
	}
	return &Resolution{
		Detail: domain.Detail{Mode: domain.ModeDineIn, DineIn: &domain.DineInDetail{
			OrderID:     orderID,
			TableID:     table.ID,
			TableNumber: table.Number,
			CheckInTime: r.now(),
		}},
		Undo: undo,
	}, nil
}
