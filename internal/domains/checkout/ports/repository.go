package ports

import (
	"context"
	"errors"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	fulfillmentports "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
	loyaltyports "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
)

var ErrNotFound = errors.New("order not found")

// OrderRepository persists the parts of the order aggregate. Every write
// except the payment, which is always the last one, has a matching delete so
// non-transactional stores can compensate.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) error
	SaveFulfillment(ctx context.Context, orderID string, detail fulfillmentdomain.Detail) error
	SavePayment(ctx context.Context, payment domain.Payment) error
	DeleteOrder(ctx context.Context, orderID string) error
	DeleteFulfillment(ctx context.Context, orderID string) error
	Get(ctx context.Context, orderID string) (*domain.Aggregate, error)
}

// Stores are the repositories a unit of work hands to its callback. All of
// them share the unit's transaction when there is one.
type Stores struct {
	Orders  OrderRepository
	Loyalty loyaltyports.Repository
	Tables  fulfillmentports.TableRepository
}

// UnitOfWork runs fn against a consistent set of stores.
type UnitOfWork interface {
	// Do commits when fn returns nil. Transactional stores roll back
	// otherwise; non-transactional ones leave cleanup to the caller.
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
	Transactional() bool
}
